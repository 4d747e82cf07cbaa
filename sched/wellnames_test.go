package sched

import "testing"

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*", "PROD1", true},
		{"PROD*", "PROD1", true},
		{"PROD*", "PRO", false},
		{"P*1", "PROD1", true},
		{"P*1", "PROD2", false},
		{"P?OD1", "PROD1", true},
		{"P?OD1", "POD1", false},
		{"*D1", "PROD1", true},
		{"*D1", "INJ1", false},
		{"", "", true},
		{"", "W", false},
		{"W**2", "W12", true},
		{"INJ?", "INJ12", false},
	}
	for _, tc := range tests {
		t.Run(tc.pattern+"/"+tc.name, func(t *testing.T) {
			if got := patternMatch(tc.pattern, tc.name); got != tc.want {
				t.Errorf("patternMatch(%q, %q): got %v, want %v", tc.pattern, tc.name, got, tc.want)
			}
		})
	}
}

func TestResolveNames_GlobKeepsInsertionOrder(t *testing.T) {
	// GIVEN wells in deck order
	names := []string{"PROD2", "INJ1", "PROD1"}

	// WHEN a glob pattern is resolved
	got := resolveNames("PROD*", names)

	// THEN matches come back in deck order, not sorted
	want := []string{"PROD2", "PROD1"}
	if len(got) != len(want) {
		t.Fatalf("resolveNames: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resolveNames[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveNames_ExactNameRequiresPresence(t *testing.T) {
	names := []string{"PROD1"}

	// a non-wildcard pattern resolves only if the well exists
	if got := resolveNames("PROD1", names); len(got) != 1 || got[0] != "PROD1" {
		t.Errorf("existing name: got %v, want [PROD1]", got)
	}
	if got := resolveNames("PROD2", names); got != nil {
		t.Errorf("missing name: got %v, want nil", got)
	}
}

func TestIsListPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"*LIST1", true},
		{"*", false},
		{"PROD*", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := isListPattern(tc.pattern); got != tc.want {
			t.Errorf("isListPattern(%q): got %v, want %v", tc.pattern, got, tc.want)
		}
	}
}
