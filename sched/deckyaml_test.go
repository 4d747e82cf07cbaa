package sched

import (
	"strings"
	"testing"
	"time"
)

const wellDeckYAML = `
start: "2020-01-01"
units: METRIC
grid: {nx: 10, ny: 10, nz: 3}
keywords:
  - name: WELSPECS
    file: CASE.DATA
    line: 120
    records:
      - items:
          - {name: WELL, kind: string, values: [{string: W1}]}
          - {name: GROUP, kind: string, values: [{string: G1}]}
          - {name: HEAD_I, kind: int, values: [{int: 5}]}
          - {name: HEAD_J, kind: int, values: [{int: 6}]}
          - {name: PHASE, kind: string, values: [{string: OIL}]}
  - name: WCONPROD
    records:
      - items:
          - {name: WELL, kind: string, values: [{string: W1}]}
          - {name: STATUS, kind: string, values: [{string: OPEN}]}
          - {name: CMODE, kind: string, values: [{string: ORAT}]}
          - {name: ORAT, kind: uda, dimension: LiquidRate, values: [{double: 1000}]}
          - {name: BHP, kind: double, dimension: Pressure, values: [{default: true}]}
`

func TestLoadDeck_HeaderAndKeywords(t *testing.T) {
	// GIVEN a two-keyword YAML deck
	deck, header, err := LoadDeck([]byte(wellDeckYAML), "CASE.yaml")
	if err != nil {
		t.Fatalf("LoadDeck: %v", err)
	}

	// THEN the header fields land
	if want := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC); !header.Start.Equal(want) {
		t.Errorf("start: got %v, want %v", header.Start, want)
	}
	if header.Grid != (ScheduleGrid{NX: 10, NY: 10, NZ: 3}) {
		t.Errorf("grid: got %+v", header.Grid)
	}
	if got := header.Units.Parse("Pressure").SIScaling(); got != 1.0e5 {
		t.Errorf("pressure scale: got %g, want METRIC bar", got)
	}

	// AND the keyword stream transcribes faithfully
	if len(deck.Keywords) != 2 {
		t.Fatalf("keywords: got %d, want 2", len(deck.Keywords))
	}
	ws := deck.Keywords[0]
	if ws.Location.File != "CASE.DATA" || ws.Location.Line != 120 {
		t.Errorf("explicit location lost: %+v", ws.Location)
	}
	if got := ws.Records[0].Item("HEAD_I").GetInt(0); got != 5 {
		t.Errorf("HEAD_I: got %d, want 5", got)
	}
	wc := deck.Keywords[1]
	if wc.Location.File != "CASE.yaml" {
		t.Errorf("location fallback: got %q, want the source name", wc.Location.File)
	}
	orat := wc.Records[0].Item("ORAT")
	if orat.Kind != UDAItem || orat.GetDouble(0) != 1000 {
		t.Errorf("ORAT item: kind %v value %g", orat.Kind, orat.GetDouble(0))
	}
	if !wc.Records[0].Item("BHP").Values[0].Defaulted {
		t.Error("defaulted BHP value lost")
	}
}

func TestLoadDeck_FeedsSchedule(t *testing.T) {
	deck, header, err := LoadDeck([]byte(wellDeckYAML), "CASE.yaml")
	if err != nil {
		t.Fatalf("LoadDeck: %v", err)
	}
	s := NewSchedule(header.Start, header.Grid, header.Units, NewHandlerRegistry(), NewParseContext())
	if _, err := s.Process(deck); err != nil {
		t.Fatalf("Process: %v", err)
	}
	well := s.Back().Well("W1")
	if well == nil || well.Status != StatusOpen {
		t.Fatalf("loaded deck did not open W1: %+v", well)
	}
}

func TestLoadDeck_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "not yaml",
			yaml: "keywords: [}",
			want: "parse deck yaml",
		},
		{
			name: "bad start date",
			yaml: "start: \"01/02/2020\"\nkeywords: []",
			want: "invalid start date",
		},
		{
			name: "unknown item kind",
			yaml: "keywords:\n  - name: WELSPECS\n    records:\n      - items:\n          - {name: WELL, kind: blob, values: []}",
			want: "unknown kind",
		},
		{
			name: "nameless keyword",
			yaml: "keywords:\n  - records: []",
			want: "without a name",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := LoadDeck([]byte(tc.yaml), "bad.yaml")
			if err == nil {
				t.Fatal("invalid deck accepted")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error: got %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestParseStartDate_RFC3339(t *testing.T) {
	got, err := parseStartDate("2021-06-01T12:00:00Z")
	if err != nil {
		t.Fatalf("parseStartDate: %v", err)
	}
	want := time.Date(2021, time.June, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
