package sched

import (
	"testing"
	"time"
)

func TestProcess_DATES_AdvancesTimeline(t *testing.T) {
	// GIVEN a deck with two DATES records in one keyword
	s := newTestSchedule()
	dates := kw("DATES",
		rec(intItem("DAY", iv(1)), strItem("MONTH", sv("FEB")), intItem("YEAR", iv(2020))),
		rec(intItem("DAY", iv(15)), strItem("MONTH", sv("JLY")), intItem("YEAR", iv(2020))),
	)
	mustProcess(t, s, dates)

	// THEN each record forks one step, and JLY is accepted for July
	if got := s.Steps(); got != 3 {
		t.Fatalf("Steps: got %d, want 3", got)
	}
	want1 := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)
	want2 := time.Date(2020, time.July, 15, 0, 0, 0, 0, time.UTC)
	if got := s.StateAt(1).StartTime; !got.Equal(want1) {
		t.Errorf("step 1 time: got %v, want %v", got, want1)
	}
	if got := s.StateAt(2).StartTime; !got.Equal(want2) {
		t.Errorf("step 2 time: got %v, want %v", got, want2)
	}
}

func TestParseDate_WithTimeOfDay(t *testing.T) {
	record := rec(
		intItem("DAY", iv(3)),
		strItem("MONTH", sv("MAR")),
		intItem("YEAR", iv(2021)),
		strItem("TIME", sv("06:30:15")),
	)
	got, err := parseDate(&record, Location{})
	if err != nil {
		t.Fatalf("parseDate: unexpected error: %v", err)
	}
	want := time.Date(2021, time.March, 3, 6, 30, 15, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseDate: got %v, want %v", got, want)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"bad month", rec(intItem("DAY", iv(1)), strItem("MONTH", sv("XXX")), intItem("YEAR", iv(2020)))},
		{"bad day", rec(intItem("DAY", iv(32)), strItem("MONTH", sv("JAN")), intItem("YEAR", iv(2020)))},
		{"bad time", rec(intItem("DAY", iv(1)), strItem("MONTH", sv("JAN")), intItem("YEAR", iv(2020)), strItem("TIME", sv("six")))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseDate(&tc.record, Location{}); err == nil {
				t.Error("invalid DATES record accepted")
			}
		})
	}
}

func TestProcess_TSTEP_AdvancesByDays(t *testing.T) {
	// GIVEN a TSTEP with two step lengths in days
	s := newTestSchedule()
	tstep := kw("TSTEP", rec(dblItem("TSTEP", "Time", dv(10), dv(5))))
	mustProcess(t, s, tstep)

	if got := s.Steps(); got != 3 {
		t.Fatalf("Steps: got %d, want 3", got)
	}
	want1 := testStart.Add(10 * 24 * time.Hour)
	want2 := want1.Add(5 * 24 * time.Hour)
	if got := s.StateAt(1).StartTime; !got.Equal(want1) {
		t.Errorf("step 1 time: got %v, want %v", got, want1)
	}
	if got := s.StateAt(2).StartTime; !got.Equal(want2) {
		t.Errorf("step 2 time: got %v, want %v", got, want2)
	}
}

func TestStateAt_ClampsOutOfRange(t *testing.T) {
	s := newTestSchedule()
	mustProcess(t, s, datesKW(1, "FEB", 2020))

	if s.StateAt(-5) != s.StateAt(0) {
		t.Error("negative step did not clamp to the initial state")
	}
	if s.StateAt(99) != s.Back() {
		t.Error("step beyond the end did not clamp to the final state")
	}
}

func TestTimeline_UntouchedWellSharedAcrossSteps(t *testing.T) {
	// GIVEN a well defined at step 0 and never modified again
	s := newTestSchedule()
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		welspecsKW("W2", "G1", 2, 2, "OIL"),
		datesKW(1, "FEB", 2020),
		wconprodKW("W2", "OPEN", "ORAT", 100),
	)

	// THEN the untouched well is the same object at every step
	if s.StateAt(0).Well("W1") != s.StateAt(1).Well("W1") {
		t.Error("untouched well copied instead of shared across the fork")
	}
	// AND the touched well diverged at step 1 only
	if s.StateAt(0).Well("W2") == s.StateAt(1).Well("W2") {
		t.Error("modified well shared between steps")
	}
	if s.StateAt(0).Well("W2").Status != StatusShut {
		t.Error("step 0 well sees the step 1 status change")
	}
}

func TestChecksum_DeterministicAcrossRuns(t *testing.T) {
	// GIVEN the same deck processed by two independent schedules
	build := func() *Schedule {
		s := newTestSchedule()
		mustProcess(t, s,
			welspecsKW("W1", "G1", 1, 1, "OIL"),
			welspecsKW("W2", "G2", 2, 2, "GAS"),
			compdatKW("W1", 1, 1, 1, 3, "OPEN", 1.0),
			wconprodKW("W1", "OPEN", "ORAT", 500),
			datesKW(1, "FEB", 2020),
			wconinjeKW("W2", "GAS", "OPEN", "RATE", 200),
		)
		return s
	}
	a, b := build(), build()

	// THEN the digests agree
	if sumA, sumB := a.Checksum(), b.Checksum(); sumA != sumB {
		t.Errorf("equivalent decks digested differently: %#x != %#x", sumA, sumB)
	}

	// AND a different deck digests differently
	c := newTestSchedule()
	mustProcess(t, c, welspecsKW("W1", "G1", 1, 1, "OIL"))
	if a.Checksum() == c.Checksum() {
		t.Error("different decks digested identically")
	}
}

func TestPackUnpack_TimelineRoundTrip(t *testing.T) {
	// GIVEN a processed schedule
	s := newTestSchedule()
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		compdatKW("W1", 1, 1, 1, 2, "OPEN", 1.0),
		wconprodKW("W1", "OPEN", "ORAT", 500),
		datesKW(1, "FEB", 2020),
		welopenWellKW("W1", "SHUT"),
	)

	// WHEN it is packed and unpacked into a fresh schedule
	buf, err := s.Pack()
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}
	restored := NewSchedule(time.Time{}, ScheduleGrid{}, MetricUnits(), NewHandlerRegistry(), NewParseContext())
	if err := restored.Unpack(buf); err != nil {
		t.Fatalf("Unpack: unexpected error: %v", err)
	}

	// THEN the timeline survives with its content and its digest
	if restored.Steps() != s.Steps() {
		t.Fatalf("Steps after unpack: got %d, want %d", restored.Steps(), s.Steps())
	}
	well := restored.Back().Well("W1")
	if well == nil {
		t.Fatal("W1 lost in round trip")
	}
	if well.Status != StatusShut {
		t.Errorf("restored status: got %v, want SHUT", well.Status)
	}
	if len(well.Connections.Conns) != 2 {
		t.Errorf("restored connections: got %d, want 2", len(well.Connections.Conns))
	}
	if restored.Checksum() != s.Checksum() {
		t.Errorf("digest changed in round trip: %#x != %#x", restored.Checksum(), s.Checksum())
	}
}

func actionxKW(name string, maxRun int, condition ...string) Keyword {
	tokens := make([]ItemValue, 0, len(condition))
	for _, tok := range condition {
		tokens = append(tokens, sv(tok))
	}
	return kw("ACTIONX",
		rec(
			strItem("NAME", sv(name)),
			intItem("NUM", iv(maxRun)),
			dblItem("MIN_WAIT", "Time", dv(0)),
		),
		rec(strItem("CONDITION", tokens...)),
	)
}

func TestACTIONX_CollectedNotApplied(t *testing.T) {
	// GIVEN an action whose body shuts the matching wells
	s := newTestSchedule()
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		wconprodKW("W1", "OPEN", "ORAT", 500),
		actionxKW("HIGHWCT", 2, "WWCT", ">", "0.8"),
		welopenWellKW("?", "SHUT"),
		kw("ENDACTIO"),
	)

	// THEN the body did not run during deck processing
	st := s.Back()
	if got := st.Well("W1").Status; got != StatusOpen {
		t.Errorf("action body ran at parse time: status %v, want OPEN", got)
	}
	act := st.Actions().Get("HIGHWCT")
	if act == nil {
		t.Fatal("action not collected")
	}
	if act.Condition == nil || act.Condition.Raw != "(WWCT > 0.8)" {
		t.Errorf("condition: got %+v, want (WWCT > 0.8)", act.Condition)
	}
	if len(act.Keywords) != 1 || act.Keywords[0].Name != "WELOPEN" {
		t.Errorf("body keywords: got %+v, want one WELOPEN", act.Keywords)
	}
}

func TestApplyAction_ReplaysBodyForMatchingWells(t *testing.T) {
	// GIVEN two open producers and a collected shut-in action
	s := newTestSchedule()
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		welspecsKW("W2", "G1", 2, 2, "OIL"),
		wconprodKW("*", "OPEN", "ORAT", 500),
		actionxKW("HIGHWCT", 2, "WWCT", ">", "0.8"),
		welopenWellKW("?", "SHUT"),
		kw("ENDACTIO"),
	)

	// WHEN the simulator triggers it for W2 only
	step := s.Steps() - 1
	simTime := s.Back().StartTime.Add(time.Hour)
	update, err := s.ApplyAction(step, "HIGHWCT", []string{"W2"}, simTime)
	if err != nil {
		t.Fatalf("ApplyAction: unexpected error: %v", err)
	}

	// THEN only the matching well shut, and the digest names it
	st := s.StateAt(step)
	if got := st.Well("W1").Status; got != StatusOpen {
		t.Errorf("W1 status: got %v, want OPEN", got)
	}
	if got := st.Well("W2").Status; got != StatusShut {
		t.Errorf("W2 status: got %v, want SHUT", got)
	}
	if !update.Affected("W2") {
		t.Error("update digest does not name W2")
	}
	if !st.WellGroupEvents.HasEvent("W2", EventActionWell) {
		t.Error("missing action event for W2")
	}
	if got := st.Actions().Get("HIGHWCT").RunCount(); got != 1 {
		t.Errorf("run count: got %d, want 1", got)
	}
}

func TestApplyAction_GlobalWPIMULTLastFactorWinsAtBatchEnd(t *testing.T) {
	// GIVEN an action issuing two well-wide WPIMULT factors
	s := newTestSchedule()
	mult := func(factor float64) Keyword {
		return kw("WPIMULT", rec(
			strItem("WELL", sv("?")),
			dblItem("WELLPI", "", dv(factor)),
			intItem("I", defaulted()),
			intItem("J", defaulted()),
			intItem("K", defaulted()),
			intItem("FIRST", defaulted()),
			intItem("LAST", defaulted()),
		))
	}
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		compdatKW("W1", 1, 1, 1, 1, "OPEN", 2.0),
		actionxKW("SCALE", 1, "WOPR", ">", "10"),
		mult(2.0),
		mult(3.0),
		kw("ENDACTIO"),
	)
	step := s.Steps() - 1
	before := s.StateAt(step).Well("W1").Connections.Conns[0].CF

	// WHEN the action triggers
	if _, err := s.ApplyAction(step, "SCALE", []string{"W1"}, s.Back().StartTime); err != nil {
		t.Fatalf("ApplyAction: unexpected error: %v", err)
	}

	// THEN only the last factor applies, once at batch end
	got := s.StateAt(step).Well("W1").Connections.Conns[0].CF
	if want := before * 3.0; got != want {
		t.Errorf("scaled CF: got %g, want %g", got, want)
	}
}

func TestProcess_StrayENDACTIORejected(t *testing.T) {
	s := newTestSchedule()
	_, err := s.Process(&Deck{Keywords: []Keyword{kw("ENDACTIO")}})
	if _, ok := AsInputError(err); !ok {
		t.Fatalf("stray ENDACTIO: got %v, want InputError", err)
	}
}

func TestProcess_ACTIONXWithoutENDRejected(t *testing.T) {
	s := newTestSchedule()
	_, err := s.Process(&Deck{Keywords: []Keyword{
		actionxKW("OPEN1", 1, "FOPR", ">", "10"),
		welopenWellKW("?", "SHUT"),
	}})
	if _, ok := AsInputError(err); !ok {
		t.Fatalf("unterminated ACTIONX: got %v, want InputError", err)
	}
}

func TestAction_ReadyHonorsRunLimitAndWait(t *testing.T) {
	// GIVEN an action limited to two runs with an hour of minimum wait
	a := &Action{Name: "A", MaxRun: 2, MinWait: 3600}
	now := testStart

	if !a.Ready(now) {
		t.Fatal("fresh action not ready")
	}
	a.MarkRun(now)

	// THEN a second trigger must wait out the minimum interval
	if a.Ready(now.Add(time.Minute)) {
		t.Error("action ready inside the minimum wait")
	}
	if !a.Ready(now.Add(2 * time.Hour)) {
		t.Error("action not ready after the wait passed")
	}
	a.MarkRun(now.Add(2 * time.Hour))

	// AND the run limit is absorbing
	if a.Ready(now.Add(100 * time.Hour)) {
		t.Error("action ready beyond its run limit")
	}
}
