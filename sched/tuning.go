package sched

import "github.com/deck-sim/deck-sim/sched/serial"

// Tuning carries the subset of TUNING record 1 the schedule engine
// tracks, plus the NEXTSTEP override.
type Tuning struct {
	TSInit    float64
	HasTSInit bool
	TSMaxz    float64
	TSMinz    float64
	TSFMax    float64
	TSFMin    float64

	// NEXTSTEP: length limit for the next timestep only, and whether it
	// persists across report steps.
	NextStep        float64
	HasNextStep     bool
	NextStepPersist bool
}

// DefaultTuning matches the simulator defaults for a metric deck before
// any TUNING keyword is seen.
func DefaultTuning() Tuning {
	return Tuning{
		TSMaxz: 365.0 * 86400,
		TSMinz: 0.1 * 86400,
		TSFMax: 3.0,
		TSFMin: 0.3,
	}
}

// HandleTUNING updates from record 1 of a TUNING keyword. Defaulted items
// keep their previous value.
func (t *Tuning) HandleTUNING(record *Record, units UnitSystem) {
	if it := record.Item("TSINIT"); it.HasValue(0) {
		t.TSInit = it.GetSIDouble(0, units)
		t.HasTSInit = true
	}
	if it := record.Item("TSMAXZ"); it.HasValue(0) {
		t.TSMaxz = it.GetSIDouble(0, units)
	}
	if it := record.Item("TSMINZ"); it.HasValue(0) {
		t.TSMinz = it.GetSIDouble(0, units)
	}
	if it := record.Item("TSFMAX"); it.HasValue(0) {
		t.TSFMax = it.GetDouble(0)
	}
	if it := record.Item("TSFMIN"); it.HasValue(0) {
		t.TSFMin = it.GetDouble(0)
	}
}

// HandleNEXTSTEP sets the next timestep limit.
func (t *Tuning) HandleNEXTSTEP(record *Record, units UnitSystem) {
	t.NextStep = record.Item("MAX_STEP").GetSIDouble(0, units)
	t.HasNextStep = true
	t.NextStepPersist = ToBool(record.Item("APPLY_TO_ALL").GetString(0))
}

// AdvanceStep clears a non-persistent NEXTSTEP at the report step boundary.
func (t *Tuning) AdvanceStep() {
	if t.HasNextStep && !t.NextStepPersist {
		t.HasNextStep = false
		t.NextStep = 0
	}
}

func (t *Tuning) SerializeOp(s *serial.Serializer) {
	s.Float64(&t.TSInit)
	s.Bool(&t.HasTSInit)
	s.Float64(&t.TSMaxz)
	s.Float64(&t.TSMinz)
	s.Float64(&t.TSFMax)
	s.Float64(&t.TSFMin)
	s.Float64(&t.NextStep)
	s.Bool(&t.HasNextStep)
	s.Bool(&t.NextStepPersist)
}

// MessageLimits holds MESSAGES print and stop limits.
type MessageLimits struct {
	MessagePrint int
	CommentPrint int
	WarningPrint int
	ProblemPrint int
	ErrorPrint   int
	BugPrint     int

	MessageStop int
	CommentStop int
	WarningStop int
	ProblemStop int
	ErrorStop   int
	BugStop     int
}

func DefaultMessageLimits() MessageLimits {
	return MessageLimits{
		MessagePrint: 3000000, CommentPrint: 3000000, WarningPrint: 10000,
		ProblemPrint: 100, ErrorPrint: 100, BugPrint: 100,
		MessageStop: 3000000, CommentStop: 3000000, WarningStop: 3000000,
		ProblemStop: 700, ErrorStop: 100, BugStop: 10,
	}
}

// HandleMESSAGES applies the limits from one MESSAGES record. Defaulted
// items keep their previous value.
func (m *MessageLimits) HandleMESSAGES(record *Record) {
	set := func(dst *int, item string) {
		if it := record.Item(item); it.HasValue(0) {
			*dst = it.GetInt(0)
		}
	}
	set(&m.MessagePrint, "MESSAGE_PRINT_LIMIT")
	set(&m.CommentPrint, "COMMENT_PRINT_LIMIT")
	set(&m.WarningPrint, "WARNING_PRINT_LIMIT")
	set(&m.ProblemPrint, "PROBLEM_PRINT_LIMIT")
	set(&m.ErrorPrint, "ERROR_PRINT_LIMIT")
	set(&m.BugPrint, "BUG_PRINT_LIMIT")
	set(&m.MessageStop, "MESSAGE_STOP_LIMIT")
	set(&m.CommentStop, "COMMENT_STOP_LIMIT")
	set(&m.WarningStop, "WARNING_STOP_LIMIT")
	set(&m.ProblemStop, "PROBLEM_STOP_LIMIT")
	set(&m.ErrorStop, "ERROR_STOP_LIMIT")
	set(&m.BugStop, "BUG_STOP_LIMIT")
}

func (m *MessageLimits) SerializeOp(s *serial.Serializer) {
	s.Int(&m.MessagePrint)
	s.Int(&m.CommentPrint)
	s.Int(&m.WarningPrint)
	s.Int(&m.ProblemPrint)
	s.Int(&m.ErrorPrint)
	s.Int(&m.BugPrint)
	s.Int(&m.MessageStop)
	s.Int(&m.CommentStop)
	s.Int(&m.WarningStop)
	s.Int(&m.ProblemStop)
	s.Int(&m.ErrorStop)
	s.Int(&m.BugStop)
}
