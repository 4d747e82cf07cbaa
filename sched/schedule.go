package sched

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deck-sim/deck-sim/sched/action"
	"github.com/deck-sim/deck-sim/sched/serial"
)

// Schedule is the versioned timeline of dynamic input state: one
// ScheduleState per report step, built by walking the deck once. States
// are copy-on-write forks of their predecessor, so querying any step
// after processing is O(1) and un-modified entities are shared across
// the whole timeline.
type Schedule struct {
	grid  ScheduleGrid
	units UnitSystem

	registry *HandlerRegistry
	parseCtx *ParseContext

	states []*ScheduleState

	log *logrus.Entry
}

// NewSchedule returns a schedule with the initial state at start. The
// registry and parse context are shared, never mutated by processing.
func NewSchedule(start time.Time, grid ScheduleGrid, units UnitSystem, registry *HandlerRegistry, parseCtx *ParseContext) *Schedule {
	return &Schedule{
		grid:     grid,
		units:    units,
		registry: registry,
		parseCtx: parseCtx,
		states:   []*ScheduleState{NewScheduleState(start)},
		log:      logrus.WithField("component", "schedule"),
	}
}

// Steps returns the number of report steps, including the initial one.
func (s *Schedule) Steps() int { return len(s.states) }

// StateAt returns the state of report step. Steps beyond the end clamp to
// the final state, matching how a simulator queries past the last DATES.
func (s *Schedule) StateAt(step int) *ScheduleState {
	if step < 0 {
		step = 0
	}
	if step >= len(s.states) {
		step = len(s.states) - 1
	}
	return s.states[step]
}

// Back returns the final state.
func (s *Schedule) Back() *ScheduleState {
	return s.states[len(s.states)-1]
}

func (s *Schedule) Grid() ScheduleGrid { return s.grid }
func (s *Schedule) Units() UnitSystem { return s.units }

// Process walks the deck keywords in order, advancing the timeline on
// DATES and TSTEP and dispatching everything else. Processing stops at
// the first fatal input error; downgraded problems accumulate in the
// returned guard.
func (s *Schedule) Process(deck *Deck) (*ErrorGuard, error) {
	guard := NewErrorGuard()
	step := len(s.states) - 1

	i := 0
	for i < len(deck.Keywords) {
		kw := &deck.Keywords[i]
		switch kw.Name {
		case "DATES":
			for r := range kw.Records {
				t, err := parseDate(&kw.Records[r], kw.Location)
				if err != nil {
					return guard, err
				}
				step = s.addStep(t)
			}
		case "TSTEP":
			if kw.Empty() {
				return guard, NewInputError(kw.Location, "TSTEP requires a record of step lengths")
			}
			it := kw.Records[0].Item("TSTEP")
			for v := range it.Values {
				dt := it.GetSIDouble(v, s.units)
				t := s.Back().StartTime.Add(time.Duration(dt * float64(time.Second)))
				step = s.addStep(t)
			}
		case "ACTIONX":
			next, err := s.collectAction(deck, i, step)
			if err != nil {
				return guard, err
			}
			i = next
			continue
		case "ENDACTIO":
			return guard, NewInputError(kw.Location, "ENDACTIO outside an ACTIONX block")
		case "SCHEDULE", "END":
			// section markers carry no state
		default:
			if err := s.applyKeyword(kw, step, guard, nil); err != nil {
				return guard, err
			}
		}
		i++
	}

	s.log.WithFields(logrus.Fields{
		"steps":  len(s.states),
		"wells":  s.Back().Wells().Len(),
		"groups": s.Back().Groups().Len(),
	}).Info("deck processed")
	return guard, nil
}

// addStep forks the final state at time t and appends it.
func (s *Schedule) addStep(t time.Time) int {
	last := s.states[len(s.states)-1]
	s.states = append(s.states, last.Fork(t, len(s.states)))
	return len(s.states) - 1
}

func (s *Schedule) applyKeyword(kw *Keyword, step int, guard *ErrorGuard, batch *actionBatch) error {
	hc := &HandlerContext{
		schedule:    s,
		keyword:     kw,
		currentStep: step,
		grid:        s.grid,
		units:       s.units,
		parseCtx:    s.parseCtx,
		guard:       guard,
		log:         s.log,
	}
	if batch != nil {
		hc.actionMode = true
		hc.matchingWells = batch.matchingWells
		hc.simUpdate = batch.update
		hc.targetWellPI = batch.targetWellPI
		hc.wpimultGlobal = batch.wpimultGlobal
	}
	return s.registry.Handle(hc)
}

// collectAction parses an ACTIONX block starting at keyword index i and
// stores it in the current state. It returns the index just past the
// matching ENDACTIO.
func (s *Schedule) collectAction(deck *Deck, i, step int) (int, error) {
	kw := &deck.Keywords[i]
	if err := validActionKeyword(kw); err != nil {
		return 0, err
	}
	header := &kw.Records[0]
	act := &Action{
		Name:    header.Item("NAME").GetTrimmedString(0),
		MaxRun:  header.Item("NUM").GetInt(0),
		MinWait: header.Item("MIN_WAIT").GetSIDouble(0, s.units),
		Start:   s.StateAt(step).StartTime,
	}

	var lines [][]string
	for r := 1; r < len(kw.Records); r++ {
		it := kw.Records[r].Item("CONDITION")
		var tokens []string
		for v := range it.Values {
			tokens = append(tokens, it.GetTrimmedString(v))
		}
		if len(tokens) > 0 {
			lines = append(lines, tokens)
		}
	}
	cond, err := action.Parse(lines)
	if err != nil {
		return 0, NewInputError(kw.Location, "Invalid condition in ACTIONX %s: %v", act.Name, err)
	}
	act.Condition = cond

	j := i + 1
	for ; j < len(deck.Keywords); j++ {
		body := &deck.Keywords[j]
		if body.Name == "ENDACTIO" {
			break
		}
		if body.Name == "ACTIONX" {
			return 0, NewInputError(body.Location, "Nested ACTIONX blocks are not supported")
		}
		if !s.registry.Supported(body.Name) && body.Name != "DATES" && body.Name != "TSTEP" {
			s.log.WithFields(logrus.Fields{
				"action":  act.Name,
				"keyword": body.Name,
			}).Warn("unsupported keyword in action body will be ignored when triggered")
		}
		act.Keywords = append(act.Keywords, *body)
	}
	if j == len(deck.Keywords) {
		return 0, NewInputError(kw.Location, "ACTIONX %s is missing its ENDACTIO", act.Name)
	}

	s.StateAt(step).Actions().Add(act)
	return j + 1, nil
}

func validActionKeyword(kw *Keyword) error {
	if kw.Empty() {
		return NewInputError(kw.Location, "ACTIONX requires a name record")
	}
	name := kw.Records[0].Item("NAME").GetTrimmedString(0)
	if name == "" {
		return NewInputError(kw.Location, "ACTIONX requires a non-empty name")
	}
	return nil
}

// actionBatch is the shared bookkeeping of one triggered-action replay.
type actionBatch struct {
	matchingWells []string
	update        *SimulatorUpdate
	targetWellPI  map[string]float64
	wpimultGlobal map[string]float64
}

// ApplyAction replays the body of a triggered action at reportStep.
// matchingWells is the well set the condition selected; the '?' name in
// body keywords expands to it. The returned digest tells the simulator
// which of its structures to refresh.
func (s *Schedule) ApplyAction(reportStep int, actionName string, matchingWells []string, simTime time.Time) (*SimulatorUpdate, error) {
	st := s.StateAt(reportStep)
	act := st.Actions().Get(actionName)
	if act == nil {
		return nil, errInternal("triggered action %s is not defined at step %d", actionName, reportStep)
	}

	batch := &actionBatch{
		matchingWells: matchingWells,
		update:        NewSimulatorUpdate(),
		targetWellPI:  make(map[string]float64),
		wpimultGlobal: make(map[string]float64),
	}
	guard := NewErrorGuard()
	for i := range act.Keywords {
		kw := &act.Keywords[i]
		if err := s.applyKeyword(kw, reportStep, guard, batch); err != nil {
			return nil, err
		}
	}

	// well-wide WPIMULT factors issued inside an action apply at the end
	// of the batch, after any connection-scoped ones; the last factor
	// recorded per well is the one applied
	for well, factor := range batch.wpimultGlobal {
		w := st.MutableWell(well)
		if w == nil {
			continue
		}
		conns := w.Connections.Clone()
		conns.ApplyGlobalWPIMULT(factor)
		if w.UpdateConnections(conns) {
			st.UpdateWell(well, w)
			st.Events.AddEvent(EventCompletionChange)
			st.WellGroupEvents.AddEvent(well, EventCompletionChange)
			batch.update.AffectWell(well)
		}
	}

	act.MarkRun(simTime)
	st.Events.AddEvent(EventActionWell)
	for _, well := range matchingWells {
		st.WellGroupEvents.AddEvent(well, EventActionWell)
	}
	return batch.update, nil
}

// Checksum digests the full timeline in canonical form. Two schedules
// built from equivalent decks digest identically regardless of map
// insertion history.
func (s *Schedule) Checksum() uint64 {
	ser := serial.NewSerializer()
	return ser.Checksum(s)
}

// Pack serializes the timeline for a restart file.
func (s *Schedule) Pack() ([]byte, error) {
	ser := serial.NewSerializer()
	return ser.Pack(s)
}

// Unpack reconstructs a packed timeline into the receiver. The receiver
// must carry a registry and parse context already, typically from
// NewSchedule; those are runtime wiring and are not part of the wire
// form.
func (s *Schedule) Unpack(buf []byte) error {
	ser := serial.NewSerializer()
	return ser.Unpack(s, buf)
}

func (s *Schedule) SerializeOp(ser *serial.Serializer) {
	name := ""
	if s.units != nil {
		name = s.units.Name()
	}
	ser.String(&name)
	if ser.Unpacking() {
		s.units = unitSystemByName(name)
	}

	ser.Int(&s.grid.NX)
	ser.Int(&s.grid.NY)
	ser.Int(&s.grid.NZ)

	serial.Slice(ser, &s.states, serial.Ref(serial.Obj[ScheduleState]))
	if ser.Unpacking() && s.log == nil {
		s.log = logrus.WithField("component", "schedule")
	}
}

var monthNumbers = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "JLY": time.July, "AUG": time.August,
	"SEP": time.September, "OCT": time.October, "NOV": time.November,
	"DEC": time.December,
}

// parseDate reads one DATES record: day, month mnemonic, year and an
// optional HH:MM:SS time of day.
func parseDate(record *Record, location Location) (time.Time, error) {
	day := record.Item("DAY").GetInt(0)
	monthStr := record.Item("MONTH").GetTrimmedString(0)
	year := record.Item("YEAR").GetInt(0)

	month, ok := monthNumbers[monthStr]
	if !ok {
		return time.Time{}, NewInputError(location, "Unknown month mnemonic: %s", monthStr)
	}
	if day < 1 || day > 31 {
		return time.Time{}, NewInputError(location, "Invalid day of month: %d", day)
	}

	var hh, mm, ss int
	if ts := record.Item("TIME").GetTrimmedString(0); ts != "" {
		var ok bool
		hh, mm, ss, ok = parseTimeOfDay(ts)
		if !ok {
			return time.Time{}, NewInputError(location, "Invalid time of day: %s", ts)
		}
	}
	return time.Date(year, month, day, hh, mm, ss, 0, time.UTC), nil
}

func parseTimeOfDay(s string) (hh, mm, ss int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	hh, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	mm, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil {
		return 0, 0, 0, false
	}
	if len(parts) == 3 {
		sec, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return 0, 0, 0, false
		}
		ss = int(sec)
	}
	return hh, mm, ss, true
}
