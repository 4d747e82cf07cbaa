package sched

import (
	"github.com/sirupsen/logrus"
)

// HandlerContext is everything a keyword handler may touch: the keyword
// occurrence itself, the schedule being built, and the per-batch
// bookkeeping shared between handlers. Handlers receive it by pointer and
// report failure through their error return; they never panic on bad
// input.
type HandlerContext struct {
	schedule    *Schedule
	keyword     *Keyword
	currentStep int

	grid  ScheduleGrid
	units UnitSystem

	// actionMode is set while replaying the body of a triggered ACTIONX;
	// matchingWells then carries the wells its condition selected, which
	// the '?' well name expands to.
	actionMode    bool
	matchingWells []string

	parseCtx *ParseContext
	guard    *ErrorGuard

	simUpdate *SimulatorUpdate

	// targetWellPI carries WELPI productivity index targets for the
	// simulator to scale connection factors against.
	targetWellPI map[string]float64

	// wpimultGlobal collects well-wide WPIMULT factors issued inside an
	// action, applied at the end of the batch with the last record per
	// well winning.
	wpimultGlobal map[string]float64

	log *logrus.Entry
}

func (hc *HandlerContext) Keyword() *Keyword { return hc.keyword }
func (hc *HandlerContext) Location() Location { return hc.keyword.Location }
func (hc *HandlerContext) Grid() ScheduleGrid { return hc.grid }
func (hc *HandlerContext) Units() UnitSystem { return hc.units }
func (hc *HandlerContext) Step() int { return hc.currentStep }
func (hc *HandlerContext) ActionMode() bool { return hc.actionMode }

// State is the schedule state under construction for the current step.
func (hc *HandlerContext) State() *ScheduleState {
	return hc.schedule.StateAt(hc.currentStep)
}

// WellNames expands a well name or pattern against the wells known at the
// current step, in deck insertion order. Unknown names and empty matches
// are routed through the parse-context policy for invalid name patterns;
// when the policy does not escalate, the empty slice is returned.
func (hc *HandlerContext) WellNames(pattern string) ([]string, error) {
	st := hc.State()

	if pattern == "?" && hc.actionMode {
		return hc.matchingWells, nil
	}
	if isListPattern(pattern) {
		if wl, ok := st.WLists().Get(pattern); ok {
			return wl.Wells(), nil
		}
		return nil, hc.invalidNamePattern(pattern)
	}
	names := resolveNames(pattern, st.Wells().Names())
	if len(names) == 0 {
		return nil, hc.invalidNamePattern(pattern)
	}
	return names, nil
}

// GroupNames is the group counterpart of WellNames.
func (hc *HandlerContext) GroupNames(pattern string) ([]string, error) {
	names := resolveNames(pattern, hc.State().Groups().Names())
	if len(names) == 0 {
		return nil, hc.invalidNamePattern(pattern)
	}
	return names, nil
}

func (hc *HandlerContext) invalidNamePattern(pattern string) error {
	msg := "Keyword " + hc.keyword.Name + " has invalid well or group name " + pattern
	return hc.parseCtx.HandleError(ParseInvalidName, msg, hc.Location(), hc.guard)
}

// AffectedWell marks a well touched for the simulator digest, when one is
// being collected.
func (hc *HandlerContext) AffectedWell(name string) {
	if hc.simUpdate != nil {
		hc.simUpdate.AffectWell(name)
	}
}

// RecordWellStructureChange flags that wells or connections were added or
// removed, which forces the simulator to rebuild its well containers.
func (hc *HandlerContext) RecordWellStructureChange() {
	if hc.simUpdate != nil {
		hc.simUpdate.WellStructureChanged = true
	}
}

// RecordTranUpdate flags a transmissibility modification from a geology
// keyword.
func (hc *HandlerContext) RecordTranUpdate() {
	if hc.simUpdate != nil {
		hc.simUpdate.TranUpdate = true
	}
}

// SetTargetWellPI records a WELPI target for the well.
func (hc *HandlerContext) SetTargetWellPI(well string, pi float64) {
	if hc.targetWellPI != nil {
		hc.targetWellPI[well] = pi
	}
}

// AddGlobalWPIMULT records a well-wide WPIMULT factor issued inside an
// action. A later record for the same well replaces the earlier factor.
func (hc *HandlerContext) AddGlobalWPIMULT(well string, factor float64) {
	if hc.wpimultGlobal != nil {
		hc.wpimultGlobal[well] = factor
	}
}

// UpdateWellStatus changes the status of one well, keeping the event log
// and the open-request bookkeeping consistent. Opening a well that has
// been shut by economic limits goes through the open-request event so the
// simulator can veto it.
func (hc *HandlerContext) UpdateWellStatus(name string, status WellStatus) error {
	st := hc.State()
	well := st.MutableWell(name)
	if well == nil {
		return errInternal("status change for undefined well %s", name)
	}
	if well.UpdateStatus(status) {
		if status == StatusOpen {
			st.Events.AddEvent(EventRequestOpenWell)
			st.WellGroupEvents.AddEvent(name, EventRequestOpenWell)
		}
		st.Events.AddEvent(EventWellStatusChange)
		st.WellGroupEvents.AddEvent(name, EventWellStatusChange)
		st.UpdateWell(name, well)
		hc.AffectedWell(name)
	}
	return nil
}

// Warn routes a non-fatal complaint through the configured logger.
func (hc *HandlerContext) Warn(format string, args ...any) {
	if hc.log != nil {
		hc.log.Warnf(format, args...)
		return
	}
	logrus.Warnf(format, args...)
}
