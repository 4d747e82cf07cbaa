package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// EventKind is one bit in the per-step change log. A bit is set if and only
// if some handler actually changed state this step; handlers compare old
// against new before flagging, so re-issuing an unchanged setting never
// emits an event.
type EventKind uint64

const (
	EventNewWell EventKind = 1 << iota
	EventWellStatusChange
	EventCompletionChange
	EventProductionUpdate
	EventInjectionUpdate
	EventInjectionTypeChanged
	EventWellSwitchedInjectorProducer
	EventRequestOpenWell
	EventWellGroupEfficiencyUpdate
	EventWellProductivityIndex
	EventNewGroup
	EventGroupChange
	EventGroupProductionUpdate
	EventGroupInjectionUpdate
	EventGeoModifier
	EventTuningChange
	EventVFPChange
	EventUDQChange
	EventActionWell
	EventWellWelSpecsUpdate
)

// Events is the global change log for one report step: a monotonic bitmask
// of the kinds that fired.
type Events struct {
	mask uint64
}

// AddEvent OR-combines kind into the mask.
func (e *Events) AddEvent(kind EventKind) {
	e.mask |= uint64(kind)
}

// HasEvent reports whether any of the bits in kind fired this step.
func (e *Events) HasEvent(kind EventKind) bool {
	return e.mask&uint64(kind) != 0
}

// Reset clears the log at a step boundary.
func (e *Events) Reset() { e.mask = 0 }

func (e *Events) SerializeOp(s *serial.Serializer) {
	s.Uint64(&e.mask)
}

// WellGroupEvents is the per-entity variant of Events, keyed by well or
// group name. Querying a name with no recorded activity returns the empty
// mask.
type WellGroupEvents struct {
	events map[string]Events
}

// NewWellGroupEvents returns an empty per-entity log.
func NewWellGroupEvents() *WellGroupEvents {
	return &WellGroupEvents{events: make(map[string]Events)}
}

// AddEvent records kind against name.
func (we *WellGroupEvents) AddEvent(name string, kind EventKind) {
	ev := we.events[name]
	ev.AddEvent(kind)
	we.events[name] = ev
}

// HasEvent reports whether kind fired for name this step.
func (we *WellGroupEvents) HasEvent(name string, kind EventKind) bool {
	ev, ok := we.events[name]
	return ok && ev.HasEvent(kind)
}

// Reset clears all per-entity logs at a step boundary.
func (we *WellGroupEvents) Reset() {
	we.events = make(map[string]Events)
}

func (we *WellGroupEvents) SerializeOp(s *serial.Serializer) {
	if we.events == nil {
		we.events = make(map[string]Events)
	}
	serial.Map(s, &we.events, serial.Str, serial.Obj[Events])
}
