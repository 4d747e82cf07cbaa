package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// WellStatus is the lifecycle state of a well. SHUT is absorbing during
// automatic processing: once shut, only an explicit reopen in the deck
// brings the well back.
type WellStatus int

const (
	StatusOpen WellStatus = iota
	StatusStop
	StatusShut
	StatusAuto
)

func (ws WellStatus) String() string {
	switch ws {
	case StatusOpen:
		return "OPEN"
	case StatusStop:
		return "STOP"
	case StatusShut:
		return "SHUT"
	case StatusAuto:
		return "AUTO"
	}
	return "UNKNOWN"
}

// WellStatusFromString parses a deck status item.
func WellStatusFromString(s string, location Location) (WellStatus, error) {
	switch s {
	case "OPEN":
		return StatusOpen, nil
	case "STOP":
		return StatusStop, nil
	case "SHUT":
		return StatusShut, nil
	case "AUTO":
		return StatusAuto, nil
	}
	return StatusShut, NewInputError(location, "Unknown well status: %s", s)
}

// Phase is a fluid phase referenced by well and group controls.
type Phase int

const (
	PhaseOil Phase = iota
	PhaseGas
	PhaseWater
	PhaseLiquid
)

// PhaseFromString parses a deck phase item.
func PhaseFromString(s string, location Location) (Phase, error) {
	switch s {
	case "OIL":
		return PhaseOil, nil
	case "LIQ":
		return PhaseLiquid, nil
	case "GAS":
		return PhaseGas, nil
	case "WATER", "WAT":
		return PhaseWater, nil
	}
	return PhaseOil, NewInputError(location, "Unknown phase: %s", s)
}

// Well is the immutable value object for one well at one report step.
// Handlers never mutate a bound Well in place: they copy the value, revise
// the copy, and rebind it in the current step's store. The property groups
// hang off pointers so an unrevised group stays shared between the old and
// the new version of the well.
type Well struct {
	Name           string
	Group          string
	HeadI, HeadJ   int
	RefDepth       float64
	HasRefDepth    bool
	PreferredPhase Phase
	AllowCrossFlow bool
	AutoShutIn     bool // SHUT rather than STOP on automatic closure
	Status         WellStatus
	InsertIndex    int // deck order, fixed at creation

	producer    bool
	prediction  bool
	hasProduced bool
	hasInjected bool

	EfficiencyFactor float64
	SolventFraction  float64
	Temperature      float64
	GuideRate        float64

	Production  *ProductionProperties
	Injection   *InjectionProperties
	Econ        *EconLimits
	Tracers     *TracerProperties
	Connections *WellConnections

	PAvg          PAvg
	WPaveRefDepth float64 // 0 means unset
}

// NewWell builds the default well WELSPECS creates: shut, producer,
// cross-flow allowed, unity efficiency.
func NewWell(name, group string, headI, headJ int, phase Phase, insertIndex int) *Well {
	return &Well{
		Name:             name,
		Group:            group,
		HeadI:            headI,
		HeadJ:            headJ,
		PreferredPhase:   phase,
		AllowCrossFlow:   true,
		AutoShutIn:       true,
		Status:           StatusShut,
		InsertIndex:      insertIndex,
		producer:         true,
		EfficiencyFactor: 1.0,
		Production:       defaultProduction(),
		Injection:        defaultInjection(),
		Econ:             &EconLimits{},
		Tracers:          NewTracerProperties(),
		Connections:      &WellConnections{},
		PAvg:             DefaultPAvg(),
	}
}

// IsProducer reports whether the well currently produces.
func (w *Well) IsProducer() bool { return w.producer }

// IsInjector reports whether the well currently injects.
func (w *Well) IsInjector() bool { return !w.producer }

// HasProduced reports whether the well has ever been an open producer.
func (w *Well) HasProduced() bool { return w.hasProduced }

// HasInjected reports whether the well has ever been an open injector.
func (w *Well) HasInjected() bool { return w.hasInjected }

// Predicting reports whether the well runs in prediction mode (as opposed
// to history matching).
func (w *Well) Predicting() bool { return w.prediction }

// UpdateStatus revises the lifecycle state, reporting whether anything
// changed.
func (w *Well) UpdateStatus(status WellStatus) bool {
	if w.Status == status {
		return false
	}
	w.Status = status
	return true
}

// UpdateProduction installs revised production properties and marks the
// well a producer. The write is skipped when the revision equals the
// current value, so no event fires for a no-op record.
func (w *Well) UpdateProduction(p *ProductionProperties) bool {
	changed := !w.producer || *w.Production != *p
	w.Production = p
	w.producer = true
	return changed
}

// UpdateInjection installs revised injection properties and switches the
// well to injecting.
func (w *Well) UpdateInjection(p *InjectionProperties) bool {
	changed := w.producer || *w.Injection != *p
	w.Injection = p
	w.producer = false
	return changed
}

// UpdatePrediction flips between prediction and history mode.
func (w *Well) UpdatePrediction(prediction bool) bool {
	if w.prediction == prediction {
		return false
	}
	w.prediction = prediction
	return true
}

// UpdateHasProduced latches the has-produced flag for an open producer.
func (w *Well) UpdateHasProduced() bool {
	if !w.producer || w.Status != StatusOpen || w.hasProduced {
		return false
	}
	w.hasProduced = true
	return true
}

// UpdateHasInjected latches the has-injected flag for an open injector.
func (w *Well) UpdateHasInjected() bool {
	if w.producer || w.Status != StatusOpen || w.hasInjected {
		return false
	}
	w.hasInjected = true
	return true
}

// UpdateEfficiencyFactor revises the WEFAC efficiency factor.
func (w *Well) UpdateEfficiencyFactor(factor float64) bool {
	if w.EfficiencyFactor == factor {
		return false
	}
	w.EfficiencyFactor = factor
	return true
}

// UpdateEconLimits installs revised economic limits.
func (w *Well) UpdateEconLimits(limits *EconLimits) bool {
	if *w.Econ == *limits {
		return false
	}
	w.Econ = limits
	return true
}

// UpdateTracer installs revised tracer concentrations.
func (w *Well) UpdateTracer(tracers *TracerProperties) bool {
	if w.Tracers.Equal(tracers) {
		return false
	}
	w.Tracers = tracers
	return true
}

// UpdateConnections installs a revised connection set.
func (w *Well) UpdateConnections(conns *WellConnections) bool {
	if w.Connections.Equal(conns) {
		return false
	}
	w.Connections = conns
	return true
}

// UpdateWellGuideRate revises the WELTARG GUID guide rate.
func (w *Well) UpdateWellGuideRate(value float64) bool {
	if w.GuideRate == value {
		return false
	}
	w.GuideRate = value
	return true
}

// UpdatePAvg installs a revised block-average pressure configuration.
func (w *Well) UpdatePAvg(pavg PAvg) bool {
	if w.PAvg == pavg {
		return false
	}
	w.PAvg = pavg
	return true
}

// ConvertDeckPI converts a deck-unit productivity index to SI using the
// well's preferred phase for the rate dimension.
func (w *Well) ConvertDeckPI(pi float64, units UnitSystem) float64 {
	rate := "LiquidRate"
	if w.PreferredPhase == PhaseGas {
		rate = "GasRate"
	}
	return pi * units.Parse(rate).SIScaling() / units.Parse("Pressure").SIScaling()
}

func (w *Well) SerializeOp(s *serial.Serializer) {
	s.String(&w.Name)
	s.String(&w.Group)
	s.Int(&w.HeadI)
	s.Int(&w.HeadJ)
	s.Float64(&w.RefDepth)
	s.Bool(&w.HasRefDepth)
	phase := int(w.PreferredPhase)
	s.Int(&phase)
	w.PreferredPhase = Phase(phase)
	s.Bool(&w.AllowCrossFlow)
	s.Bool(&w.AutoShutIn)
	status := int(w.Status)
	s.Int(&status)
	w.Status = WellStatus(status)
	s.Int(&w.InsertIndex)
	s.Bool(&w.producer)
	s.Bool(&w.prediction)
	s.Bool(&w.hasProduced)
	s.Bool(&w.hasInjected)
	s.Float64(&w.EfficiencyFactor)
	s.Float64(&w.SolventFraction)
	s.Float64(&w.Temperature)
	s.Float64(&w.GuideRate)
	serial.Shared(s, &w.Production, serial.Obj[ProductionProperties])
	serial.Shared(s, &w.Injection, serial.Obj[InjectionProperties])
	serial.Shared(s, &w.Econ, serial.Obj[EconLimits])
	serial.Shared(s, &w.Tracers, serial.Obj[TracerProperties])
	serial.Shared(s, &w.Connections, serial.Obj[WellConnections])
	w.PAvg.SerializeOp(s)
	s.Float64(&w.WPaveRefDepth)
}
