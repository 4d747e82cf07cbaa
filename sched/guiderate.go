package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// GuideRateModel is the GUIDERAT production guide rate formula: the
// minimum recalculation delay, the nominated phase and the coefficients
// A through F of the rate expression, plus the increase and damping
// controls.
type GuideRateModel struct {
	MinCalcDelay  float64
	Phase         string
	A             float64
	B             float64
	C             float64
	D             float64
	E             float64
	F             float64
	AllowIncrease bool
	DampingFactor float64
	UseFreeGas    bool
}

// DefaultGuideRateModel returns the documented defaults: no delay, no
// nominated phase, increases allowed, no damping.
func DefaultGuideRateModel() GuideRateModel {
	return GuideRateModel{
		AllowIncrease: true,
		DampingFactor: 1.0,
	}
}

// GuideRateModelFromRecord builds a model from one GUIDERAT record,
// starting from prev so defaulted items keep the previous setting.
func GuideRateModelFromRecord(record *Record, prev GuideRateModel, location Location) (GuideRateModel, error) {
	model := prev
	if item := record.Item("MIN_CALC_TIME"); item.HasValue(0) {
		model.MinCalcDelay = item.GetDouble(0)
	}
	if model.MinCalcDelay < 0 {
		return model, NewInputError(location,
			"GUIDERAT minimum recalculation delay must be non-negative, got %g", model.MinCalcDelay)
	}
	if item := record.Item("NOMINATED_PHASE"); item.HasValue(0) {
		model.Phase = item.GetTrimmedString(0)
	}
	if item := record.Item("A"); item.HasValue(0) {
		model.A = item.GetDouble(0)
	}
	if item := record.Item("B"); item.HasValue(0) {
		model.B = item.GetDouble(0)
	}
	if item := record.Item("C"); item.HasValue(0) {
		model.C = item.GetDouble(0)
	}
	if item := record.Item("D"); item.HasValue(0) {
		model.D = item.GetDouble(0)
	}
	if item := record.Item("E"); item.HasValue(0) {
		model.E = item.GetDouble(0)
	}
	if item := record.Item("F"); item.HasValue(0) {
		model.F = item.GetDouble(0)
	}
	if item := record.Item("ALLOW_INCREASE"); item.HasValue(0) {
		model.AllowIncrease = ToBool(item.GetTrimmedString(0))
	}
	if item := record.Item("DAMPING_FACTOR"); item.HasValue(0) {
		model.DampingFactor = item.GetDouble(0)
	}
	if item := record.Item("USE_FREE_GAS"); item.HasValue(0) {
		model.UseFreeGas = ToBool(item.GetTrimmedString(0))
	}
	return model, nil
}

func (m *GuideRateModel) SerializeOp(s *serial.Serializer) {
	s.Float64(&m.MinCalcDelay)
	serial.Str(s, &m.Phase)
	s.Float64(&m.A)
	s.Float64(&m.B)
	s.Float64(&m.C)
	s.Float64(&m.D)
	s.Float64(&m.E)
	s.Float64(&m.F)
	s.Bool(&m.AllowIncrease)
	s.Float64(&m.DampingFactor)
	s.Bool(&m.UseFreeGas)
}
