package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// PAvgDepthCorrection selects how block pressures are depth-corrected when
// averaging around a well.
type PAvgDepthCorrection int

const (
	PAvgWellCorrection PAvgDepthCorrection = iota
	PAvgResCorrection
	PAvgNoCorrection
)

// PAvg is the WPAVE/WWPAVE block-average pressure configuration: the inner
// block weighting F1, the connection weighting F2, the depth correction
// mode and whether only open connections contribute.
type PAvg struct {
	InnerWeight     float64
	ConnWeight      float64
	DepthCorrection PAvgDepthCorrection
	OpenConnections bool
}

// DefaultPAvg returns the documented defaults: F1=0.5, F2=1.0, well-depth
// correction, open connections only.
func DefaultPAvg() PAvg {
	return PAvg{
		InnerWeight:     0.5,
		ConnWeight:      1.0,
		DepthCorrection: PAvgWellCorrection,
		OpenConnections: true,
	}
}

// PAvgFromRecord builds a configuration from one WPAVE/WWPAVE record,
// keeping defaults for defaulted items.
func PAvgFromRecord(record *Record, location Location) (PAvg, error) {
	pavg := DefaultPAvg()
	if item := record.Item("F1"); !item.DefaultApplied(0) {
		pavg.InnerWeight = item.GetDouble(0)
	}
	if item := record.Item("F2"); !item.DefaultApplied(0) {
		pavg.ConnWeight = item.GetDouble(0)
	}
	if item := record.Item("DEPTH_CORRECTION"); !item.DefaultApplied(0) {
		switch item.GetTrimmedString(0) {
		case "WELL":
			pavg.DepthCorrection = PAvgWellCorrection
		case "RES":
			pavg.DepthCorrection = PAvgResCorrection
		case "NONE":
			pavg.DepthCorrection = PAvgNoCorrection
		default:
			return pavg, NewInputError(location,
				"Unknown depth correction %s", item.GetTrimmedString(0))
		}
	}
	if item := record.Item("CONNECTION"); !item.DefaultApplied(0) {
		pavg.OpenConnections = item.GetTrimmedString(0) == "OPEN"
	}
	return pavg, nil
}

// Validate enforces the documented weight ranges. F1 may be negative (a
// negative value selects an alternative averaging procedure) but must not
// exceed one; F2 must lie in [0,1].
func (p PAvg) Validate(location Location) error {
	if p.InnerWeight > 1.0 {
		return NewInputError(location,
			"Inner block weighting F1 must not exceed 1.0. Got %g", p.InnerWeight)
	}
	if p.ConnWeight < 0.0 || p.ConnWeight > 1.0 {
		return NewInputError(location,
			"Connection weighting factor F2 must be between zero and one inclusive. Got %g instead.",
			p.ConnWeight)
	}
	return nil
}

func (p *PAvg) SerializeOp(s *serial.Serializer) {
	s.Float64(&p.InnerWeight)
	s.Float64(&p.ConnWeight)
	dc := int(p.DepthCorrection)
	s.Int(&dc)
	p.DepthCorrection = PAvgDepthCorrection(dc)
	s.Bool(&p.OpenConnections)
}
