package sched

import (
	"sort"

	"github.com/deck-sim/deck-sim/sched/serial"
)

// ALQType is the meaning of the artificial-lift quantity axis of a VFP
// production table.
type ALQType int

const (
	ALQUndefined ALQType = iota
	ALQGasRate
	ALQInjGas
	ALQPump
	ALQCompression
	ALQBeanSize
)

// ALQTypeFromString parses the ALQ definition item of VFPPROD.
func ALQTypeFromString(s string, location Location) (ALQType, error) {
	switch s {
	case "", "''":
		return ALQUndefined, nil
	case "GRAT":
		return ALQGasRate, nil
	case "IGLR", "TGLR":
		return ALQInjGas, nil
	case "PUMP":
		return ALQPump, nil
	case "COMP":
		return ALQCompression, nil
	case "BEAN":
		return ALQBeanSize, nil
	}
	return ALQUndefined, NewInputError(location, "Unknown ALQ definition: %s", s)
}

// VFPProdTable is one vertical-flow-performance table for producers. Only
// the table header and axes matter to the schedule engine; interpolation
// belongs to the simulator.
type VFPProdTable struct {
	TableNum   int
	DatumDepth float64
	ALQ        ALQType
	FloAxis    []float64
	THPAxis    []float64
}

// NewVFPProdTable builds a table from a VFPPROD keyword: header record
// followed by the axis records.
func NewVFPProdTable(kw *Keyword, units UnitSystem) (*VFPProdTable, error) {
	if len(kw.Records) < 3 {
		return nil, NewInputError(kw.Location, "VFPPROD requires a header and two axis records")
	}
	header := &kw.Records[0]
	alq, err := ALQTypeFromString(header.Item("ALQ_DEF").GetTrimmedString(0), kw.Location)
	if err != nil {
		return nil, err
	}
	table := &VFPProdTable{
		TableNum:   header.Item("TABLE").GetInt(0),
		DatumDepth: header.Item("DATUM_DEPTH").GetSIDouble(0, units),
		ALQ:        alq,
	}
	if table.TableNum <= 0 {
		return nil, NewInputError(kw.Location, "VFPPROD table number must be positive, got %d", table.TableNum)
	}
	table.FloAxis = axisValues(&kw.Records[1], "FLOW_VALUES")
	table.THPAxis = axisValues(&kw.Records[2], "THP_VALUES")
	if !sort.Float64sAreSorted(table.FloAxis) {
		return nil, NewInputError(kw.Location, "VFPPROD flow axis must be ascending")
	}
	return table, nil
}

// VFPInjTable is one vertical-flow-performance table for injectors.
type VFPInjTable struct {
	TableNum   int
	DatumDepth float64
	FloAxis    []float64
	THPAxis    []float64
}

// NewVFPInjTable builds a table from a VFPINJ keyword.
func NewVFPInjTable(kw *Keyword, units UnitSystem) (*VFPInjTable, error) {
	if len(kw.Records) < 3 {
		return nil, NewInputError(kw.Location, "VFPINJ requires a header and two axis records")
	}
	header := &kw.Records[0]
	table := &VFPInjTable{
		TableNum:   header.Item("TABLE").GetInt(0),
		DatumDepth: header.Item("DATUM_DEPTH").GetSIDouble(0, units),
	}
	if table.TableNum <= 0 {
		return nil, NewInputError(kw.Location, "VFPINJ table number must be positive, got %d", table.TableNum)
	}
	table.FloAxis = axisValues(&kw.Records[1], "FLOW_VALUES")
	table.THPAxis = axisValues(&kw.Records[2], "THP_VALUES")
	return table, nil
}

func axisValues(record *Record, item string) []float64 {
	it := record.Item(item)
	values := make([]float64, 0, len(it.Values))
	for i := range it.Values {
		values = append(values, it.Values[i].F)
	}
	return values
}

func (t *VFPProdTable) SerializeOp(s *serial.Serializer) {
	s.Int(&t.TableNum)
	s.Float64(&t.DatumDepth)
	alq := int(t.ALQ)
	s.Int(&alq)
	t.ALQ = ALQType(alq)
	serial.Slice(s, &t.FloAxis, serial.F64)
	serial.Slice(s, &t.THPAxis, serial.F64)
}

func (t *VFPInjTable) SerializeOp(s *serial.Serializer) {
	s.Int(&t.TableNum)
	s.Float64(&t.DatumDepth)
	serial.Slice(s, &t.FloAxis, serial.F64)
	serial.Slice(s, &t.THPAxis, serial.F64)
}
