package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// Pressure of one standard atmosphere in Pa; the default BHP limit
// installed when a well switches between producing and injecting.
const defaultBHPLimit = 101325.0

// ProducerCMode is an active or target production control.
type ProducerCMode int

const (
	ProducerCModeNone ProducerCMode = iota
	ProducerORAT
	ProducerWRAT
	ProducerGRAT
	ProducerLRAT
	ProducerRESV
	ProducerBHP
	ProducerTHP
	ProducerGRUP
)

// ProducerCModeFromString parses a production control mode item.
func ProducerCModeFromString(s string, location Location) (ProducerCMode, error) {
	switch s {
	case "ORAT":
		return ProducerORAT, nil
	case "WRAT":
		return ProducerWRAT, nil
	case "GRAT":
		return ProducerGRAT, nil
	case "LRAT":
		return ProducerLRAT, nil
	case "RESV":
		return ProducerRESV, nil
	case "BHP":
		return ProducerBHP, nil
	case "THP":
		return ProducerTHP, nil
	case "GRUP":
		return ProducerGRUP, nil
	}
	return ProducerCModeNone, NewInputError(location, "Unknown production control mode: %s", s)
}

// ProductionProperties is the WCONPROD/WCONHIST-controlled state of a
// producing well. The struct is comparable so the write-back-only-if-changed
// contract is a single equality test.
type ProductionProperties struct {
	OilRate    UDAValue
	WaterRate  UDAValue
	GasRate    UDAValue
	LiquidRate UDAValue
	ResVRate   UDAValue
	BHPLimit   UDAValue
	THPLimit   UDAValue
	ALQ        UDAValue
	VFPTable   int
	CMode      ProducerCMode
	controls   uint32
	Predicted  bool
}

func defaultProduction() *ProductionProperties {
	return &ProductionProperties{
		BHPLimit: Scalar(defaultBHPLimit),
		CMode:    ProducerCModeNone,
	}
}

// HasControl reports whether mode is among the active controls.
func (p *ProductionProperties) HasControl(mode ProducerCMode) bool {
	return p.controls&(1<<uint(mode)) != 0
}

// AddControl activates mode.
func (p *ProductionProperties) AddControl(mode ProducerCMode) {
	p.controls |= 1 << uint(mode)
}

// ClearControls deactivates every control.
func (p *ProductionProperties) ClearControls() {
	p.controls = 0
}

// ResetDefaultBHPLimit restores the one-atmosphere BHP limit. Applied when
// a well switches from injecting to producing: the stale limit of the other
// role must not linger.
func (p *ProductionProperties) ResetDefaultBHPLimit() {
	p.BHPLimit = Scalar(defaultBHPLimit)
}

// rateControl wires one rate item into the property set: an explicit value
// activates the control, a defaulted item keeps the previous value.
func rateControl(item *Item, units UnitSystem, dimension string, prev UDAValue, p *ProductionProperties, mode ProducerCMode) UDAValue {
	if item.DefaultApplied(0) {
		return prev
	}
	p.AddControl(mode)
	return item.GetUDA(0).SI(units.Parse(dimension).SIScaling())
}

// HandleWCONPROD applies one WCONPROD record on top of the previous
// properties, in prediction mode.
func (p *ProductionProperties) HandleWCONPROD(record *Record, units UnitSystem, location Location) error {
	cmodeItem := record.Item("CMODE")
	if !cmodeItem.DefaultApplied(0) {
		cmode, err := ProducerCModeFromString(cmodeItem.GetTrimmedString(0), location)
		if err != nil {
			return err
		}
		p.CMode = cmode
	}

	p.OilRate = rateControl(record.Item("ORAT"), units, "LiquidRate", p.OilRate, p, ProducerORAT)
	p.WaterRate = rateControl(record.Item("WRAT"), units, "LiquidRate", p.WaterRate, p, ProducerWRAT)
	p.GasRate = rateControl(record.Item("GRAT"), units, "GasRate", p.GasRate, p, ProducerGRAT)
	p.LiquidRate = rateControl(record.Item("LRAT"), units, "LiquidRate", p.LiquidRate, p, ProducerLRAT)
	p.ResVRate = rateControl(record.Item("RESV"), units, "ReservoirVolume", p.ResVRate, p, ProducerRESV)

	bhp := record.Item("BHP")
	if !bhp.DefaultApplied(0) {
		p.BHPLimit = bhp.GetUDA(0).SI(units.Parse("Pressure").SIScaling())
	}
	p.AddControl(ProducerBHP)

	thp := record.Item("THP")
	if !thp.DefaultApplied(0) {
		p.THPLimit = thp.GetUDA(0).SI(units.Parse("Pressure").SIScaling())
		p.AddControl(ProducerTHP)
	}

	vfp := record.Item("VFP_TABLE")
	if !vfp.DefaultApplied(0) {
		p.VFPTable = vfp.GetInt(0)
	}

	alq := record.Item("ALQ")
	if !alq.DefaultApplied(0) {
		p.ALQ = alq.GetUDA(0)
	}

	p.Predicted = true
	if p.CMode != ProducerCModeNone && !p.HasControl(p.CMode) && p.CMode != ProducerGRUP {
		return NewInputError(location,
			"The control mode %v is not among the active controls", p.CMode)
	}
	return nil
}

// HandleWCONHIST applies one WCONHIST record: observed rates in history
// mode. Control modes outside ORAT/WRAT/GRAT/LRAT/RESV/BHP are illegal
// here.
func (p *ProductionProperties) HandleWCONHIST(record *Record, units UnitSystem, location Location) error {
	cmode, err := ProducerCModeFromString(record.Item("CMODE").GetTrimmedString(0), location)
	if err != nil {
		return err
	}
	switch cmode {
	case ProducerORAT, ProducerWRAT, ProducerGRAT, ProducerLRAT, ProducerRESV, ProducerBHP:
	default:
		return NewInputError(location, "Control mode %v is not supported in history mode", cmode)
	}

	liquidScale := units.Parse("LiquidRate").SIScaling()
	gasScale := units.Parse("GasRate").SIScaling()

	p.ClearControls()
	p.CMode = cmode
	p.AddControl(cmode)
	p.OilRate = record.Item("ORAT").GetUDA(0).SI(liquidScale)
	p.WaterRate = record.Item("WRAT").GetUDA(0).SI(liquidScale)
	p.GasRate = record.Item("GRAT").GetUDA(0).SI(gasScale)
	p.LiquidRate = UDAValue{}
	p.ResVRate = UDAValue{}

	vfp := record.Item("VFP_TABLE")
	if !vfp.DefaultApplied(0) {
		p.VFPTable = vfp.GetInt(0)
	}

	p.Predicted = false
	p.AddControl(ProducerBHP)
	return nil
}

// HandleWELTARG revises one production target in place.
func (p *ProductionProperties) HandleWELTARG(cmode WELTARGCMode, value UDAValue, siFactorP float64) error {
	switch cmode {
	case TargORAT:
		p.OilRate = value
		p.AddControl(ProducerORAT)
	case TargWRAT:
		p.WaterRate = value
		p.AddControl(ProducerWRAT)
	case TargGRAT:
		p.GasRate = value
		p.AddControl(ProducerGRAT)
	case TargLRAT:
		p.LiquidRate = value
		p.AddControl(ProducerLRAT)
	case TargRESV:
		p.ResVRate = value
		p.AddControl(ProducerRESV)
	case TargBHP:
		p.BHPLimit = value.SI(siFactorP)
	case TargTHP:
		p.THPLimit = value.SI(siFactorP)
		p.AddControl(ProducerTHP)
	case TargVFP:
		p.VFPTable = int(value.Get())
	case TargGUID:
		// guide rate lives on the well itself
	default:
		return errInternal("WELTARG control %v not wired for producers", cmode)
	}
	return nil
}

func (p *ProductionProperties) SerializeOp(s *serial.Serializer) {
	p.OilRate.SerializeOp(s)
	p.WaterRate.SerializeOp(s)
	p.GasRate.SerializeOp(s)
	p.LiquidRate.SerializeOp(s)
	p.ResVRate.SerializeOp(s)
	p.BHPLimit.SerializeOp(s)
	p.THPLimit.SerializeOp(s)
	p.ALQ.SerializeOp(s)
	s.Int(&p.VFPTable)
	cmode := int(p.CMode)
	s.Int(&cmode)
	p.CMode = ProducerCMode(cmode)
	controls := uint64(p.controls)
	s.Uint64(&controls)
	p.controls = uint32(controls)
	s.Bool(&p.Predicted)
}

// InjectorType is the injected phase.
type InjectorType int

const (
	InjectorWater InjectorType = iota
	InjectorGas
	InjectorOil
	InjectorMulti
)

// InjectorTypeFromString parses an injector type item.
func InjectorTypeFromString(s string, location Location) (InjectorType, error) {
	switch s {
	case "WATER", "WAT":
		return InjectorWater, nil
	case "GAS":
		return InjectorGas, nil
	case "OIL":
		return InjectorOil, nil
	case "MULTI":
		return InjectorMulti, nil
	}
	return InjectorWater, NewInputError(location, "Unknown injector type: %s", s)
}

// InjectorCMode is an active or target injection control.
type InjectorCMode int

const (
	InjectorCModeNone InjectorCMode = iota
	InjectorRATE
	InjectorRESV
	InjectorBHP
	InjectorTHP
	InjectorGRUP
)

// InjectorCModeFromString parses an injection control mode item.
func InjectorCModeFromString(s string, location Location) (InjectorCMode, error) {
	switch s {
	case "RATE":
		return InjectorRATE, nil
	case "RESV":
		return InjectorRESV, nil
	case "BHP":
		return InjectorBHP, nil
	case "THP":
		return InjectorTHP, nil
	case "GRUP":
		return InjectorGRUP, nil
	}
	return InjectorCModeNone, NewInputError(location, "Unknown injection control mode: %s", s)
}

// InjectionProperties is the WCONINJE/WCONINJH-controlled state of an
// injecting well. Comparable, like ProductionProperties.
type InjectionProperties struct {
	Type          InjectorType
	SurfaceRate   UDAValue
	ReservoirRate UDAValue
	BHPLimit      UDAValue
	THPLimit      UDAValue
	CMode         InjectorCMode
	controls      uint32
	Temperature   float64
	Predicted     bool
}

func defaultInjection() *InjectionProperties {
	return &InjectionProperties{
		BHPLimit: Scalar(defaultBHPLimit),
		CMode:    InjectorCModeNone,
	}
}

// HasControl reports whether mode is among the active controls.
func (p *InjectionProperties) HasControl(mode InjectorCMode) bool {
	return p.controls&(1<<uint(mode)) != 0
}

// AddControl activates mode.
func (p *InjectionProperties) AddControl(mode InjectorCMode) {
	p.controls |= 1 << uint(mode)
}

// ResetBHPLimit restores the one-atmosphere BHP limit; applied on a
// producer/injector switch.
func (p *InjectionProperties) ResetBHPLimit() {
	p.BHPLimit = Scalar(defaultBHPLimit)
}

func (p *InjectionProperties) rateDimension(units UnitSystem) float64 {
	if p.Type == InjectorGas {
		return units.Parse("GasRate").SIScaling()
	}
	return units.Parse("LiquidRate").SIScaling()
}

// HandleWCONINJE applies one WCONINJE record on top of the previous
// properties, in prediction mode.
func (p *InjectionProperties) HandleWCONINJE(record *Record, units UnitSystem, availableForGroup bool, location Location) error {
	injType, err := InjectorTypeFromString(record.Item("TYPE").GetTrimmedString(0), location)
	if err != nil {
		return err
	}
	p.Type = injType

	cmode, err := InjectorCModeFromString(record.Item("CMODE").GetTrimmedString(0), location)
	if err != nil {
		return err
	}
	p.controls = 0
	p.CMode = cmode
	p.AddControl(cmode)
	if availableForGroup {
		p.AddControl(InjectorGRUP)
	}

	rateScale := p.rateDimension(units)
	surf := record.Item("RATE")
	if !surf.DefaultApplied(0) {
		p.SurfaceRate = surf.GetUDA(0).SI(rateScale)
		p.AddControl(InjectorRATE)
	} else if cmode == InjectorRATE {
		return NewInputError(location, "Injection rate control specified but surface rate defaulted")
	}

	resv := record.Item("RESV")
	if !resv.DefaultApplied(0) {
		p.ReservoirRate = resv.GetUDA(0).SI(units.Parse("ReservoirVolume").SIScaling())
		p.AddControl(InjectorRESV)
	}

	bhp := record.Item("BHP")
	if !bhp.DefaultApplied(0) {
		p.BHPLimit = bhp.GetUDA(0).SI(units.Parse("Pressure").SIScaling())
	}
	p.AddControl(InjectorBHP)

	thp := record.Item("THP")
	if !thp.DefaultApplied(0) {
		p.THPLimit = thp.GetUDA(0).SI(units.Parse("Pressure").SIScaling())
		p.AddControl(InjectorTHP)
	}

	p.Predicted = true
	return nil
}

// HandleWCONINJH applies one WCONINJH record: observed injection in history
// mode.
func (p *InjectionProperties) HandleWCONINJH(record *Record, units UnitSystem, location Location) error {
	injType, err := InjectorTypeFromString(record.Item("TYPE").GetTrimmedString(0), location)
	if err != nil {
		return err
	}
	p.Type = injType
	p.SurfaceRate = record.Item("RATE").GetUDA(0).SI(p.rateDimension(units))

	bhp := record.Item("BHP")
	if !bhp.DefaultApplied(0) {
		p.BHPLimit = bhp.GetUDA(0).SI(units.Parse("Pressure").SIScaling())
	}

	p.controls = 0
	p.CMode = InjectorRATE
	p.AddControl(InjectorRATE)
	p.AddControl(InjectorBHP)
	p.Predicted = false
	return nil
}

// HandleWELTARG revises one injection target in place.
func (p *InjectionProperties) HandleWELTARG(cmode WELTARGCMode, value UDAValue, siFactorP float64) error {
	switch cmode {
	case TargORAT, TargWRAT, TargGRAT:
		p.SurfaceRate = value
		p.AddControl(InjectorRATE)
	case TargRESV:
		p.ReservoirRate = value
		p.AddControl(InjectorRESV)
	case TargBHP:
		p.BHPLimit = value.SI(siFactorP)
	case TargTHP:
		p.THPLimit = value.SI(siFactorP)
		p.AddControl(InjectorTHP)
	case TargGUID:
		// guide rate lives on the well itself
	default:
		return errInternal("WELTARG control %v not wired for injectors", cmode)
	}
	return nil
}

func (p *InjectionProperties) SerializeOp(s *serial.Serializer) {
	t := int(p.Type)
	s.Int(&t)
	p.Type = InjectorType(t)
	p.SurfaceRate.SerializeOp(s)
	p.ReservoirRate.SerializeOp(s)
	p.BHPLimit.SerializeOp(s)
	p.THPLimit.SerializeOp(s)
	cmode := int(p.CMode)
	s.Int(&cmode)
	p.CMode = InjectorCMode(cmode)
	controls := uint64(p.controls)
	s.Uint64(&controls)
	p.controls = uint32(controls)
	s.Float64(&p.Temperature)
	s.Bool(&p.Predicted)
}

// WELTARGCMode selects which target a WELTARG record revises.
type WELTARGCMode int

const (
	TargORAT WELTARGCMode = iota
	TargWRAT
	TargGRAT
	TargLRAT
	TargRESV
	TargBHP
	TargTHP
	TargVFP
	TargGUID
)

// WELTARGCModeFromString parses the WELTARG control item.
func WELTARGCModeFromString(s string, location Location) (WELTARGCMode, error) {
	switch s {
	case "ORAT":
		return TargORAT, nil
	case "WRAT":
		return TargWRAT, nil
	case "GRAT":
		return TargGRAT, nil
	case "LRAT":
		return TargLRAT, nil
	case "RESV":
		return TargRESV, nil
	case "BHP":
		return TargBHP, nil
	case "THP":
		return TargTHP, nil
	case "VFP":
		return TargVFP, nil
	case "GUID":
		return TargGUID, nil
	}
	return TargORAT, NewInputError(location, "Unknown WELTARG control: %s", s)
}

// EconLimits is the WECON economic abandonment configuration.
type EconLimits struct {
	MinOilRate   float64
	MinGasRate   float64
	MaxWaterCut  float64
	MaxGOR       float64
	MaxWGR       float64
	Workover     string
	EndRun       bool
	FollowonWell string
}

// NewEconLimits builds limits from one WECON record.
func NewEconLimits(record *Record, units UnitSystem) *EconLimits {
	liquidScale := units.Parse("LiquidRate").SIScaling()
	gasScale := units.Parse("GasRate").SIScaling()
	limits := &EconLimits{
		MinOilRate:  record.Item("MIN_OIL_PRODUCTION").GetDouble(0) * liquidScale,
		MinGasRate:  record.Item("MIN_GAS_PRODUCTION").GetDouble(0) * gasScale,
		MaxWaterCut: record.Item("MAX_WATER_CUT").GetDouble(0),
		MaxGOR:      record.Item("MAX_GAS_OIL_RATIO").GetDouble(0),
		MaxWGR:      record.Item("MAX_WATER_GAS_RATIO").GetDouble(0),
		Workover:    record.Item("WORKOVER_RATIO_LIMIT").GetTrimmedString(0),
		EndRun:      ToBool(record.Item("END_RUN_FLAG").GetTrimmedString(0)),
	}
	if fw := record.Item("FOLLOW_ON_WELL"); fw.HasValue(0) {
		limits.FollowonWell = fw.GetTrimmedString(0)
	}
	return limits
}

func (e *EconLimits) SerializeOp(s *serial.Serializer) {
	s.Float64(&e.MinOilRate)
	s.Float64(&e.MinGasRate)
	s.Float64(&e.MaxWaterCut)
	s.Float64(&e.MaxGOR)
	s.Float64(&e.MaxWGR)
	s.String(&e.Workover)
	s.Bool(&e.EndRun)
	s.String(&e.FollowonWell)
}

// TracerProperties maps tracer name to injection concentration.
type TracerProperties struct {
	Concentrations map[string]float64
}

// NewTracerProperties returns an empty tracer set.
func NewTracerProperties() *TracerProperties {
	return &TracerProperties{Concentrations: make(map[string]float64)}
}

// Clone returns an independent copy for staged mutation.
func (t *TracerProperties) Clone() *TracerProperties {
	next := NewTracerProperties()
	for name, c := range t.Concentrations {
		next.Concentrations[name] = c
	}
	return next
}

// SetConcentration binds one tracer concentration.
func (t *TracerProperties) SetConcentration(name string, concentration float64) {
	t.Concentrations[name] = concentration
}

// Equal compares tracer sets by value.
func (t *TracerProperties) Equal(other *TracerProperties) bool {
	if len(t.Concentrations) != len(other.Concentrations) {
		return false
	}
	for name, c := range t.Concentrations {
		if oc, ok := other.Concentrations[name]; !ok || oc != c {
			return false
		}
	}
	return true
}

func (t *TracerProperties) SerializeOp(s *serial.Serializer) {
	if t.Concentrations == nil {
		t.Concentrations = make(map[string]float64)
	}
	serial.Map(s, &t.Concentrations, serial.Str, serial.F64)
}
