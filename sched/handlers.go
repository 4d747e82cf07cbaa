package sched

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// wellEvent records kind both in the global step log and against the well.
func wellEvent(st *ScheduleState, name string, kind EventKind) {
	st.Events.AddEvent(kind)
	st.WellGroupEvents.AddEvent(name, kind)
}

func statusItem(record *Record, location Location) (WellStatus, error) {
	it := record.Item("STATUS")
	if it.DefaultApplied(0) {
		return StatusOpen, nil
	}
	return WellStatusFromString(it.GetTrimmedString(0), location)
}

// genericHandlers is the well and miscellaneous keyword registry.
func genericHandlers() map[string]KeywordHandler {
	h := map[string]KeywordHandler{
		"WELSPECS": handleWELSPECS,
		"WCONPROD": handleWCONPROD,
		"WCONHIST": handleWCONHIST,
		"WCONINJE": handleWCONINJE,
		"WCONINJH": handleWCONINJH,
		"WELOPEN":  handleWELOPEN,
		"WELTARG":  handleWELTARG,
		"WEFAC":    handleWEFAC,
		"WECON":    handleWECON,
		"WPAVE":    handleWPAVE,
		"WWPAVE":   handleWWPAVE,
		"WPAVEDEP": handleWPAVEDEP,
		"WPIMULT":  handleWPIMULT,
		"WELPI":    handleWELPI,
		"WTEST":    handleWTEST,
		"WTRACER":  handleWTRACER,
		"WTEMP":    handleWTEMP,
		"WSOLVENT": handleWSOLVENT,
		"WGRUPCON": handleWGRUPCON,
		"WHISTCTL": handleWHISTCTL,
		"WLIST":    handleWLIST,
		"WINJMULT": handleConsumed,
		"WINJTEMP": handleWINJTEMP,
		"COMPDAT":  handleCOMPDAT,
		"COMPLUMP": handleCOMPLUMP,
		"COMPORD":  handleConsumed,
		"TUNING":   handleTUNING,
		"NEXTSTEP": handleNEXTSTEP,
		"NEXT":     handleNEXTSTEP,
		"NUPCOL":   handleNUPCOL,
		"MESSAGES": handleMESSAGES,
		"RPTONLY":  handleRPTONLY,
		"RPTONLYO": handleRPTONLYO,
		"RPTSCHED": handleConsumed,
		"RPTRST":   handleConsumed,
		"SUMTHIN":  handleSUMTHIN,
		"VFPPROD":  handleVFPPROD,
		"VFPINJ":   handleVFPINJ,
		"EXIT":     handleEXIT,
	}
	for _, geo := range []string{
		"BOX", "ENDBOX", "MULTFLT", "MULTPV",
		"MULTX", "MULTX-", "MULTY", "MULTY-", "MULTZ", "MULTZ-",
	} {
		h[geo] = handleGeoModifier
	}
	return h
}

func handleWELSPECS(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		name := record.Item("WELL").GetTrimmedString(0)
		if name == "" {
			return NewInputError(hc.Location(), "WELSPECS requires a well name")
		}
		if strings.ContainsRune(name, ' ') {
			if err := hc.parseCtx.HandleError(ParseWGNameSpace,
				"Well name "+name+" contains spaces", hc.Location(), hc.guard); err != nil {
				return err
			}
			name = strings.ReplaceAll(name, " ", "")
		}

		group := record.Item("GROUP").GetTrimmedString(0)
		if group == "" {
			group = FieldGroup
		}
		if group == FieldGroup {
			if err := hc.parseCtx.HandleError(ParseWellInFieldGrp,
				"Well "+name+" is attached directly to the FIELD group", hc.Location(), hc.guard); err != nil {
				return err
			}
		}

		headI := record.Item("HEAD_I").GetInt(0)
		headJ := record.Item("HEAD_J").GetInt(0)
		phase, err := PhaseFromString(record.Item("PHASE").GetTrimmedString(0), hc.Location())
		if err != nil {
			return err
		}

		well := st.MutableWell(name)
		created := well == nil
		if created {
			well = NewWell(name, group, headI, headJ, phase, st.Wells().Len())
			well.PAvg = st.WellPAvg
		} else {
			well.HeadI = headI
			well.HeadJ = headJ
			well.PreferredPhase = phase
		}

		if rd := record.Item("REF_DEPTH"); rd.HasValue(0) {
			well.RefDepth = rd.GetSIDouble(0, hc.units)
			well.HasRefDepth = true
		}
		if cf := record.Item("CROSSFLOW"); cf.HasValue(0) {
			well.AllowCrossFlow = ToBool(cf.GetTrimmedString(0))
		}
		if as := record.Item("AUTO_SHUTIN"); as.HasValue(0) {
			well.AutoShutIn = as.GetTrimmedString(0) == "SHUT"
		}

		if well.Group != group {
			if old := st.MutableGroup(well.Group); old != nil && old.DelWell(name) {
				st.UpdateGroup(well.Group, old)
				wellEvent(st, well.Group, EventGroupChange)
			}
			well.Group = group
		}
		parent := st.EnsureGroup(group)
		if added, err := parent.AddWell(name); err != nil {
			return err
		} else if added {
			st.UpdateGroup(group, parent)
			wellEvent(st, group, EventGroupChange)
		}

		if created || *st.Well(name) != *well {
			st.UpdateWell(name, well)
		}
		if created {
			wellEvent(st, name, EventNewWell)
			hc.RecordWellStructureChange()
		}
		wellEvent(st, name, EventWellWelSpecsUpdate)
		hc.AffectedWell(name)
	}
	return nil
}

// udqBindings keeps the UDQ-active registry in step with a control value:
// binding a UDA carrying a UDQ reference registers it, binding a scalar
// clears any stale registration.
func udqBindings(st *ScheduleState, well, keyword string, values map[string]UDAValue) {
	for control, value := range values {
		st.UDQActive().Update(value, well, keyword, control)
	}
}

func handleWCONPROD(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		status, err := statusItem(record, hc.Location())
		if err != nil {
			return err
		}

		for _, name := range wells {
			well := st.MutableWell(name)
			// a fresh well is a producer by default; the switch event fires
			// only when the well actually was on the other side before
			switched := well.IsInjector() && well.HasInjected()

			props := *well.Production
			if err := props.HandleWCONPROD(record, hc.units, hc.Location()); err != nil {
				return err
			}
			if props.VFPTable != 0 && !st.VFPProd().Has(props.VFPTable) {
				return NewInputError(hc.Location(), "VFP table: %d not defined", props.VFPTable)
			}
			changed := switched
			if switched {
				props.ResetDefaultBHPLimit()
				inj := *well.Injection
				inj.ResetBHPLimit()
				well.Injection = &inj
				wellEvent(st, name, EventWellSwitchedInjectorProducer)
			}

			if well.UpdateProduction(&props) {
				wellEvent(st, name, EventProductionUpdate)
				changed = true
			}
			changed = well.UpdatePrediction(true) || changed
			if well.UpdateStatus(status) {
				if status == StatusOpen {
					wellEvent(st, name, EventRequestOpenWell)
				}
				wellEvent(st, name, EventWellStatusChange)
				changed = true
			}
			changed = well.UpdateHasProduced() || changed

			udqBindings(st, name, "WCONPROD", map[string]UDAValue{
				"ORAT": props.OilRate, "WRAT": props.WaterRate, "GRAT": props.GasRate,
				"LRAT": props.LiquidRate, "RESV": props.ResVRate,
				"BHP": props.BHPLimit, "THP": props.THPLimit,
			})

			if changed {
				st.UpdateWell(name, well)
				hc.AffectedWell(name)
			}
		}
	}
	return nil
}

var whistctlProducerModes = map[WHistCtlMode]ProducerCMode{
	WHistCtlORAT: ProducerORAT,
	WHistCtlWRAT: ProducerWRAT,
	WHistCtlGRAT: ProducerGRAT,
	WHistCtlLRAT: ProducerLRAT,
	WHistCtlRESV: ProducerRESV,
	WHistCtlBHP:  ProducerBHP,
}

func handleWCONHIST(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		status, err := statusItem(record, hc.Location())
		if err != nil {
			return err
		}

		for _, name := range wells {
			well := st.MutableWell(name)
			switched := well.IsInjector() && well.HasInjected()

			props := *well.Production
			if err := props.HandleWCONHIST(record, hc.units, hc.Location()); err != nil {
				return err
			}
			if override, ok := whistctlProducerModes[st.WHistCtl]; ok {
				props.CMode = override
				props.AddControl(override)
			}
			if props.VFPTable != 0 && !st.VFPProd().Has(props.VFPTable) {
				return NewInputError(hc.Location(), "VFP table: %d not defined", props.VFPTable)
			}
			changed := switched
			if switched {
				props.ResetDefaultBHPLimit()
				wellEvent(st, name, EventWellSwitchedInjectorProducer)
			}

			if well.UpdateProduction(&props) {
				wellEvent(st, name, EventProductionUpdate)
				changed = true
			}
			changed = well.UpdatePrediction(false) || changed
			if well.UpdateStatus(status) {
				if status == StatusOpen {
					wellEvent(st, name, EventRequestOpenWell)
				}
				wellEvent(st, name, EventWellStatusChange)
				changed = true
			}
			changed = well.UpdateHasProduced() || changed

			if changed {
				st.UpdateWell(name, well)
				hc.AffectedWell(name)
			}
		}
	}
	return nil
}

func handleWCONINJE(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		status, err := statusItem(record, hc.Location())
		if err != nil {
			return err
		}

		for _, name := range wells {
			well := st.MutableWell(name)
			switched := well.IsProducer() && well.HasProduced()
			prevType := well.Injection.Type

			props := *well.Injection
			availableForGroup := record.Item("GROUP_CONTROL_AVAILABLE").DefaultApplied(0) ||
				ToBool(record.Item("GROUP_CONTROL_AVAILABLE").GetTrimmedString(0))
			if err := props.HandleWCONINJE(record, hc.units, availableForGroup, hc.Location()); err != nil {
				return err
			}
			changed := switched
			if switched {
				props.ResetBHPLimit()
				prod := *well.Production
				prod.ResetDefaultBHPLimit()
				well.Production = &prod
				wellEvent(st, name, EventWellSwitchedInjectorProducer)
			}

			if well.UpdateInjection(&props) {
				wellEvent(st, name, EventInjectionUpdate)
				changed = true
			}
			if !switched && prevType != props.Type {
				wellEvent(st, name, EventInjectionTypeChanged)
			}
			changed = well.UpdatePrediction(true) || changed
			if well.UpdateStatus(status) {
				if status == StatusOpen {
					wellEvent(st, name, EventRequestOpenWell)
				}
				wellEvent(st, name, EventWellStatusChange)
				changed = true
			}
			changed = well.UpdateHasInjected() || changed

			udqBindings(st, name, "WCONINJE", map[string]UDAValue{
				"RATE": props.SurfaceRate, "RESV": props.ReservoirRate,
				"BHP": props.BHPLimit, "THP": props.THPLimit,
			})

			if changed {
				st.UpdateWell(name, well)
				hc.AffectedWell(name)
			}
		}
	}
	return nil
}

func handleWCONINJH(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		status, err := statusItem(record, hc.Location())
		if err != nil {
			return err
		}

		for _, name := range wells {
			well := st.MutableWell(name)
			switched := well.IsProducer() && well.HasProduced()
			prevType := well.Injection.Type

			props := *well.Injection
			if err := props.HandleWCONINJH(record, hc.units, hc.Location()); err != nil {
				return err
			}
			changed := switched
			if switched {
				props.ResetBHPLimit()
				wellEvent(st, name, EventWellSwitchedInjectorProducer)
			}

			if well.UpdateInjection(&props) {
				wellEvent(st, name, EventInjectionUpdate)
				changed = true
			}
			if !switched && prevType != props.Type {
				wellEvent(st, name, EventInjectionTypeChanged)
			}
			changed = well.UpdatePrediction(false) || changed
			if well.UpdateStatus(status) {
				if status == StatusOpen {
					wellEvent(st, name, EventRequestOpenWell)
				}
				wellEvent(st, name, EventWellStatusChange)
				changed = true
			}
			changed = well.UpdateHasInjected() || changed

			if changed {
				st.UpdateWell(name, well)
				hc.AffectedWell(name)
			}
		}
	}
	return nil
}

func handleWELOPEN(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	structure := false
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		status, err := statusItem(record, hc.Location())
		if err != nil {
			return err
		}

		// no connection selectors: the record addresses the well itself
		if record.DefaultedFrom(2) {
			for _, name := range wells {
				if err := hc.UpdateWellStatus(name, status); err != nil {
					return err
				}
			}
			continue
		}

		connState := ConnOpen
		switch status {
		case StatusShut, StatusStop:
			connState = ConnShut
		case StatusAuto:
			connState = ConnAuto
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			conns := well.Connections.Clone()
			if conns.HandleWELOPEN(record, connState) {
				well.UpdateConnections(conns)
				st.UpdateWell(name, well)
				wellEvent(st, name, EventCompletionChange)
				hc.AffectedWell(name)
				structure = true
			}
		}
	}
	if structure {
		hc.RecordWellStructureChange()
	}
	return nil
}

func weltargScaling(cmode WELTARGCMode, units UnitSystem) float64 {
	switch cmode {
	case TargORAT, TargWRAT, TargLRAT:
		return units.Parse("LiquidRate").SIScaling()
	case TargGRAT:
		return units.Parse("GasRate").SIScaling()
	case TargRESV:
		return units.Parse("ReservoirVolume").SIScaling()
	}
	return 1.0
}

func handleWELTARG(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	pressureScale := hc.units.Parse("Pressure").SIScaling()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		cmode, err := WELTARGCModeFromString(record.Item("CMODE").GetTrimmedString(0), hc.Location())
		if err != nil {
			return err
		}
		value := record.Item("NEW_VALUE").GetUDA(0)
		if value.IsNumeric() {
			value = value.SI(weltargScaling(cmode, hc.units))
		}

		for _, name := range wells {
			well := st.MutableWell(name)
			if cmode == TargGUID {
				if well.UpdateWellGuideRate(value.Get()) {
					wellEvent(st, name, EventGroupChange)
					st.UpdateWell(name, well)
				}
				continue
			}
			changed := false
			if well.IsProducer() {
				props := *well.Production
				if err := props.HandleWELTARG(cmode, value, pressureScale); err != nil {
					return err
				}
				if cmode == TargVFP && props.VFPTable != 0 && !st.VFPProd().Has(props.VFPTable) {
					return NewInputError(hc.Location(), "VFP table: %d not defined", props.VFPTable)
				}
				if well.UpdateProduction(&props) {
					wellEvent(st, name, EventProductionUpdate)
					changed = true
				}
			} else {
				props := *well.Injection
				if err := props.HandleWELTARG(cmode, value, pressureScale); err != nil {
					return err
				}
				if well.UpdateInjection(&props) {
					wellEvent(st, name, EventInjectionUpdate)
					changed = true
				}
			}
			if changed {
				st.UpdateWell(name, well)
				hc.AffectedWell(name)
			}
		}
	}
	return nil
}

func handleWEFAC(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		// defaulted factor keeps the previous value
		factorItem := record.Item("EFFICIENCY_FACTOR")
		if factorItem.DefaultApplied(0) {
			continue
		}
		factor := factorItem.GetDouble(0)
		if factor <= 0 || factor > 1.0 {
			return NewInputError(hc.Location(), "WEFAC efficiency factor must be in (0, 1], got %g", factor)
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.UpdateEfficiencyFactor(factor) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventWellGroupEfficiencyUpdate)
				hc.AffectedWell(name)
			}
		}
	}
	return nil
}

func handleWECON(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		limits := NewEconLimits(record, hc.units)
		if limits.FollowonWell != "" && limits.EndRun {
			if err := hc.parseCtx.HandleError(ParseUnsupportedTerm,
				"WECON end-run together with a follow-on well is not supported", hc.Location(), hc.guard); err != nil {
				return err
			}
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			cp := *limits
			if well.UpdateEconLimits(&cp) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventProductionUpdate)
			}
		}
	}
	return nil
}

func handleWPAVE(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	pavg, err := PAvgFromRecord(&hc.keyword.Records[0], hc.Location())
	if err != nil {
		return err
	}
	if err := pavg.Validate(hc.Location()); err != nil {
		return err
	}
	st := hc.State()
	// Wells created by later WELSPECS inherit the keyword-level setup.
	st.WellPAvg = pavg
	for _, name := range st.Wells().Names() {
		well := st.MutableWell(name)
		if well.UpdatePAvg(pavg) {
			st.UpdateWell(name, well)
		}
	}
	return nil
}

func handleWWPAVE(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		pavg, err := PAvgFromRecord(record, hc.Location())
		if err != nil {
			return err
		}
		if err := pavg.Validate(hc.Location()); err != nil {
			return err
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.UpdatePAvg(pavg) {
				st.UpdateWell(name, well)
			}
		}
	}
	return nil
}

func handleWPAVEDEP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		depth := record.Item("REF_DEPTH").GetSIDouble(0, hc.units)
		if depth < 0 {
			return NewInputError(hc.Location(), "WPAVEDEP reference depth must be non-negative, got %g", depth)
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.WPaveRefDepth != depth {
				well.WPaveRefDepth = depth
				st.UpdateWell(name, well)
			}
		}
	}
	return nil
}

func handleWPIMULT(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	// Records with no connection selectors scale the whole well. Those
	// are deferred past the record loop with the last record winning per
	// well; connection-scoped records apply in place. Inside an action
	// the whole-well factors defer further, to the end of the batch.
	wholeWellFactors := make(map[string]float64)
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		factor := record.Item("WELLPI").GetDouble(0)
		if factor <= 0 {
			return NewInputError(hc.Location(), "WPIMULT factor must be positive, got %g", factor)
		}

		wholeWell := record.DefaultedFrom(2)
		for _, name := range wells {
			if wholeWell {
				if hc.actionMode {
					hc.AddGlobalWPIMULT(name, factor)
				} else {
					wholeWellFactors[name] = factor
				}
				continue
			}
			well := st.MutableWell(name)
			conns := well.Connections.Clone()
			if conns.ApplyWPIMULT(factor, record) && well.UpdateConnections(conns) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventCompletionChange)
				hc.AffectedWell(name)
			}
		}
	}
	for name, factor := range wholeWellFactors {
		well := st.MutableWell(name)
		conns := well.Connections.Clone()
		if conns.ApplyGlobalWPIMULT(factor) && well.UpdateConnections(conns) {
			st.UpdateWell(name, well)
			wellEvent(st, name, EventCompletionChange)
			hc.AffectedWell(name)
		}
	}
	return nil
}

func handleWELPI(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		pi := record.Item("STEADY_STATE_PRODUCTIVITY_OR_INJECTIVITY_INDEX_VALUE").GetDouble(0)
		if pi <= 0 {
			return NewInputError(hc.Location(), "WELPI productivity index must be positive, got %g", pi)
		}
		for _, name := range wells {
			well := st.Well(name)
			hc.SetTargetWellPI(name, well.ConvertDeckPI(pi, hc.units))
			wellEvent(st, name, EventWellProductivityIndex)
			hc.AffectedWell(name)
		}
	}
	return nil
}

func handleWTEST(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		if _, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0)); err != nil {
			return err
		}
	}
	hc.Warn("WTEST accepted; periodic testing is resolved by the simulator")
	return nil
}

func handleWTRACER(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		tracer := record.Item("TRACER").GetTrimmedString(0)
		if tracer == "" {
			return NewInputError(hc.Location(), "WTRACER requires a tracer name")
		}
		concentration := record.Item("CONCENTRATION").GetUDA(0).Get()
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.IsProducer() {
				return NewInputError(hc.Location(), "WTRACER applied to producing well %s", name)
			}
			tracers := well.Tracers.Clone()
			tracers.SetConcentration(tracer, concentration)
			if well.UpdateTracer(tracers) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventInjectionUpdate)
			}
		}
	}
	return nil
}

func handleWTEMP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		temp := record.Item("TEMP").GetSIDouble(0, hc.units)
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.Temperature != temp {
				well.Temperature = temp
				st.UpdateWell(name, well)
				wellEvent(st, name, EventInjectionUpdate)
			}
		}
	}
	return nil
}

func handleWINJTEMP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		temp := record.Item("TEMPERATURE").GetSIDouble(0, hc.units)
		for _, name := range wells {
			well := st.MutableWell(name)
			props := *well.Injection
			props.Temperature = temp
			if well.UpdateInjection(&props) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventInjectionUpdate)
			}
		}
	}
	return nil
}

func handleWSOLVENT(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		fraction := record.Item("SOLVENT_FRACTION").GetUDA(0).Get()
		if fraction < 0 || fraction > 1.0 {
			return NewInputError(hc.Location(), "WSOLVENT fraction must be in [0, 1], got %g", fraction)
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.IsProducer() || well.Injection.Type != InjectorGas {
				return NewInputError(hc.Location(), "WSOLVENT requires gas injector, well %s is not one", name)
			}
			if well.SolventFraction != fraction {
				well.SolventFraction = fraction
				st.UpdateWell(name, well)
				wellEvent(st, name, EventInjectionUpdate)
			}
		}
	}
	return nil
}

func handleWGRUPCON(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		guideRate := record.Item("GUIDE_RATE").GetDouble(0)
		for _, name := range wells {
			well := st.MutableWell(name)
			if well.UpdateWellGuideRate(guideRate) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventGroupChange)
			}
		}
	}
	return nil
}

func handleWHISTCTL(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	record := &hc.keyword.Records[0]
	mode, err := WHistCtlModeFromString(record.Item("CMODE").GetTrimmedString(0), hc.Location())
	if err != nil {
		return err
	}
	if end := record.Item("BHP_TERMINATE").GetTrimmedString(0); ToBool(end) {
		if err := hc.parseCtx.HandleError(ParseUnsupportedTerm,
			"WHISTCTL terminate-on-BHP is not supported and will be ignored", hc.Location(), hc.guard); err != nil {
			return err
		}
	}
	hc.State().WHistCtl = mode
	return nil
}

func handleWLIST(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		name := record.Item("NAME").GetTrimmedString(0)
		if !isListPattern(name) {
			return NewInputError(hc.Location(), "Well list name %s must start with '*'", name)
		}
		action := record.Item("ACTION").GetTrimmedString(0)

		var members []string
		wellsItem := record.Item("WELLS")
		for v := range wellsItem.Values {
			pattern := wellsItem.GetTrimmedString(v)
			if pattern == "" {
				continue
			}
			resolved, err := hc.WellNames(pattern)
			if err != nil {
				return err
			}
			members = append(members, resolved...)
		}

		lists := st.WLists()
		switch action {
		case "NEW":
			wl := lists.NewList(name)
			for _, w := range members {
				wl.Add(w)
			}
		case "ADD":
			wl := lists.GetOrCreate(name)
			for _, w := range members {
				wl.Add(w)
			}
		case "DEL":
			wl := lists.GetOrCreate(name)
			for _, w := range members {
				wl.Del(w)
			}
		case "MOV":
			for _, other := range lists.order {
				if other == name {
					continue
				}
				for _, w := range members {
					lists.lists[other].Del(w)
				}
			}
			wl := lists.GetOrCreate(name)
			for _, w := range members {
				wl.Add(w)
			}
		default:
			return NewInputError(hc.Location(), "Unknown WLIST action: %s", action)
		}
	}
	return nil
}

func handleCOMPDAT(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	grid := hc.grid
	structure := false
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			conns := well.Connections.Clone()
			changed, err := conns.LoadCOMPDAT(record, &grid, well.HeadI, well.HeadJ, hc.units, hc.Location())
			if err != nil {
				return err
			}
			if changed && well.UpdateConnections(conns) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventCompletionChange)
				hc.AffectedWell(name)
				structure = true
			}
		}
	}
	if structure {
		hc.RecordWellStructureChange()
	}
	return nil
}

func handleCOMPLUMP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		wells, err := hc.WellNames(record.Item("WELL").GetTrimmedString(0))
		if err != nil {
			return err
		}
		for _, name := range wells {
			well := st.MutableWell(name)
			conns := well.Connections.Clone()
			if conns.HandleCOMPLUMP(record) && well.UpdateConnections(conns) {
				st.UpdateWell(name, well)
				wellEvent(st, name, EventCompletionChange)
			}
		}
	}
	return nil
}

func handleTUNING(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	st.Tuning.HandleTUNING(&hc.keyword.Records[0], hc.units)
	st.Events.AddEvent(EventTuningChange)
	return nil
}

func handleNEXTSTEP(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	st.Tuning.HandleNEXTSTEP(&hc.keyword.Records[0], hc.units)
	st.Events.AddEvent(EventTuningChange)
	return nil
}

func handleNUPCOL(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	if it := hc.keyword.Records[0].Item("NUM_ITER"); it.HasValue(0) {
		hc.State().NupCol = it.GetInt(0)
	}
	return nil
}

func handleMESSAGES(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	hc.State().Messages.HandleMESSAGES(&hc.keyword.Records[0])
	return nil
}

func handleRPTONLY(hc *HandlerContext) error {
	hc.State().RptOnly = true
	return nil
}

func handleRPTONLYO(hc *HandlerContext) error {
	hc.State().RptOnly = false
	return nil
}

func handleSUMTHIN(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	hc.State().SumThin = hc.keyword.Records[0].Item("TIME").GetSIDouble(0, hc.units)
	return nil
}

func handleVFPPROD(hc *HandlerContext) error {
	table, err := NewVFPProdTable(hc.keyword, hc.units)
	if err != nil {
		return err
	}
	st := hc.State()
	st.VFPProd().Update(table.TableNum, table)
	st.Events.AddEvent(EventVFPChange)
	return nil
}

func handleVFPINJ(hc *HandlerContext) error {
	table, err := NewVFPInjTable(hc.keyword, hc.units)
	if err != nil {
		return err
	}
	st := hc.State()
	st.VFPInj().Update(table.TableNum, table)
	st.Events.AddEvent(EventVFPChange)
	return nil
}

func handleEXIT(hc *HandlerContext) error {
	if !hc.actionMode {
		// EXIT only carries meaning inside an ACTIONX body.
		logrus.WithField("location", hc.Location()).Debug("ignoring EXIT outside an action body")
		return nil
	}
	hc.Warn("EXIT requested by action; the simulator decides when to stop")
	return nil
}

// handleGeoModifier stores the keyword verbatim for replay by the
// simulator's grid update and flags the transmissibility change.
func handleGeoModifier(hc *HandlerContext) error {
	st := hc.State()
	st.GeoKeywords = append(st.GeoKeywords, *hc.keyword)
	st.Events.AddEvent(EventGeoModifier)
	hc.RecordTranUpdate()
	return nil
}

// handleConsumed accepts keywords whose payload the schedule engine does
// not track. They are valid input and must not trip the unsupported-
// keyword path.
func handleConsumed(hc *HandlerContext) error {
	return nil
}
