package sched

// groupHandlers is the group-control keyword registry.
func groupHandlers() map[string]KeywordHandler {
	return map[string]KeywordHandler{
		"GCONPROD": handleGCONPROD,
		"GCONINJE": handleGCONINJE,
		"GRUPTREE": handleGRUPTREE,
		"GEFAC":    handleGEFAC,
		"GECON":    handleGECON,
		"GUIDERAT": handleGUIDERAT,
	}
}

func handleGCONPROD(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	liquidScale := hc.units.Parse("LiquidRate").SIScaling()
	gasScale := hc.units.Parse("GasRate").SIScaling()
	resvScale := hc.units.Parse("ReservoirVolume").SIScaling()

	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		groups, err := hc.GroupNames(record.Item("GROUP").GetTrimmedString(0))
		if err != nil {
			return err
		}
		cmode, err := GroupProdCModeFromString(record.Item("CONTROL_MODE").GetTrimmedString(0), hc.Location())
		if err != nil {
			return err
		}

		for _, name := range groups {
			group := st.MutableGroup(name)
			props := *group.Production
			props.CMode = cmode

			udaTarget(record.Item("OIL_TARGET"), liquidScale, &props.OilTarget)
			udaTarget(record.Item("WATER_TARGET"), liquidScale, &props.WaterTarget)
			udaTarget(record.Item("GAS_TARGET"), gasScale, &props.GasTarget)
			udaTarget(record.Item("LIQUID_TARGET"), liquidScale, &props.LiquidTarget)
			udaTarget(record.Item("RESERVOIR_FLUID_TARGET"), resvScale, &props.ResVTarget)

			if it := record.Item("EXCEED_PROC"); it.HasValue(0) {
				props.ExceedAction = it.GetTrimmedString(0)
			}
			if it := record.Item("RESPOND_TO_PARENT"); it.HasValue(0) {
				props.AvailableForHigher = ToBool(it.GetTrimmedString(0))
			}
			if it := record.Item("GUIDE_RATE"); it.HasValue(0) {
				props.GuideRate = it.GetDouble(0)
			}
			if it := record.Item("GUIDE_RATE_DEF"); it.HasValue(0) {
				props.GuideRateDef = it.GetTrimmedString(0)
			}

			if group.UpdateProduction(&props) {
				st.UpdateGroup(name, group)
				wellEvent(st, name, EventGroupProductionUpdate)
			}
		}
	}
	return nil
}

// udaTarget wires one group target item: an explicit value converts to SI,
// a defaulted item keeps the previous target.
func udaTarget(item *Item, scale float64, dst *UDAValue) {
	if item.DefaultApplied(0) {
		return
	}
	*dst = item.GetUDA(0).SI(scale)
}

func handleGCONINJE(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	resvScale := hc.units.Parse("ReservoirVolume").SIScaling()

	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		groups, err := hc.GroupNames(record.Item("GROUP").GetTrimmedString(0))
		if err != nil {
			return err
		}
		phase, err := PhaseFromString(record.Item("PHASE").GetTrimmedString(0), hc.Location())
		if err != nil {
			return err
		}
		cmode, err := GroupInjCModeFromString(record.Item("CONTROL_MODE").GetTrimmedString(0), hc.Location())
		if err != nil {
			return err
		}
		surfaceScale := hc.units.Parse("LiquidRate").SIScaling()
		if phase == PhaseGas {
			surfaceScale = hc.units.Parse("GasRate").SIScaling()
		}

		for _, name := range groups {
			group := st.MutableGroup(name)
			props := group.Injection[phase]
			props.Phase = phase
			props.CMode = cmode

			udaTarget(record.Item("SURFACE_TARGET"), surfaceScale, &props.SurfaceTarget)
			udaTarget(record.Item("RESV_TARGET"), resvScale, &props.ReservoirTarget)
			udaTarget(record.Item("REINJ_TARGET"), 1.0, &props.ReinjTarget)
			udaTarget(record.Item("VOIDAGE_TARGET"), 1.0, &props.VoidageTarget)

			if it := record.Item("RESPOND_TO_PARENT"); it.HasValue(0) {
				props.AvailableForHigher = ToBool(it.GetTrimmedString(0))
			}
			if it := record.Item("GUIDE_FRACTION"); it.HasValue(0) {
				props.GuideRate = it.GetDouble(0)
			}
			if it := record.Item("GUIDE_DEF"); it.HasValue(0) {
				props.GuideRateDef = it.GetTrimmedString(0)
			}

			if group.UpdateInjection(props) {
				st.UpdateGroup(name, group)
				wellEvent(st, name, EventGroupInjectionUpdate)
			}
		}
	}
	return nil
}

func handleGRUPTREE(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		child := record.Item("CHILD_GROUP").GetTrimmedString(0)
		parent := record.Item("PARENT_GROUP").GetTrimmedString(0)
		if child == "" {
			return NewInputError(hc.Location(), "GRUPTREE requires a child group name")
		}
		if parent == "" {
			parent = FieldGroup
		}
		if child == FieldGroup {
			return NewInputError(hc.Location(), "The FIELD group cannot be a child group")
		}

		node := st.EnsureGroup(child)
		parentGroup := st.EnsureGroup(parent)

		if node.UpdateParent(parent) {
			// detach from the old parent when reparenting
			for _, other := range st.Groups().Names() {
				if other == parent || other == child {
					continue
				}
				g := st.Group(other)
				if g.HasGroup(child) {
					mg := st.MutableGroup(other)
					mg.DelGroup(child)
					st.UpdateGroup(other, mg)
					wellEvent(st, other, EventGroupChange)
				}
			}
			st.UpdateGroup(child, node)
			wellEvent(st, child, EventGroupChange)
		}
		if added, err := parentGroup.AddGroup(child); err != nil {
			return err
		} else if added {
			st.UpdateGroup(parent, parentGroup)
			wellEvent(st, parent, EventGroupChange)
		}
	}
	return nil
}

func handleGEFAC(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		groups, err := hc.GroupNames(record.Item("GROUP").GetTrimmedString(0))
		if err != nil {
			return err
		}
		factorItem := record.Item("EFFICIENCY_FACTOR")
		if factorItem.DefaultApplied(0) {
			continue
		}
		factor := factorItem.GetDouble(0)
		if factor <= 0 || factor > 1.0 {
			return NewInputError(hc.Location(), "GEFAC efficiency factor must be in (0, 1], got %g", factor)
		}
		for _, name := range groups {
			group := st.MutableGroup(name)
			if group.UpdateEfficiencyFactor(factor) {
				st.UpdateGroup(name, group)
				wellEvent(st, name, EventWellGroupEfficiencyUpdate)
			}
		}
	}
	return nil
}

func handleGECON(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	for r := range hc.keyword.Records {
		record := &hc.keyword.Records[r]
		if _, err := hc.GroupNames(record.Item("GROUP").GetTrimmedString(0)); err != nil {
			return err
		}
	}
	hc.Warn("GECON accepted; group economic limits are resolved by the simulator")
	return nil
}

func handleGUIDERAT(hc *HandlerContext) error {
	if err := requireRecords(hc, 1); err != nil {
		return err
	}
	st := hc.State()
	model, err := GuideRateModelFromRecord(&hc.keyword.Records[0], st.GuideRate, hc.Location())
	if err != nil {
		return err
	}
	if model != st.GuideRate {
		st.GuideRate = model
		st.Events.AddEvent(EventGroupChange)
	}
	return nil
}
