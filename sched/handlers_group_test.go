package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCONPROD_SetsTargetsAndLogsEvent(t *testing.T) {
	// GIVEN a group with a member well
	s := newTestSchedule()
	gcon := kw("GCONPROD", rec(
		strItem("GROUP", sv("G1")),
		strItem("CONTROL_MODE", sv("ORAT")),
		udaItem("OIL_TARGET", "LiquidRate", dv(86400)),
		udaItem("WATER_TARGET", "LiquidRate", defaulted()),
	))
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		gcon,
	)

	// THEN the target is stored in SI and the event fires
	st := s.Back()
	group := st.Group("G1")
	require.NotNil(t, group)
	assert.Equal(t, GroupProdORAT, group.Production.CMode)
	assert.Equal(t, 1.0, group.Production.OilTarget.Get(), "86400 sm3/day is 1 sm3/s")
	assert.True(t, group.Production.WaterTarget.Zero(), "defaulted target stays unset")
	assert.True(t, st.WellGroupEvents.HasEvent("G1", EventGroupProductionUpdate))
}

func TestGCONPROD_DefaultedTargetKeepsPrevious(t *testing.T) {
	// GIVEN an oil target set at step 0
	s := newTestSchedule()
	set := kw("GCONPROD", rec(
		strItem("GROUP", sv("G1")),
		strItem("CONTROL_MODE", sv("ORAT")),
		udaItem("OIL_TARGET", "LiquidRate", dv(86400)),
	))
	revise := kw("GCONPROD", rec(
		strItem("GROUP", sv("G1")),
		strItem("CONTROL_MODE", sv("WRAT")),
		udaItem("OIL_TARGET", "LiquidRate", defaulted()),
	))
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		set,
		datesKW(1, "FEB", 2020),
		revise,
	)

	// THEN the new record changes the mode but keeps the old oil target
	group := s.Back().Group("G1")
	assert.Equal(t, GroupProdWRAT, group.Production.CMode)
	assert.Equal(t, 1.0, group.Production.OilTarget.Get())
}

func TestGCONINJE_PerPhaseProperties(t *testing.T) {
	// GIVEN water and gas injection targets for one group
	s := newTestSchedule()
	water := kw("GCONINJE", rec(
		strItem("GROUP", sv("G1")),
		strItem("PHASE", sv("WATER")),
		strItem("CONTROL_MODE", sv("RATE")),
		udaItem("SURFACE_TARGET", "LiquidRate", dv(86400)),
	))
	gas := kw("GCONINJE", rec(
		strItem("GROUP", sv("G1")),
		strItem("PHASE", sv("GAS")),
		strItem("CONTROL_MODE", sv("REIN")),
		udaItem("SURFACE_TARGET", "GasRate", defaulted()),
	))
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		water, gas,
	)

	// THEN each phase holds its own control independently
	group := s.Back().Group("G1")
	assert.Equal(t, GroupInjRATE, group.Injection[PhaseWater].CMode)
	assert.Equal(t, 1.0, group.Injection[PhaseWater].SurfaceTarget.Get())
	assert.Equal(t, GroupInjREIN, group.Injection[PhaseGas].CMode)
	assert.True(t, s.Back().WellGroupEvents.HasEvent("G1", EventGroupInjectionUpdate))
}

func TestGEFAC_RangeAndDefault(t *testing.T) {
	s := newTestSchedule()
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		kw("GEFAC", rec(
			strItem("GROUP", sv("G1")),
			dblItem("EFFICIENCY_FACTOR", "", dv(0.8)),
		)),
	)
	assert.Equal(t, 0.8, s.Back().Group("G1").EfficiencyFactor)

	// an out-of-range factor is rejected
	_, err := s.Process(&Deck{Keywords: []Keyword{
		kw("GEFAC", rec(
			strItem("GROUP", sv("G1")),
			dblItem("EFFICIENCY_FACTOR", "", dv(0)),
		)),
	}})
	_, ok := AsInputError(err)
	require.True(t, ok, "GEFAC 0 accepted, want InputError, got %v", err)

	// a defaulted factor keeps the previous value
	mustProcess(t, s, kw("GEFAC", rec(
		strItem("GROUP", sv("G1")),
		dblItem("EFFICIENCY_FACTOR", "", defaulted()),
	)))
	assert.Equal(t, 0.8, s.Back().Group("G1").EfficiencyFactor)
}

func branpropKW(downtree, uptree string, vfp int) Keyword {
	return kw("BRANPROP", rec(
		strItem("DOWNTREE_NODE", sv(downtree)),
		strItem("UPTREE_NODE", sv(uptree)),
		intItem("VFP_TABLE", iv(vfp)),
		dblItem("ALQ", "", dv(0)),
	))
}

func TestBRANPROP_BuildsAndDropsBranches(t *testing.T) {
	// GIVEN a branch with the fixed-pressure-drop table marker
	s := newTestSchedule()
	mustProcess(t, s, branpropKW("PLAT-A", "TERMINAL", 9999))

	st := s.Back()
	require.True(t, st.Network().Active())
	require.Len(t, st.Network().Branches(), 1)
	assert.True(t, st.Network().HasNode("PLAT-A"), "branch end nodes are created implicitly")
	assert.True(t, st.Network().HasNode("TERMINAL"))

	// WHEN the branch is dropped with a negative table
	mustProcess(t, s, branpropKW("PLAT-A", "TERMINAL", -1))

	// THEN the network is empty again
	assert.Empty(t, s.Back().Network().Branches())
}

func TestBRANPROP_UndefinedVFPTableRejected(t *testing.T) {
	s := newTestSchedule()
	_, err := s.Process(&Deck{Keywords: []Keyword{branpropKW("A", "B", 7)}})
	_, ok := AsInputError(err)
	require.True(t, ok, "undefined branch VFP table accepted, got %v", err)
}

func TestNODEPROP_TerminalPressureAndChokeGroup(t *testing.T) {
	// GIVEN a network node with a terminal pressure in bars
	s := newTestSchedule()
	nodeprop := kw("NODEPROP", rec(
		strItem("NAME", sv("G1")),
		dblItem("PRESSURE", "Pressure", dv(30)),
		strItem("AS_CHOKE", sv("YES")),
	))
	mustProcess(t, s,
		welspecsKW("W1", "G1", 1, 1, "OIL"),
		branpropKW("G1", "TERMINAL", 9999),
		nodeprop,
	)

	node, ok := s.Back().Network().Node("G1")
	require.True(t, ok)
	assert.True(t, node.HasTerminal)
	assert.Equal(t, 30.0e5, node.TerminalPressure, "30 bar in Pa")
	assert.True(t, node.AsChoke)
	assert.Equal(t, "G1", node.ChokeTargetGroup, "choke defaults to the group of the same name")
}

func TestNODEPROP_ChokeGroupMustExist(t *testing.T) {
	s := newTestSchedule()
	bad := kw("NODEPROP", rec(
		strItem("NAME", sv("NOGROUP")),
		dblItem("PRESSURE", "Pressure", dv(30)),
		strItem("AS_CHOKE", sv("YES")),
	))
	_, err := s.Process(&Deck{Keywords: []Keyword{bad}})
	_, ok := AsInputError(err)
	require.True(t, ok, "choke against undefined group accepted, got %v", err)
}

func TestGUIDERAT_StoresModelAndGatesEvent(t *testing.T) {
	// GIVEN a production guide rate model definition
	s := newTestSchedule()
	guiderat := func() Keyword {
		return kw("GUIDERAT", rec(
			dblItem("MIN_CALC_TIME", "", dv(120)),
			strItem("NOMINATED_PHASE", sv("OIL")),
			dblItem("A", "", dv(1.5)),
			dblItem("B", "", dv(0.5)),
			strItem("ALLOW_INCREASE", sv("NO")),
		))
	}
	mustProcess(t, s, guiderat())

	// THEN the model is stored on the state and the group event fires
	st := s.Back()
	assert.Equal(t, 120.0, st.GuideRate.MinCalcDelay)
	assert.Equal(t, "OIL", st.GuideRate.Phase)
	assert.Equal(t, 1.5, st.GuideRate.A)
	assert.Equal(t, 0.5, st.GuideRate.B)
	assert.False(t, st.GuideRate.AllowIncrease)
	assert.Equal(t, 1.0, st.GuideRate.DampingFactor, "defaulted damping keeps the documented default")
	assert.True(t, st.Events.HasEvent(EventGroupChange))

	// WHEN the identical model is re-issued in the next step
	mustProcess(t, s, datesKW(1, "FEB", 2020), guiderat())

	// THEN nothing changed and no event fires
	assert.Equal(t, s.StateAt(0).GuideRate, s.Back().GuideRate)
	assert.False(t, s.Back().Events.HasEvent(EventGroupChange))
}

func TestGUIDERAT_NegativeDelayRejected(t *testing.T) {
	s := newTestSchedule()
	bad := kw("GUIDERAT", rec(
		dblItem("MIN_CALC_TIME", "", dv(-1)),
	))
	_, err := s.Process(&Deck{Keywords: []Keyword{bad}})
	_, ok := AsInputError(err)
	require.True(t, ok, "negative recalculation delay accepted, got %v", err)
}

func TestBRANPROP_IdenticalReissue_NoEvent(t *testing.T) {
	// GIVEN a branch defined at step 0
	s := newTestSchedule()
	mustProcess(t, s,
		branpropKW("PLAT-A", "TERMINAL", 9999),
		datesKW(1, "FEB", 2020),
	)

	// WHEN the identical branch is re-issued in the next step
	mustProcess(t, s, branpropKW("PLAT-A", "TERMINAL", 9999))

	// THEN the network is unchanged and no group event fires
	assert.Len(t, s.Back().Network().Branches(), 1)
	assert.False(t, s.Back().Events.HasEvent(EventGroupChange))
}

func TestNODEPROP_IdenticalReissue_NoEvent(t *testing.T) {
	// GIVEN a node configured at step 0
	s := newTestSchedule()
	nodeprop := func() Keyword {
		return kw("NODEPROP", rec(
			strItem("NAME", sv("PLAT-A")),
			dblItem("PRESSURE", "Pressure", dv(30)),
		))
	}
	mustProcess(t, s,
		branpropKW("PLAT-A", "TERMINAL", 9999),
		nodeprop(),
		datesKW(1, "FEB", 2020),
	)

	// WHEN the identical node description is re-issued
	mustProcess(t, s, nodeprop())

	// THEN no group event fires for the unchanged node
	assert.False(t, s.Back().Events.HasEvent(EventGroupChange))
}

func TestNETBALAN_OverridesDefaults(t *testing.T) {
	s := newTestSchedule()
	mustProcess(t, s, kw("NETBALAN", rec(
		dblItem("INTERVAL", "Time", dv(1)),
		intItem("MAX_ITER", iv(25)),
	)))

	balance := s.Back().NetBalance()
	assert.Equal(t, 86400.0, balance.Interval, "one day in seconds")
	assert.Equal(t, 25, balance.MaxIter)
	assert.Equal(t, DefaultNetworkBalance().PressureTolerance, balance.PressureTolerance,
		"defaulted items keep the documented defaults")
}
