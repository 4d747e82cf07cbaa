package sched

import (
	"time"

	"github.com/deck-sim/deck-sim/sched/serial"
)

// WHistCtlMode is the history-matching control mode set by WHISTCTL. It
// overrides the control item of subsequent WCONHIST keywords.
type WHistCtlMode int

const (
	WHistCtlNone WHistCtlMode = iota
	WHistCtlORAT
	WHistCtlWRAT
	WHistCtlGRAT
	WHistCtlLRAT
	WHistCtlRESV
	WHistCtlBHP
)

func WHistCtlModeFromString(s string, location Location) (WHistCtlMode, error) {
	switch s {
	case "NONE", "":
		return WHistCtlNone, nil
	case "ORAT":
		return WHistCtlORAT, nil
	case "WRAT":
		return WHistCtlWRAT, nil
	case "GRAT":
		return WHistCtlGRAT, nil
	case "LRAT":
		return WHistCtlLRAT, nil
	case "RESV":
		return WHistCtlRESV, nil
	case "BHP":
		return WHistCtlBHP, nil
	}
	return WHistCtlNone, NewInputError(location, "Unknown WHISTCTL control mode: %s", s)
}

// ScheduleState is the complete dynamic input state at one report step.
// Forking a state shares well and group objects with its parent until a
// keyword writes to them, so a long schedule with sparse changes stays
// cheap.
type ScheduleState struct {
	StartTime  time.Time
	ReportStep int

	wells  *EntityStore[Well]
	groups *EntityStore[Group]

	vfpProd *TableStore[VFPProdTable]
	vfpInj  *TableStore[VFPInjTable]

	network    *Network
	netBalance NetworkBalance

	udq       *UDQConfig
	udqActive *UDQActive

	wlists  *WListManager
	actions *ActionConfig

	Tuning   Tuning
	Messages MessageLimits
	NupCol   int
	SumThin  float64
	RptOnly  bool
	WHistCtl WHistCtlMode

	// WellPAvg is the field-wide block-average pressure setup from the
	// most recent WPAVE; wells created afterwards start from it.
	WellPAvg PAvg

	// GuideRate holds the GUIDERAT production guide rate model.
	GuideRate GuideRateModel

	// GeoKeywords accumulates geology modifiers (MULTZ, MULTFLT, ...)
	// seen in this step for replay by the simulator.
	GeoKeywords []Keyword

	Events          Events
	WellGroupEvents *WellGroupEvents
}

// NewScheduleState builds the initial state at the simulation start time,
// containing only the FIELD group.
func NewScheduleState(start time.Time) *ScheduleState {
	st := &ScheduleState{
		StartTime:       start,
		wells:           NewEntityStore[Well](),
		groups:          NewEntityStore[Group](),
		vfpProd:         NewTableStore[VFPProdTable](),
		vfpInj:          NewTableStore[VFPInjTable](),
		network:         NewNetwork(),
		netBalance:      DefaultNetworkBalance(),
		udq:             NewUDQConfig(),
		udqActive:       NewUDQActive(),
		wlists:          NewWListManager(),
		actions:         NewActionConfig(),
		Tuning:          DefaultTuning(),
		Messages:        DefaultMessageLimits(),
		NupCol:          12,
		WellPAvg:        DefaultPAvg(),
		GuideRate:       DefaultGuideRateModel(),
		WellGroupEvents: NewWellGroupEvents(),
	}
	field := NewGroup(FieldGroup, 0)
	st.groups.Update(FieldGroup, field)
	return st
}

// Fork builds the state for the next report step. Entity stores share
// their objects with the parent; per-step data (events, geo keywords,
// one-shot tuning) is reset.
func (st *ScheduleState) Fork(start time.Time, reportStep int) *ScheduleState {
	n := &ScheduleState{
		StartTime:  start,
		ReportStep: reportStep,

		wells:  st.wells.Fork(),
		groups: st.groups.Fork(),

		vfpProd: st.vfpProd.Fork(),
		vfpInj:  st.vfpInj.Fork(),

		network:    st.network.Clone(),
		netBalance: st.netBalance,

		udq:       st.udq.Clone(),
		udqActive: st.udqActive.Clone(),

		wlists:  st.wlists.Clone(),
		actions: st.actions.Clone(),

		Tuning:   st.Tuning,
		Messages: st.Messages,
		NupCol:   st.NupCol,
		SumThin:  st.SumThin,
		RptOnly:  st.RptOnly,
		WHistCtl: st.WHistCtl,

		WellPAvg:  st.WellPAvg,
		GuideRate: st.GuideRate,

		WellGroupEvents: NewWellGroupEvents(),
	}
	n.Tuning.AdvanceStep()
	return n
}

func (st *ScheduleState) Wells() *EntityStore[Well] { return st.wells }
func (st *ScheduleState) Groups() *EntityStore[Group] { return st.groups }

func (st *ScheduleState) Well(name string) *Well { return st.wells.Get(name) }
func (st *ScheduleState) Group(name string) *Group { return st.groups.Get(name) }

func (st *ScheduleState) VFPProd() *TableStore[VFPProdTable] { return st.vfpProd }
func (st *ScheduleState) VFPInj() *TableStore[VFPInjTable] { return st.vfpInj }

func (st *ScheduleState) Network() *Network { return st.network }
func (st *ScheduleState) NetBalance() NetworkBalance {
	return st.netBalance
}
func (st *ScheduleState) SetNetBalance(b NetworkBalance) { st.netBalance = b }

func (st *ScheduleState) UDQ() *UDQConfig { return st.udq }
func (st *ScheduleState) UDQActive() *UDQActive { return st.udqActive }
func (st *ScheduleState) WLists() *WListManager { return st.wlists }
func (st *ScheduleState) Actions() *ActionConfig { return st.actions }

// UpdateWell installs a fresh well object for name, registering it in
// its group on first sight.
func (st *ScheduleState) UpdateWell(name string, w *Well) {
	st.wells.Update(name, w)
}

// UpdateGroup installs a fresh group object for name.
func (st *ScheduleState) UpdateGroup(name string, g *Group) {
	st.groups.Update(name, g)
}

// MutableWell returns a private copy of the named well for staged
// revision. The copy is not bound: callers rebind with UpdateWell only
// when something actually changed, so a keyword that visits a well
// without modifying it keeps the binding shared with the parent step.
// Returns nil when the well does not exist.
func (st *ScheduleState) MutableWell(name string) *Well {
	w := st.wells.Get(name)
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}

// MutableGroup is the group counterpart of MutableWell.
func (st *ScheduleState) MutableGroup(name string) *Group {
	g := st.groups.Get(name)
	if g == nil {
		return nil
	}
	cp := *g
	return &cp
}

// EnsureGroup returns the named group, creating it under FIELD when it
// does not exist yet.
func (st *ScheduleState) EnsureGroup(name string) *Group {
	if g := st.MutableGroup(name); g != nil {
		return g
	}
	g := NewGroup(name, st.groups.Len())
	g.Parent = FieldGroup
	st.groups.Update(name, g)
	if field := st.MutableGroup(FieldGroup); field != nil {
		if added, _ := field.AddGroup(name); added {
			st.UpdateGroup(FieldGroup, field)
		}
	}
	st.Events.AddEvent(EventNewGroup)
	st.WellGroupEvents.AddEvent(name, EventNewGroup)
	return g
}

func (st *ScheduleState) SerializeOp(s *serial.Serializer) {
	if st.wells == nil {
		st.wells = NewEntityStore[Well]()
	}
	if st.groups == nil {
		st.groups = NewEntityStore[Group]()
	}
	if st.vfpProd == nil {
		st.vfpProd = NewTableStore[VFPProdTable]()
	}
	if st.vfpInj == nil {
		st.vfpInj = NewTableStore[VFPInjTable]()
	}
	if st.WellGroupEvents == nil {
		st.WellGroupEvents = NewWellGroupEvents()
	}

	unix := st.StartTime.UnixMilli()
	s.Int64(&unix)
	if s.Unpacking() {
		st.StartTime = time.UnixMilli(unix).UTC()
	}
	s.Int(&st.ReportStep)

	serializeStore(s, st.wells, serial.Obj[Well])
	serializeStore(s, st.groups, serial.Obj[Group])
	serializeTables(s, st.vfpProd, serial.Obj[VFPProdTable])
	serializeTables(s, st.vfpInj, serial.Obj[VFPInjTable])

	serial.Owned(s, &st.network, serial.Obj[Network])
	if s.Unpacking() && st.network == nil {
		st.network = NewNetwork()
	}
	st.netBalance.SerializeOp(s)

	serial.Owned(s, &st.udq, serial.Obj[UDQConfig])
	if s.Unpacking() && st.udq == nil {
		st.udq = NewUDQConfig()
	}
	serial.Owned(s, &st.udqActive, serial.Obj[UDQActive])
	if s.Unpacking() && st.udqActive == nil {
		st.udqActive = NewUDQActive()
	}
	serial.Owned(s, &st.wlists, serial.Obj[WListManager])
	if s.Unpacking() && st.wlists == nil {
		st.wlists = NewWListManager()
	}
	serial.Owned(s, &st.actions, serial.Obj[ActionConfig])
	if s.Unpacking() && st.actions == nil {
		st.actions = NewActionConfig()
	}

	st.Tuning.SerializeOp(s)
	st.Messages.SerializeOp(s)
	s.Int(&st.NupCol)
	s.Float64(&st.SumThin)
	s.Bool(&st.RptOnly)
	whc := int(st.WHistCtl)
	s.Int(&whc)
	st.WHistCtl = WHistCtlMode(whc)

	st.WellPAvg.SerializeOp(s)
	st.GuideRate.SerializeOp(s)

	serial.Slice(s, &st.GeoKeywords, serial.Obj[Keyword])

	st.Events.SerializeOp(s)
	st.WellGroupEvents.SerializeOp(s)
}
