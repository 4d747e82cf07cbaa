package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// FieldGroup is the root of the group tree; it always exists.
const FieldGroup = "FIELD"

// GroupProdCMode is an active group production control.
type GroupProdCMode int

const (
	GroupProdNone GroupProdCMode = iota
	GroupProdORAT
	GroupProdWRAT
	GroupProdGRAT
	GroupProdLRAT
	GroupProdRESV
	GroupProdFLD
)

// GroupProdCModeFromString parses a GCONPROD control item.
func GroupProdCModeFromString(s string, location Location) (GroupProdCMode, error) {
	switch s {
	case "NONE":
		return GroupProdNone, nil
	case "ORAT":
		return GroupProdORAT, nil
	case "WRAT":
		return GroupProdWRAT, nil
	case "GRAT":
		return GroupProdGRAT, nil
	case "LRAT":
		return GroupProdLRAT, nil
	case "RESV":
		return GroupProdRESV, nil
	case "FLD":
		return GroupProdFLD, nil
	}
	return GroupProdNone, NewInputError(location, "Unknown group production control: %s", s)
}

// GroupInjCMode is an active group injection control.
type GroupInjCMode int

const (
	GroupInjNone GroupInjCMode = iota
	GroupInjRATE
	GroupInjRESV
	GroupInjREIN
	GroupInjVREP
	GroupInjFLD
)

// GroupInjCModeFromString parses a GCONINJE control item.
func GroupInjCModeFromString(s string, location Location) (GroupInjCMode, error) {
	switch s {
	case "NONE":
		return GroupInjNone, nil
	case "RATE":
		return GroupInjRATE, nil
	case "RESV":
		return GroupInjRESV, nil
	case "REIN":
		return GroupInjREIN, nil
	case "VREP":
		return GroupInjVREP, nil
	case "FLD":
		return GroupInjFLD, nil
	}
	return GroupInjNone, NewInputError(location, "Unknown group injection control: %s", s)
}

// GroupProduction is the GCONPROD-controlled state of a group. Comparable.
type GroupProduction struct {
	CMode              GroupProdCMode
	OilTarget          UDAValue
	WaterTarget        UDAValue
	GasTarget          UDAValue
	LiquidTarget       UDAValue
	ResVTarget         UDAValue
	GuideRate          float64
	GuideRateDef       string
	ExceedAction       string
	AvailableForHigher bool
}

// GroupInjection is the GCONINJE-controlled state of a group for one
// phase. Comparable.
type GroupInjection struct {
	Phase              Phase
	CMode              GroupInjCMode
	SurfaceTarget      UDAValue
	ReservoirTarget    UDAValue
	ReinjTarget        UDAValue
	VoidageTarget      UDAValue
	GuideRate          float64
	GuideRateDef       string
	AvailableForHigher bool
}

// Group is the immutable value object for one group at one report step.
// Like Well, handlers copy, revise and rebind.
type Group struct {
	Name        string
	Parent      string
	InsertIndex int

	wells  []string
	groups []string

	EfficiencyFactor float64
	TransferDensity  float64

	Production *GroupProduction
	// Injection properties are per injected phase.
	Injection map[Phase]GroupInjection
}

// NewGroup builds the default group GRUPTREE/WELSPECS creates.
func NewGroup(name string, insertIndex int) *Group {
	return &Group{
		Name:             name,
		Parent:           FieldGroup,
		InsertIndex:      insertIndex,
		EfficiencyFactor: 1.0,
		Production:       &GroupProduction{},
		Injection:        make(map[Phase]GroupInjection),
	}
}

// Wells returns the member wells in attach order.
func (g *Group) Wells() []string { return g.wells }

// Groups returns the child groups in attach order.
func (g *Group) Groups() []string { return g.groups }

// NumWells returns the number of member wells.
func (g *Group) NumWells() int { return len(g.wells) }

// HasWell reports whether name is a member well.
func (g *Group) HasWell(name string) bool {
	for _, w := range g.wells {
		if w == name {
			return true
		}
	}
	return false
}

// AddWell attaches a well, reporting whether membership changed. A group
// holds either wells or child groups, never both.
func (g *Group) AddWell(name string) (bool, error) {
	if len(g.groups) != 0 {
		return false, errInternal("group %s already contains groups, cannot add well %s", g.Name, name)
	}
	if g.HasWell(name) {
		return false, nil
	}
	g.wells = append(append([]string{}, g.wells...), name)
	return true, nil
}

// DelWell detaches a well, reporting whether membership changed.
func (g *Group) DelWell(name string) bool {
	for i, w := range g.wells {
		if w == name {
			next := append([]string{}, g.wells[:i]...)
			g.wells = append(next, g.wells[i+1:]...)
			return true
		}
	}
	return false
}

// HasGroup reports whether name is a child group.
func (g *Group) HasGroup(name string) bool {
	for _, c := range g.groups {
		if c == name {
			return true
		}
	}
	return false
}

// AddGroup attaches a child group.
func (g *Group) AddGroup(name string) (bool, error) {
	if len(g.wells) != 0 {
		return false, errInternal("group %s already contains wells, cannot add group %s", g.Name, name)
	}
	if g.HasGroup(name) {
		return false, nil
	}
	g.groups = append(append([]string{}, g.groups...), name)
	return true, nil
}

// DelGroup detaches a child group.
func (g *Group) DelGroup(name string) bool {
	for i, c := range g.groups {
		if c == name {
			next := append([]string{}, g.groups[:i]...)
			g.groups = append(next, g.groups[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateParent reparents the group, reporting whether anything changed.
func (g *Group) UpdateParent(parent string) bool {
	if g.Parent == parent {
		return false
	}
	g.Parent = parent
	return true
}

// UpdateEfficiencyFactor revises the GEFAC efficiency factor.
func (g *Group) UpdateEfficiencyFactor(factor float64) bool {
	if g.EfficiencyFactor == factor {
		return false
	}
	g.EfficiencyFactor = factor
	return true
}

// UpdateProduction installs revised production controls.
func (g *Group) UpdateProduction(p *GroupProduction) bool {
	changed := *g.Production != *p
	g.Production = p
	return changed
}

// UpdateInjection installs revised injection controls for one phase.
func (g *Group) UpdateInjection(p GroupInjection) bool {
	prev, ok := g.Injection[p.Phase]
	if ok && prev == p {
		return false
	}
	next := make(map[Phase]GroupInjection, len(g.Injection)+1)
	for ph, inj := range g.Injection {
		next[ph] = inj
	}
	next[p.Phase] = p
	g.Injection = next
	return true
}

func (gp *GroupProduction) SerializeOp(s *serial.Serializer) {
	cmode := int(gp.CMode)
	s.Int(&cmode)
	gp.CMode = GroupProdCMode(cmode)
	gp.OilTarget.SerializeOp(s)
	gp.WaterTarget.SerializeOp(s)
	gp.GasTarget.SerializeOp(s)
	gp.LiquidTarget.SerializeOp(s)
	gp.ResVTarget.SerializeOp(s)
	s.Float64(&gp.GuideRate)
	s.String(&gp.GuideRateDef)
	s.String(&gp.ExceedAction)
	s.Bool(&gp.AvailableForHigher)
}

func (gi *GroupInjection) SerializeOp(s *serial.Serializer) {
	phase := int(gi.Phase)
	s.Int(&phase)
	gi.Phase = Phase(phase)
	cmode := int(gi.CMode)
	s.Int(&cmode)
	gi.CMode = GroupInjCMode(cmode)
	gi.SurfaceTarget.SerializeOp(s)
	gi.ReservoirTarget.SerializeOp(s)
	gi.ReinjTarget.SerializeOp(s)
	gi.VoidageTarget.SerializeOp(s)
	s.Float64(&gi.GuideRate)
	s.String(&gi.GuideRateDef)
	s.Bool(&gi.AvailableForHigher)
}

func (g *Group) SerializeOp(s *serial.Serializer) {
	s.String(&g.Name)
	s.String(&g.Parent)
	s.Int(&g.InsertIndex)
	serial.Slice(s, &g.wells, serial.Str)
	serial.Slice(s, &g.groups, serial.Str)
	s.Float64(&g.EfficiencyFactor)
	s.Float64(&g.TransferDensity)
	serial.Shared(s, &g.Production, serial.Obj[GroupProduction])
	if g.Injection == nil {
		g.Injection = make(map[Phase]GroupInjection)
	}
	serial.Map(s, &g.Injection,
		func(s *serial.Serializer, ph *Phase) {
			v := int(*ph)
			s.Int(&v)
			*ph = Phase(v)
		},
		serial.Obj[GroupInjection])
}
