package sched

import (
	"time"

	"github.com/deck-sim/deck-sim/sched/action"
	"github.com/deck-sim/deck-sim/sched/serial"
)

// Action is one ACTIONX block: a named trigger condition plus the keyword
// body to replay through normal dispatch when the simulator reports the
// condition satisfied.
type Action struct {
	Name    string
	MaxRun  int
	MinWait float64 // seconds between runs
	Start   time.Time

	Condition *action.Condition
	Keywords  []Keyword

	runCount int
	lastRun  time.Time
}

// Ready reports whether the action may trigger at simTime: it has runs
// left and the minimum wait since the previous trigger has passed.
func (a *Action) Ready(simTime time.Time) bool {
	if a.MaxRun > 0 && a.runCount >= a.MaxRun {
		return false
	}
	if a.runCount > 0 && a.MinWait > 0 {
		next := a.lastRun.Add(time.Duration(a.MinWait * float64(time.Second)))
		if simTime.Before(next) {
			return false
		}
	}
	return true
}

// MarkRun records a trigger at simTime.
func (a *Action) MarkRun(simTime time.Time) {
	a.runCount++
	a.lastRun = simTime
}

func (a *Action) RunCount() int { return a.runCount }

func (a *Action) SerializeOp(s *serial.Serializer) {
	s.String(&a.Name)
	s.Int(&a.MaxRun)
	s.Float64(&a.MinWait)

	start := a.Start.UnixMilli()
	s.Int64(&start)
	last := a.lastRun.UnixMilli()
	s.Int64(&last)

	raw := ""
	if a.Condition != nil {
		raw = a.Condition.Raw
	}
	s.String(&raw)

	serial.Slice(s, &a.Keywords, serial.Obj[Keyword])
	s.Int(&a.runCount)

	if s.Unpacking() {
		a.Start = time.UnixMilli(start).UTC()
		a.lastRun = time.UnixMilli(last).UTC()
		if raw != "" {
			a.Condition, _ = action.Compile(raw)
		}
	}
}

// ActionConfig is the set of actions in effect at a report step, in
// definition order. Redefining a name replaces the action and resets its
// run count.
type ActionConfig struct {
	order   []string
	actions map[string]*Action
}

func NewActionConfig() *ActionConfig {
	return &ActionConfig{actions: make(map[string]*Action)}
}

// Clone is a deep copy; run counts travel with it so re-triggering limits
// survive step boundaries.
func (c *ActionConfig) Clone() *ActionConfig {
	n := NewActionConfig()
	n.order = append([]string(nil), c.order...)
	for name, a := range c.actions {
		cp := *a
		cp.Keywords = append([]Keyword(nil), a.Keywords...)
		n.actions[name] = &cp
	}
	return n
}

// Add installs or replaces the named action.
func (c *ActionConfig) Add(a *Action) {
	if _, ok := c.actions[a.Name]; !ok {
		c.order = append(c.order, a.Name)
	}
	c.actions[a.Name] = a
}

// Get returns the named action, or nil.
func (c *ActionConfig) Get(name string) *Action {
	return c.actions[name]
}

func (c *ActionConfig) Len() int { return len(c.actions) }

// Names returns the action names in definition order. The slice is shared.
func (c *ActionConfig) Names() []string { return c.order }

// Pending returns the actions ready to trigger at simTime, in definition
// order.
func (c *ActionConfig) Pending(simTime time.Time) []*Action {
	var out []*Action
	for _, name := range c.order {
		if a := c.actions[name]; a.Ready(simTime) {
			out = append(out, a)
		}
	}
	return out
}

func (c *ActionConfig) SerializeOp(s *serial.Serializer) {
	serial.Slice(s, &c.order, serial.Str)
	if s.Unpacking() {
		c.actions = make(map[string]*Action, len(c.order))
		for _, name := range c.order {
			var a *Action
			serial.Shared(s, &a, serial.Obj[Action])
			c.actions[name] = a
		}
		return
	}
	for _, name := range c.order {
		a := c.actions[name]
		serial.Shared(s, &a, serial.Obj[Action])
	}
}
