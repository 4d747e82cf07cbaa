package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// NetworkNode is one node of the extended surface network.
type NetworkNode struct {
	Name             string
	TerminalPressure float64
	HasTerminal      bool
	AsChoke          bool
	ChokeTargetGroup string
	AddGasLiftGas    bool
}

// NetworkBranch connects a downtree node to its uptree node through a VFP
// pressure-drop table.
type NetworkBranch struct {
	Downtree string
	Uptree   string
	VFPTable int
	ALQ      float64
}

// Network is the surface network at one report step. Handlers clone,
// revise and rebind the whole object; the state store shares it across
// steps while untouched.
type Network struct {
	nodes    map[string]NetworkNode
	branches []NetworkBranch
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{nodes: make(map[string]NetworkNode)}
}

// Clone returns an independent copy for staged mutation.
func (n *Network) Clone() *Network {
	next := &Network{
		nodes:    make(map[string]NetworkNode, len(n.nodes)),
		branches: make([]NetworkBranch, len(n.branches)),
	}
	for name, node := range n.nodes {
		next.nodes[name] = node
	}
	copy(next.branches, n.branches)
	return next
}

// Active reports whether any branch has been defined.
func (n *Network) Active() bool { return len(n.branches) > 0 }

// HasNode reports whether name is part of the network.
func (n *Network) HasNode(name string) bool {
	_, ok := n.nodes[name]
	return ok
}

// Node returns the named node.
func (n *Network) Node(name string) (NetworkNode, bool) {
	node, ok := n.nodes[name]
	return node, ok
}

// UpdateNode installs one node description.
func (n *Network) UpdateNode(node NetworkNode) {
	n.nodes[node.Name] = node
}

// AddBranch installs a branch, implicitly creating its end nodes, and
// replaces an existing branch between the same pair. Reports whether the
// network changed; re-adding an identical branch does not count.
func (n *Network) AddBranch(branch NetworkBranch) bool {
	changed := false
	for _, name := range []string{branch.Downtree, branch.Uptree} {
		if !n.HasNode(name) {
			n.nodes[name] = NetworkNode{Name: name}
			changed = true
		}
	}
	for i := range n.branches {
		if n.branches[i].Downtree == branch.Downtree && n.branches[i].Uptree == branch.Uptree {
			if n.branches[i] != branch {
				n.branches[i] = branch
				changed = true
			}
			return changed
		}
	}
	n.branches = append(n.branches, branch)
	return true
}

// DropBranch removes the branch between uptree and downtree, if defined.
func (n *Network) DropBranch(uptree, downtree string) bool {
	for i := range n.branches {
		if n.branches[i].Uptree == uptree && n.branches[i].Downtree == downtree {
			n.branches = append(n.branches[:i], n.branches[i+1:]...)
			return true
		}
	}
	return false
}

// Branches returns the branches in definition order.
func (n *Network) Branches() []NetworkBranch { return n.branches }

// Equal compares networks by value.
func (n *Network) Equal(other *Network) bool {
	if len(n.nodes) != len(other.nodes) || len(n.branches) != len(other.branches) {
		return false
	}
	for name, node := range n.nodes {
		if o, ok := other.nodes[name]; !ok || o != node {
			return false
		}
	}
	for i := range n.branches {
		if n.branches[i] != other.branches[i] {
			return false
		}
	}
	return true
}

func serializeNode(s *serial.Serializer, node *NetworkNode) {
	s.String(&node.Name)
	s.Float64(&node.TerminalPressure)
	s.Bool(&node.HasTerminal)
	s.Bool(&node.AsChoke)
	s.String(&node.ChokeTargetGroup)
	s.Bool(&node.AddGasLiftGas)
}

func (n *Network) SerializeOp(s *serial.Serializer) {
	if n.nodes == nil {
		n.nodes = make(map[string]NetworkNode)
	}
	serial.Map(s, &n.nodes, serial.Str, serializeNode)
	serial.Slice(s, &n.branches, func(s *serial.Serializer, b *NetworkBranch) {
		s.String(&b.Downtree)
		s.String(&b.Uptree)
		s.Int(&b.VFPTable)
		s.Float64(&b.ALQ)
	})
}

// NetworkBalance is the NETBALAN convergence configuration for the network
// solver.
type NetworkBalance struct {
	Interval          float64
	PressureTolerance float64
	MaxIter           int
	ThpTolerance      float64
	MaxThpIter        int
}

// DefaultNetworkBalance returns the documented NETBALAN defaults.
func DefaultNetworkBalance() NetworkBalance {
	return NetworkBalance{
		PressureTolerance: 1.0e-5,
		MaxIter:           10,
		ThpTolerance:      0.01,
		MaxThpIter:        10,
	}
}

// NetworkBalanceFromRecord builds the configuration from one NETBALAN
// record, keeping defaults for defaulted items.
func NetworkBalanceFromRecord(record *Record, units UnitSystem) NetworkBalance {
	balance := DefaultNetworkBalance()
	if item := record.Item("INTERVAL"); !item.DefaultApplied(0) {
		balance.Interval = item.GetSIDouble(0, units)
	}
	if item := record.Item("PRESSURE_CONVERGENCE_LIMIT"); !item.DefaultApplied(0) {
		balance.PressureTolerance = item.GetSIDouble(0, units)
	}
	if item := record.Item("MAX_ITER"); !item.DefaultApplied(0) {
		balance.MaxIter = item.GetInt(0)
	}
	if item := record.Item("THP_CONVERGENCE_LIMIT"); !item.DefaultApplied(0) {
		balance.ThpTolerance = item.GetDouble(0)
	}
	if item := record.Item("MAX_ITER_THP"); !item.DefaultApplied(0) {
		balance.MaxThpIter = item.GetInt(0)
	}
	return balance
}

func (b *NetworkBalance) SerializeOp(s *serial.Serializer) {
	s.Float64(&b.Interval)
	s.Float64(&b.PressureTolerance)
	s.Int(&b.MaxIter)
	s.Float64(&b.ThpTolerance)
	s.Int(&b.MaxThpIter)
}
