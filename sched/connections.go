package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// ConnectionState is the open/shut state of one grid connection.
type ConnectionState int

const (
	ConnOpen ConnectionState = iota
	ConnShut
	ConnAuto
)

// ConnectionStateFromString parses a connection status item.
func ConnectionStateFromString(s string, location Location) (ConnectionState, error) {
	switch s {
	case "OPEN":
		return ConnOpen, nil
	case "SHUT", "STOP":
		return ConnShut, nil
	case "AUTO":
		return ConnAuto, nil
	}
	return ConnShut, NewInputError(location, "Unknown connection status: %s", s)
}

// Connection is one perforation of a well in the grid.
type Connection struct {
	I, J, K  int // one-based grid coordinates
	Complnum int // completion number, one-based in deck order
	State    ConnectionState
	CF       float64 // connection transmissibility factor
	Diameter float64
	Skin     float64
	SatTable int
}

func (c *Connection) SerializeOp(s *serial.Serializer) {
	s.Int(&c.I)
	s.Int(&c.J)
	s.Int(&c.K)
	s.Int(&c.Complnum)
	state := int(c.State)
	s.Int(&state)
	c.State = ConnectionState(state)
	s.Float64(&c.CF)
	s.Float64(&c.Diameter)
	s.Float64(&c.Skin)
	s.Int(&c.SatTable)
}

// WellConnections is the ordered connection set of one well. Order is deck
// order, which fixes the completion numbering.
type WellConnections struct {
	Conns []Connection
}

// Clone returns an independent copy for staged mutation.
func (wc *WellConnections) Clone() *WellConnections {
	next := &WellConnections{Conns: make([]Connection, len(wc.Conns))}
	copy(next.Conns, wc.Conns)
	return next
}

// Equal compares connection sets by value, order included.
func (wc *WellConnections) Equal(other *WellConnections) bool {
	if len(wc.Conns) != len(other.Conns) {
		return false
	}
	for i := range wc.Conns {
		if wc.Conns[i] != other.Conns[i] {
			return false
		}
	}
	return true
}

// AllShut reports whether the well has connections and every one is shut.
func (wc *WellConnections) AllShut() bool {
	if len(wc.Conns) == 0 {
		return false
	}
	for i := range wc.Conns {
		if wc.Conns[i].State != ConnShut {
			return false
		}
	}
	return true
}

func (wc *WellConnections) find(i, j, k int) *Connection {
	for idx := range wc.Conns {
		c := &wc.Conns[idx]
		if c.I == i && c.J == j && c.K == k {
			return c
		}
	}
	return nil
}

// LoadCOMPDAT applies one COMPDAT record: connections for the K1..K2 column
// at (I,J), created or revised in place. Defaulted I/J fall back to the
// well head position. Returns whether anything changed.
func (wc *WellConnections) LoadCOMPDAT(record *Record, grid *ScheduleGrid, headI, headJ int, units UnitSystem, location Location) (bool, error) {
	i := record.Item("I").GetInt(0)
	j := record.Item("J").GetInt(0)
	if record.Item("I").DefaultApplied(0) || i == 0 {
		i = headI
	}
	if record.Item("J").DefaultApplied(0) || j == 0 {
		j = headJ
	}
	k1 := record.Item("K1").GetInt(0)
	k2 := record.Item("K2").GetInt(0)
	if k2 < k1 {
		return false, NewInputError(location, "COMPDAT K2 %d is above K1 %d", k2, k1)
	}

	state, err := ConnectionStateFromString(record.Item("STATE").GetTrimmedString(0), location)
	if err != nil {
		return false, err
	}

	changed := false
	for k := k1; k <= k2; k++ {
		if !grid.Valid(i, j, k) {
			return false, NewInputError(location,
				"COMPDAT connection (%d,%d,%d) outside grid dimensions (%d,%d,%d)",
				i, j, k, grid.NX, grid.NY, grid.NZ)
		}
		conn := wc.find(i, j, k)
		if conn == nil {
			wc.Conns = append(wc.Conns, Connection{
				I:        i,
				J:        j,
				K:        k,
				Complnum: len(wc.Conns) + 1,
				State:    state,
			})
			conn = &wc.Conns[len(wc.Conns)-1]
			changed = true
		} else if conn.State != state {
			conn.State = state
			changed = true
		}

		if item := record.Item("CONNECTION_TRANSMISSIBILITY_FACTOR"); !item.DefaultApplied(0) {
			cf := item.GetSIDouble(0, units)
			if conn.CF != cf {
				conn.CF = cf
				changed = true
			}
		}
		if item := record.Item("DIAMETER"); !item.DefaultApplied(0) {
			d := item.GetSIDouble(0, units)
			if conn.Diameter != d {
				conn.Diameter = d
				changed = true
			}
		}
		if item := record.Item("SKIN"); !item.DefaultApplied(0) {
			skin := item.GetDouble(0)
			if conn.Skin != skin {
				conn.Skin = skin
				changed = true
			}
		}
		if item := record.Item("SAT_TABLE"); !item.DefaultApplied(0) {
			if nr := item.GetInt(0); conn.SatTable != nr {
				conn.SatTable = nr
				changed = true
			}
		}
	}
	return changed, nil
}

// matchRange implements the WELOPEN/WPIMULT filter convention: a defaulted
// or non-positive bound matches everything.
func matchRange(value, bound int) bool {
	return bound <= 0 || value == bound
}

// HandleWELOPEN revises the state of the connections selected by the
// record's I/J/K and completion-number range. Returns whether anything
// changed.
func (wc *WellConnections) HandleWELOPEN(record *Record, state ConnectionState) bool {
	i := record.Item("I").GetInt(0)
	j := record.Item("J").GetInt(0)
	k := record.Item("K").GetInt(0)
	c1 := record.Item("C1").GetInt(0)
	c2 := record.Item("C2").GetInt(0)

	changed := false
	for idx := range wc.Conns {
		conn := &wc.Conns[idx]
		if !matchRange(conn.I, i) || !matchRange(conn.J, j) || !matchRange(conn.K, k) {
			continue
		}
		if c1 > 0 && conn.Complnum < c1 {
			continue
		}
		if c2 > 0 && conn.Complnum > c2 {
			continue
		}
		if conn.State != state {
			conn.State = state
			changed = true
		}
	}
	return changed
}

// ApplyWPIMULT scales the transmissibility factor of the connections
// selected by the record's I/J/K and completion range. Returns whether
// anything changed.
func (wc *WellConnections) ApplyWPIMULT(factor float64, record *Record) bool {
	i := record.Item("I").GetInt(0)
	j := record.Item("J").GetInt(0)
	k := record.Item("K").GetInt(0)
	c1 := record.Item("FIRST").GetInt(0)
	c2 := record.Item("LAST").GetInt(0)

	changed := false
	for idx := range wc.Conns {
		conn := &wc.Conns[idx]
		if !matchRange(conn.I, i) || !matchRange(conn.J, j) || !matchRange(conn.K, k) {
			continue
		}
		if c1 > 0 && conn.Complnum < c1 {
			continue
		}
		if c2 > 0 && conn.Complnum > c2 {
			continue
		}
		if factor != 1.0 {
			conn.CF *= factor
			changed = true
		}
	}
	return changed
}

// ApplyGlobalWPIMULT scales every connection by the deferred global factor.
func (wc *WellConnections) ApplyGlobalWPIMULT(factor float64) bool {
	if factor == 1.0 || len(wc.Conns) == 0 {
		return false
	}
	for idx := range wc.Conns {
		wc.Conns[idx].CF *= factor
	}
	return true
}

// HandleCOMPLUMP assigns the completion number for the selected I/J/K
// range. Returns whether anything changed.
func (wc *WellConnections) HandleCOMPLUMP(record *Record) bool {
	i := record.Item("I").GetInt(0)
	j := record.Item("J").GetInt(0)
	k1 := record.Item("K1").GetInt(0)
	k2 := record.Item("K2").GetInt(0)
	n := record.Item("N").GetInt(0)

	changed := false
	for idx := range wc.Conns {
		conn := &wc.Conns[idx]
		if !matchRange(conn.I, i) || !matchRange(conn.J, j) {
			continue
		}
		if k1 > 0 && conn.K < k1 {
			continue
		}
		if k2 > 0 && conn.K > k2 {
			continue
		}
		if conn.Complnum != n {
			conn.Complnum = n
			changed = true
		}
	}
	return changed
}

func (wc *WellConnections) SerializeOp(s *serial.Serializer) {
	serial.Slice(s, &wc.Conns, serial.Obj[Connection])
}

// ScheduleGrid is the read-only geometry collaborator: just enough of the
// grid to validate connection placement.
type ScheduleGrid struct {
	NX, NY, NZ int
}

// Valid reports whether the one-based (i,j,k) coordinate is inside the
// grid.
func (g *ScheduleGrid) Valid(i, j, k int) bool {
	return i >= 1 && i <= g.NX && j >= 1 && j <= g.NY && k >= 1 && k <= g.NZ
}
