package sched

import "github.com/deck-sim/deck-sim/sched/serial"

// WList is one named well list. List names start with '*' in the deck;
// the leading star is part of the stored name so pattern resolution can
// tell lists apart from well globs.
type WList struct {
	Name  string
	wells []string
}

func NewWList(name string) *WList {
	return &WList{Name: name}
}

func (w *WList) Wells() []string { return w.wells }

func (w *WList) Has(well string) bool {
	for _, name := range w.wells {
		if name == well {
			return true
		}
	}
	return false
}

func (w *WList) Add(well string) {
	if !w.Has(well) {
		w.wells = append(w.wells, well)
	}
}

func (w *WList) Del(well string) {
	for i, name := range w.wells {
		if name == well {
			w.wells = append(w.wells[:i], w.wells[i+1:]...)
			return
		}
	}
}

func (w *WList) SerializeOp(s *serial.Serializer) {
	s.String(&w.Name)
	serial.Slice(s, &w.wells, serial.Str)
}

// WListManager holds every well list defined by WLIST, in definition
// order.
type WListManager struct {
	order []string
	lists map[string]*WList
}

func NewWListManager() *WListManager {
	return &WListManager{lists: make(map[string]*WList)}
}

// Clone is a deep copy.
func (m *WListManager) Clone() *WListManager {
	n := NewWListManager()
	n.order = append([]string(nil), m.order...)
	for name, wl := range m.lists {
		cp := &WList{Name: wl.Name, wells: append([]string(nil), wl.wells...)}
		n.lists[name] = cp
	}
	return n
}

func (m *WListManager) Has(name string) bool {
	_, ok := m.lists[name]
	return ok
}

func (m *WListManager) Get(name string) (*WList, bool) {
	wl, ok := m.lists[name]
	return wl, ok
}

// NewList creates or resets the named list.
func (m *WListManager) NewList(name string) *WList {
	if _, ok := m.lists[name]; !ok {
		m.order = append(m.order, name)
	}
	wl := NewWList(name)
	m.lists[name] = wl
	return wl
}

// GetOrCreate returns the named list, creating an empty one on first use.
func (m *WListManager) GetOrCreate(name string) *WList {
	if wl, ok := m.lists[name]; ok {
		return wl
	}
	return m.NewList(name)
}

// DelWell removes a well from every list. Used when a well is deleted.
func (m *WListManager) DelWell(well string) {
	for _, wl := range m.lists {
		wl.Del(well)
	}
}

func (m *WListManager) SerializeOp(s *serial.Serializer) {
	serial.Slice(s, &m.order, serial.Str)
	serial.Map(s, &m.lists, serial.Str, serial.Ref(serial.Obj[WList]))
}
