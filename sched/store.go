package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// EntityStore is an insertion-ordered mapping from name to an immutable
// entity value. Iteration follows deck order, which matters for correctness
// of default-value propagation across wells.
//
// Sharing across report steps is copy-on-write at the binding level: Fork
// produces a store whose bindings alias the parent's, and Update rebinds a
// single name in the forked store only. An entity pointer is treated as
// immutable once it is bound; handlers copy the value, modify the copy, and
// Update the store with the new pointer.
type EntityStore[T any] struct {
	order    []string
	bindings map[string]*T
}

// NewEntityStore returns an empty store.
func NewEntityStore[T any]() *EntityStore[T] {
	return &EntityStore[T]{bindings: make(map[string]*T)}
}

// Has reports whether name is bound.
func (st *EntityStore[T]) Has(name string) bool {
	_, ok := st.bindings[name]
	return ok
}

// Get returns the binding for name, or nil when absent.
func (st *EntityStore[T]) Get(name string) *T {
	return st.bindings[name]
}

// Update binds name to v, appending to the insertion order on first
// binding. Earlier steps keep their own bindings.
func (st *EntityStore[T]) Update(name string, v *T) {
	if _, ok := st.bindings[name]; !ok {
		st.order = append(st.order, name)
	}
	st.bindings[name] = v
}

// Names returns the bound names in deck insertion order. The returned slice
// is shared; callers must not modify it.
func (st *EntityStore[T]) Names() []string {
	return st.order
}

// Len returns the number of bindings.
func (st *EntityStore[T]) Len() int { return len(st.bindings) }

// Fork returns a store sharing every binding with the receiver. Unaffected
// entities stay pointer-identical across steps; only names updated in the
// fork diverge.
func (st *EntityStore[T]) Fork() *EntityStore[T] {
	next := &EntityStore[T]{
		order:    make([]string, len(st.order)),
		bindings: make(map[string]*T, len(st.bindings)),
	}
	copy(next.order, st.order)
	for name, v := range st.bindings {
		next.bindings[name] = v
	}
	return next
}

// serializeStore traverses a store for the serializer: the insertion order
// as an ordered sequence, then each binding as a shared reference so that
// entities aliased across steps are packed once.
func serializeStore[T any](s *serial.Serializer, st *EntityStore[T], elem serial.Elem[T]) {
	serial.Slice(s, &st.order, serial.Str)
	if s.Unpacking() {
		st.bindings = make(map[string]*T, len(st.order))
		for _, name := range st.order {
			var v *T
			serial.Shared(s, &v, elem)
			st.bindings[name] = v
		}
		return
	}
	for _, name := range st.order {
		v := st.bindings[name]
		serial.Shared(s, &v, elem)
	}
}

// TableStore is the integer-keyed analogue of EntityStore used for VFP
// tables. Table numbers are iterated in ascending order.
type TableStore[T any] struct {
	tables map[int]*T
}

// NewTableStore returns an empty table store.
func NewTableStore[T any]() *TableStore[T] {
	return &TableStore[T]{tables: make(map[int]*T)}
}

// Has reports whether table nr is defined.
func (ts *TableStore[T]) Has(nr int) bool {
	_, ok := ts.tables[nr]
	return ok
}

// Get returns table nr, or nil when undefined.
func (ts *TableStore[T]) Get(nr int) *T { return ts.tables[nr] }

// Update binds table nr.
func (ts *TableStore[T]) Update(nr int, v *T) { ts.tables[nr] = v }

// Len returns the number of defined tables.
func (ts *TableStore[T]) Len() int { return len(ts.tables) }

// Fork returns a table store sharing every binding with the receiver.
func (ts *TableStore[T]) Fork() *TableStore[T] {
	next := NewTableStore[T]()
	for nr, v := range ts.tables {
		next.tables[nr] = v
	}
	return next
}

func serializeTables[T any](s *serial.Serializer, ts *TableStore[T], elem serial.Elem[T]) {
	if ts.tables == nil {
		ts.tables = make(map[int]*T)
	}
	serial.Map(s, &ts.tables, serial.I, func(s *serial.Serializer, v **T) {
		serial.Shared(s, v, elem)
	})
}
