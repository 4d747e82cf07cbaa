package serial

import (
	"cmp"
	"fmt"
	"sort"
)

// Elem describes how one element of a container is traversed. The helpers
// below thread it through all four operation modes.
type Elem[T any] func(*Serializer, *T)

// Str is an Elem for plain strings.
func Str(s *Serializer, v *string) { s.String(v) }

// I is an Elem for ints.
func I(s *Serializer, v *int) { s.Int(v) }

// F64 is an Elem for float64s.
func F64(s *Serializer, v *float64) { s.Float64(v) }

// B is an Elem for bools.
func B(s *Serializer, v *bool) { s.Bool(v) }

// Obj is an Elem for types carrying their own SerializeOp method.
func Obj[T any, PT interface {
	*T
	Value
}](s *Serializer, v *T) {
	PT(v).SerializeOp(s)
}

// Ref adapts an element traversal to a shared-pointer element, for
// containers whose values are pointers.
func Ref[T any](elem Elem[T]) Elem[*T] {
	return func(s *Serializer, v **T) { Shared(s, v, elem) }
}

// Slice serializes an ordered sequence: element count followed by the
// elements in order. Element order is significant and is part of the digest.
func Slice[T any](s *Serializer, v *[]T, elem Elem[T]) {
	if s.op == opUnpack {
		n := s.readCount()
		if s.err != nil {
			return
		}
		out := make([]T, n)
		for i := range out {
			elem(s, &out[i])
		}
		*v = out
		return
	}
	s.writeCount(len(*v))
	for i := range *v {
		elem(s, &(*v)[i])
	}
}

// Array serializes a fixed-length sequence without a count prefix.
func Array[T any](s *Serializer, v []T, elem Elem[T]) {
	for i := range v {
		elem(s, &v[i])
	}
}

// Map serializes an associative mapping. Keys are visited in sorted order in
// every mode, so insertion history can never influence the packed bytes or
// the digest.
func Map[K cmp.Ordered, V any](s *Serializer, v *map[K]V, key Elem[K], val Elem[V]) {
	if s.op == opUnpack {
		n := s.readCount()
		if s.err != nil {
			return
		}
		out := make(map[K]V, n)
		for i := 0; i < n; i++ {
			var k K
			var e V
			key(s, &k)
			val(s, &e)
			if s.err != nil {
				return
			}
			out[k] = e
		}
		*v = out
		return
	}
	s.writeCount(len(*v))
	for _, k := range sortedKeys(*v) {
		e := (*v)[k]
		key(s, &k)
		val(s, &e)
		(*v)[k] = e
	}
}

// Set serializes a key set in canonical sorted order.
func Set[K cmp.Ordered](s *Serializer, v *map[K]struct{}, key Elem[K]) {
	if s.op == opUnpack {
		n := s.readCount()
		if s.err != nil {
			return
		}
		out := make(map[K]struct{}, n)
		for i := 0; i < n; i++ {
			var k K
			key(s, &k)
			if s.err != nil {
				return
			}
			out[k] = struct{}{}
		}
		*v = out
		return
	}
	s.writeCount(len(*v))
	for _, k := range sortedKeys(*v) {
		key(s, &k)
	}
}

// Pair serializes a two-element tuple.
func Pair[A, B any](s *Serializer, a *A, b *B, first Elem[A], second Elem[B]) {
	first(s, a)
	second(s, b)
}

// Optional serializes a possibly-absent value as a presence flag plus, when
// present, the value itself.
func Optional[T any](s *Serializer, v **T, elem Elem[T]) {
	if s.op == opUnpack {
		var has bool
		s.Bool(&has)
		if s.err != nil {
			return
		}
		if !has {
			*v = nil
			return
		}
		out := new(T)
		elem(s, out)
		*v = out
		return
	}
	has := *v != nil
	s.Bool(&has)
	if has {
		elem(s, *v)
	}
}

// Shared serializes a reference that may be observed more than once during a
// single top-level call. The referenced value is serialized exactly once;
// later occurrences carry only the reference id and are resolved to the same
// reconstructed instance on unpack. Check-summing digests presence and
// content only, never identity, so two structurally equal states hash alike
// regardless of how their references alias.
func Shared[T any](s *Serializer, v **T, elem Elem[T]) {
	switch s.op {
	case opSum:
		has := *v != nil
		s.Bool(&has)
		if has {
			elem(s, *v)
		}
	case opUnpack:
		id := s.refIn()
		if s.err != nil {
			return
		}
		if id == 0 {
			*v = nil
			return
		}
		if inst, ok := s.unpackRefs[id]; ok {
			*v = inst.(*T)
			return
		}
		out := new(T)
		s.unpackRefs[id] = out
		elem(s, out)
		*v = out
	default:
		if *v == nil {
			var zero uint64
			s.Uint64(&zero)
			return
		}
		if first := s.refOut(*v); first {
			elem(s, *v)
		}
	}
}

// Owned serializes an exclusively-owned reference. The wire form matches
// Shared, but reconstructing the same id twice during unpack means the
// exclusive-ownership invariant was violated upstream and is a fatal
// internal-consistency error.
func Owned[T any](s *Serializer, v **T, elem Elem[T]) {
	switch s.op {
	case opSum:
		has := *v != nil
		s.Bool(&has)
		if has {
			elem(s, *v)
		}
	case opUnpack:
		id := s.refIn()
		if s.err != nil {
			return
		}
		if id == 0 {
			*v = nil
			return
		}
		if s.ownedSeen[id] {
			s.fail(fmt.Sprintf("owned reference %d reconstructed twice", id))
			return
		}
		s.ownedSeen[id] = true
		out := new(T)
		elem(s, out)
		*v = out
	default:
		if *v == nil {
			var zero uint64
			s.Uint64(&zero)
			return
		}
		if first := s.refOut(*v); first {
			elem(s, *v)
		}
	}
}

// Variant serializes a closed tagged union as an explicit discriminant
// followed by the selected alternative. index maps a value to its
// discriminant; alt constructs the alternative for a discriminant and
// returns the zero Value for one that is out of range, which fails the
// unpack fatally.
func Variant[V Value](s *Serializer, v *V, index func(V) int, alt func(int) V) {
	if s.op == opUnpack {
		var idx int
		s.Int(&idx)
		if s.err != nil {
			return
		}
		nv := alt(idx)
		if isNilValue(nv) {
			s.fail(fmt.Sprintf("variant discriminant %d out of range", idx))
			return
		}
		nv.SerializeOp(s)
		*v = nv
		return
	}
	idx := index(*v)
	s.Int(&idx)
	(*v).SerializeOp(s)
}

func isNilValue(v Value) bool {
	return v == nil
}

// refOut assigns or recalls the reference id for a live non-nil pointer
// during size/pack. It writes the id and reports whether this is the first
// occurrence, i.e. whether the payload follows.
func (s *Serializer) refOut(ptr any) bool {
	id, seen := s.packRefs[ptr]
	if !seen {
		s.nextRef++
		id = s.nextRef
		s.packRefs[ptr] = id
	}
	s.Uint64(&id)
	return !seen
}

func (s *Serializer) refIn() uint64 {
	var id uint64
	s.Uint64(&id)
	return id
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
