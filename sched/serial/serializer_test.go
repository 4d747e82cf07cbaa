package serial

import (
	"errors"
	"testing"
)

// wirePoint and wireBag are minimal shapes exercising scalars, ordered and
// associative containers, and both reference kinds.

type wirePoint struct {
	X, Y int
}

func (p *wirePoint) SerializeOp(s *Serializer) {
	s.Int(&p.X)
	s.Int(&p.Y)
}

type wireBag struct {
	Name  string
	Vals  []float64
	Tags  map[string]int
	Left  *wirePoint
	Right *wirePoint
}

func (b *wireBag) SerializeOp(s *Serializer) {
	s.String(&b.Name)
	Slice(s, &b.Vals, F64)
	Map(s, &b.Tags, Str, I)
	Shared(s, &b.Left, Obj[wirePoint])
	Shared(s, &b.Right, Obj[wirePoint])
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	// GIVEN a bag with scalars, containers and two distinct references
	in := &wireBag{
		Name:  "bag",
		Vals:  []float64{1.5, -2.25, 0},
		Tags:  map[string]int{"a": 1, "b": 2},
		Left:  &wirePoint{X: 3, Y: 4},
		Right: &wirePoint{X: 7, Y: 8},
	}

	// WHEN it is packed and unpacked into a zero value
	buf, err := NewSerializer().Pack(in)
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}
	out := &wireBag{}
	if err := NewSerializer().Unpack(out, buf); err != nil {
		t.Fatalf("Unpack: unexpected error: %v", err)
	}

	// THEN the reconstructed value matches field by field
	if out.Name != in.Name {
		t.Errorf("Name: got %q, want %q", out.Name, in.Name)
	}
	if len(out.Vals) != 3 || out.Vals[0] != 1.5 || out.Vals[1] != -2.25 || out.Vals[2] != 0 {
		t.Errorf("Vals: got %v, want %v", out.Vals, in.Vals)
	}
	if len(out.Tags) != 2 || out.Tags["a"] != 1 || out.Tags["b"] != 2 {
		t.Errorf("Tags: got %v, want %v", out.Tags, in.Tags)
	}
	if *out.Left != *in.Left || *out.Right != *in.Right {
		t.Errorf("points: got %v/%v, want %v/%v", out.Left, out.Right, in.Left, in.Right)
	}
	if out.Left == out.Right {
		t.Error("distinct references collapsed into one instance on unpack")
	}
}

func TestChecksum_MapInsertionOrderIrrelevant(t *testing.T) {
	// GIVEN two bags holding the same bindings inserted in opposite order
	a := &wireBag{Tags: map[string]int{}}
	b := &wireBag{Tags: map[string]int{}}
	for _, k := range []string{"w1", "w2", "w3"} {
		a.Tags[k] = len(k)
	}
	for _, k := range []string{"w3", "w2", "w1"} {
		b.Tags[k] = len(k)
	}

	// WHEN both are digested
	sumA := NewSerializer().Checksum(a)
	sumB := NewSerializer().Checksum(b)

	// THEN the digests agree
	if sumA != sumB {
		t.Errorf("map insertion order influenced digest: %#x != %#x", sumA, sumB)
	}
}

func TestChecksum_SliceOrderSignificant(t *testing.T) {
	// GIVEN two bags whose slices hold the same values in different order
	a := &wireBag{Vals: []float64{1, 2}}
	b := &wireBag{Vals: []float64{2, 1}}

	// THEN the digests differ
	if sumA, sumB := NewSerializer().Checksum(a), NewSerializer().Checksum(b); sumA == sumB {
		t.Errorf("slice order did not influence digest: both %#x", sumA)
	}
}

func TestChecksum_AliasingIrrelevant(t *testing.T) {
	// GIVEN one bag aliasing a single point and one holding two equal copies
	p := &wirePoint{X: 1, Y: 2}
	aliased := &wireBag{Left: p, Right: p}
	copied := &wireBag{Left: &wirePoint{X: 1, Y: 2}, Right: &wirePoint{X: 1, Y: 2}}

	// THEN check-summing digests content, not identity
	if sumA, sumB := NewSerializer().Checksum(aliased), NewSerializer().Checksum(copied); sumA != sumB {
		t.Errorf("aliasing influenced digest: %#x != %#x", sumA, sumB)
	}
}

func TestShared_AliasPreservedOnUnpack(t *testing.T) {
	// GIVEN a bag whose two references alias the same point
	p := &wirePoint{X: 5, Y: 6}
	in := &wireBag{Left: p, Right: p}

	// WHEN it round-trips
	buf, err := NewSerializer().Pack(in)
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}
	out := &wireBag{}
	if err := NewSerializer().Unpack(out, buf); err != nil {
		t.Fatalf("Unpack: unexpected error: %v", err)
	}

	// THEN the aliasing is reconstructed, not duplicated
	if out.Left != out.Right {
		t.Error("aliased reference reconstructed as two instances")
	}
	if *out.Left != *p {
		t.Errorf("aliased point: got %v, want %v", *out.Left, *p)
	}
}

func TestUnpack_DigestMismatchIsFatal(t *testing.T) {
	// GIVEN a packed buffer with one payload byte flipped
	in := &wireBag{Name: "corrupt-me", Vals: []float64{1, 2, 3}}
	buf, err := NewSerializer().Pack(in)
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}
	buf[9] ^= 0xff

	// WHEN it is unpacked
	err = NewSerializer().Unpack(&wireBag{}, buf)

	// THEN the failure is a ConsistencyError, never a silent partial state
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("corrupted buffer: got %v, want ConsistencyError", err)
	}
}

func TestUnpack_OversizedCountIsFatal(t *testing.T) {
	// GIVEN a buffer whose leading container count claims more elements
	// than the buffer could possibly hold
	in := &wireBag{Name: "x"}
	buf, err := NewSerializer().Pack(in)
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}
	for i := 0; i < 8; i++ {
		buf[i] = 0xff
	}

	// WHEN it is unpacked
	err = NewSerializer().Unpack(&wireBag{}, buf)

	// THEN the declared size is rejected as a consistency failure
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("oversized count: got %v, want ConsistencyError", err)
	}
}

// ownedPair aliases one point through two Owned references, violating the
// exclusive-ownership invariant on purpose.
type ownedPair struct {
	A, B *wirePoint
}

func (o *ownedPair) SerializeOp(s *Serializer) {
	Owned(s, &o.A, Obj[wirePoint])
	Owned(s, &o.B, Obj[wirePoint])
}

func TestOwned_DoubleAliasIsFatalOnUnpack(t *testing.T) {
	// GIVEN a packed buffer in which one owned reference was aliased twice
	p := &wirePoint{X: 1}
	buf, err := NewSerializer().Pack(&ownedPair{A: p, B: p})
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}

	// WHEN it is unpacked
	err = NewSerializer().Unpack(&ownedPair{}, buf)

	// THEN the violated ownership invariant fails the whole operation
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("double-aliased owned reference: got %v, want ConsistencyError", err)
	}
}

// variantHolder is a two-alternative closed union for discriminant tests.
type variantHolder struct {
	v Value
}

type altInt struct{ n int }
type altStr struct{ s string }

func (a *altInt) SerializeOp(s *Serializer) { s.Int(&a.n) }
func (a *altStr) SerializeOp(s *Serializer) { s.String(&a.s) }

func (h *variantHolder) SerializeOp(s *Serializer) {
	Variant(s, &h.v,
		func(v Value) int {
			if _, ok := v.(*altInt); ok {
				return 0
			}
			return 1
		},
		func(idx int) Value {
			switch idx {
			case 0:
				return &altInt{}
			case 1:
				return &altStr{}
			}
			return nil
		})
}

func TestVariant_RoundTripAndBadDiscriminant(t *testing.T) {
	// GIVEN a holder carrying the second alternative
	in := &variantHolder{v: &altStr{s: "gas"}}
	buf, err := NewSerializer().Pack(in)
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}

	// WHEN it is unpacked
	out := &variantHolder{}
	if err := NewSerializer().Unpack(out, buf); err != nil {
		t.Fatalf("Unpack: unexpected error: %v", err)
	}

	// THEN the selected alternative is reconstructed
	as, ok := out.v.(*altStr)
	if !ok || as.s != "gas" {
		t.Errorf("variant: got %#v, want altStr{gas}", out.v)
	}

	// WHEN the discriminant is forced out of range
	buf2, err := NewSerializer().Pack(in)
	if err != nil {
		t.Fatalf("Pack: unexpected error: %v", err)
	}
	buf2[0] = 99

	// THEN unpack fails fatally instead of guessing an alternative
	var ce *ConsistencyError
	if err := NewSerializer().Unpack(&variantHolder{}, buf2); !errors.As(err, &ce) {
		t.Fatalf("bad discriminant: got %v, want ConsistencyError", err)
	}
}

func TestOptional_NilAndPresent(t *testing.T) {
	type holder struct{ p *wirePoint }
	ser := func(s *Serializer, h *holder) { Optional(s, &h.p, Obj[wirePoint]) }

	for _, tc := range []struct {
		name string
		in   *wirePoint
	}{
		{"nil", nil},
		{"present", &wirePoint{X: 9, Y: 10}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			in := holder{p: tc.in}
			s := NewSerializer()
			buf, err := s.Pack(valueFunc(func(sz *Serializer) { ser(sz, &in) }))
			if err != nil {
				t.Fatalf("Pack: unexpected error: %v", err)
			}
			var out holder
			if err := NewSerializer().Unpack(valueFunc(func(sz *Serializer) { ser(sz, &out) }), buf); err != nil {
				t.Fatalf("Unpack: unexpected error: %v", err)
			}
			if (out.p == nil) != (tc.in == nil) {
				t.Fatalf("presence: got %v, want %v", out.p, tc.in)
			}
			if tc.in != nil && *out.p != *tc.in {
				t.Errorf("value: got %v, want %v", *out.p, *tc.in)
			}
		})
	}
}

// valueFunc adapts a closure to the Value interface for ad-hoc shapes.
type valueFunc func(*Serializer)

func (f valueFunc) SerializeOp(s *Serializer) { f(s) }
