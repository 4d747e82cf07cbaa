package sched

import (
	"github.com/deck-sim/deck-sim/sched/serial"
)

// UDAValue is a user-defined argument: a deck item that is either a plain
// scalar or a reference to a user-defined quantity by name. It is a closed
// two-alternative union; the serializer writes an explicit discriminant.
type UDAValue struct {
	scalar float64
	udq    string
}

// Scalar builds a numeric UDAValue.
func Scalar(v float64) UDAValue { return UDAValue{scalar: v} }

// UDQRef builds a UDAValue referring to a named user-defined quantity.
func UDQRef(name string) UDAValue { return UDAValue{udq: name} }

// IsNumeric reports whether the value is a plain scalar.
func (u UDAValue) IsNumeric() bool { return u.udq == "" }

// Zero reports whether the value is the numeric zero. A UDQ reference is
// never zero: its magnitude is unknown until evaluated.
func (u UDAValue) Zero() bool { return u.udq == "" && u.scalar == 0 }

// Get returns the scalar magnitude. Calling Get on a UDQ reference is a
// programming error upstream; the zero value keeps it observable without
// aborting.
func (u UDAValue) Get() float64 { return u.scalar }

// SI returns the scalar scaled to SI by the given factor. UDQ references are
// dimensionless until evaluation and pass through unscaled.
func (u UDAValue) SI(scaling float64) UDAValue {
	if !u.IsNumeric() {
		return u
	}
	return UDAValue{scalar: u.scalar * scaling}
}

// UDQName returns the referenced quantity name, or "" for scalars.
func (u UDAValue) UDQName() string { return u.udq }

type udaScalar struct{ v float64 }
type udaRef struct{ name string }

func (a *udaScalar) SerializeOp(s *serial.Serializer) { s.Float64(&a.v) }
func (a *udaRef) SerializeOp(s *serial.Serializer) { s.String(&a.name) }

// SerializeOp writes the union through an explicit discriminant so that an
// out-of-range alternative on unpack fails fatally.
func (u *UDAValue) SerializeOp(s *serial.Serializer) {
	var v serial.Value
	if u.IsNumeric() {
		v = &udaScalar{v: u.scalar}
	} else {
		v = &udaRef{name: u.udq}
	}
	serial.Variant(s, &v,
		func(v serial.Value) int {
			if _, ok := v.(*udaScalar); ok {
				return 0
			}
			return 1
		},
		func(idx int) serial.Value {
			switch idx {
			case 0:
				return &udaScalar{}
			case 1:
				return &udaRef{}
			}
			return nil
		})
	if s.Unpacking() {
		switch a := v.(type) {
		case *udaScalar:
			*u = UDAValue{scalar: a.v}
		case *udaRef:
			*u = UDAValue{udq: a.name}
		}
	}
}
