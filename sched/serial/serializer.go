// Package serial provides a single-traversal (de-)serialization framework for
// schedule state objects. A type describes its wire shape once, in a
// SerializeOp method, and the same traversal serves four operations: buffer
// sizing, packing, unpacking and check-summing. The operation in effect is an
// internal mode flag on the Serializer, so exactly one traversal has to be
// written and tested per data shape.
//
// The byte layout is not a stable public format; it is only required to be
// self-consistent within one build (size, then pack, then later unpack with
// matching traversal code). Packed buffers carry a trailing xxhash64 digest;
// a digest mismatch on unpack is a hard data-corruption signal and fails the
// whole operation.
package serial

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

type op int

const (
	opSize op = iota // calculating required buffer size
	opPack           // writing into the buffer
	opUnpack         // reading from the buffer
	opSum            // check-summing only, no buffer involved
)

// A Value knows how to describe its wire shape to a Serializer. The same
// method body runs for sizing, packing, unpacking and check-summing.
type Value interface {
	SerializeOp(*Serializer)
}

// ConsistencyError reports a fatal internal-consistency failure during
// unpacking: a digest mismatch, a container size exceeding the buffer, an
// out-of-range variant discriminant, or an owned reference aliased twice.
// These are never recoverable.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "serial: " + e.Reason
}

// Serializer drives one traversal in one of the four operation modes. A
// Serializer may be reused; the reference maps are cleared at the start of
// every top-level Pack/Unpack/Checksum call.
type Serializer struct {
	op   op
	size int
	buf  []byte
	pos  int
	sum  *xxhash.Digest
	err  error

	packRefs   map[any]uint64 // live pointer -> ref id (size/pack)
	unpackRefs map[uint64]any // ref id -> reconstructed instance (unpack)
	ownedSeen  map[uint64]bool
	nextRef    uint64
}

// NewSerializer returns an empty Serializer ready for a top-level call.
func NewSerializer() *Serializer {
	return &Serializer{sum: xxhash.New()}
}

func (s *Serializer) reset(o op) {
	s.op = o
	s.size = 0
	s.pos = 0
	s.err = nil
	s.sum.Reset()
	s.packRefs = make(map[any]uint64)
	s.unpackRefs = make(map[uint64]any)
	s.ownedSeen = make(map[uint64]bool)
	s.nextRef = 0
}

// Pack serializes data into a fresh buffer. The traversal runs twice, first
// to compute the exact buffer size and then to fill it, and the buffer is
// finished with the xxhash64 digest of the packed bytes.
func (s *Serializer) Pack(data Value) ([]byte, error) {
	s.reset(opSize)
	data.SerializeOp(s)
	if s.err != nil {
		return nil, s.err
	}

	total := s.size + 8 // trailing digest
	s.reset(opPack)
	s.buf = make([]byte, total)
	data.SerializeOp(s)
	if s.err != nil {
		return nil, s.err
	}
	binary.LittleEndian.PutUint64(s.buf[s.pos:], s.sum.Sum64())
	buf := s.buf
	s.buf = nil
	return buf, nil
}

// Unpack reconstructs data from a buffer produced by Pack. The digest of the
// consumed bytes is compared against the trailing digest; a mismatch is a
// fatal ConsistencyError.
func (s *Serializer) Unpack(data Value, buf []byte) error {
	s.reset(opUnpack)
	s.buf = buf
	data.SerializeOp(s)
	if s.err != nil {
		s.buf = nil
		return s.err
	}
	if s.pos+8 > len(buf) {
		s.buf = nil
		return &ConsistencyError{Reason: "buffer too short for trailing check-sum"}
	}
	want := binary.LittleEndian.Uint64(buf[s.pos:])
	if got := s.sum.Sum64(); got != want {
		s.buf = nil
		return &ConsistencyError{
			Reason: fmt.Sprintf("check-sum mismatch in de-serialization: %#x != %#x", got, want),
		}
	}
	s.buf = nil
	return nil
}

// Checksum computes the xxhash64 digest of data without materializing a
// buffer. Associative containers are digested in canonical sorted key order,
// so two states holding the same bindings hash identically regardless of
// insertion history.
func (s *Serializer) Checksum(data Value) uint64 {
	s.reset(opSum)
	data.SerializeOp(s)
	return s.sum.Sum64()
}

// Unpacking reports whether the current traversal is reconstructing state.
// Shape descriptions occasionally need this, e.g. to clear a container
// before filling it.
func (s *Serializer) Unpacking() bool {
	return s.op == opUnpack
}

func (s *Serializer) fail(reason string) {
	if s.err == nil {
		s.err = &ConsistencyError{Reason: reason}
	}
}

// emit routes already-encoded bytes according to the current mode.
func (s *Serializer) emit(b []byte) {
	if s.err != nil {
		return
	}
	switch s.op {
	case opSize:
		s.size += len(b)
	case opPack:
		if s.pos+len(b) > len(s.buf) {
			s.fail("pack position exceeds computed buffer size")
			return
		}
		copy(s.buf[s.pos:], b)
		s.pos += len(b)
		s.sum.Write(b)
	case opSum:
		s.sum.Write(b)
	}
}

// consume reads len(b) bytes from the buffer into b, feeding the digest.
func (s *Serializer) consume(b []byte) bool {
	if s.err != nil {
		return false
	}
	if s.pos+len(b) > len(s.buf) {
		s.fail("unpack position exceeds buffer size")
		return false
	}
	copy(b, s.buf[s.pos:])
	s.pos += len(b)
	s.sum.Write(b)
	return true
}

// Uint64 serializes a fixed-width unsigned scalar.
func (s *Serializer) Uint64(v *uint64) {
	var b [8]byte
	if s.op == opUnpack {
		if s.consume(b[:]) {
			*v = binary.LittleEndian.Uint64(b[:])
		}
		return
	}
	binary.LittleEndian.PutUint64(b[:], *v)
	s.emit(b[:])
}

// Int serializes a signed integer as 64 bits.
func (s *Serializer) Int(v *int) {
	u := uint64(int64(*v))
	s.Uint64(&u)
	if s.op == opUnpack {
		*v = int(int64(u))
	}
}

// Int64 serializes a signed 64-bit scalar.
func (s *Serializer) Int64(v *int64) {
	u := uint64(*v)
	s.Uint64(&u)
	if s.op == opUnpack {
		*v = int64(u)
	}
}

// Float64 serializes an IEEE-754 double by bit pattern.
func (s *Serializer) Float64(v *float64) {
	u := math.Float64bits(*v)
	s.Uint64(&u)
	if s.op == opUnpack {
		*v = math.Float64frombits(u)
	}
}

// Bool serializes a boolean as a single byte.
func (s *Serializer) Bool(v *bool) {
	var b [1]byte
	if s.op == opUnpack {
		if s.consume(b[:]) {
			*v = b[0] != 0
		}
		return
	}
	if *v {
		b[0] = 1
	}
	s.emit(b[:])
}

// String serializes a length-prefixed string.
func (s *Serializer) String(v *string) {
	if s.op == opUnpack {
		n := s.readCount()
		if s.err != nil {
			return
		}
		b := make([]byte, n)
		if s.consume(b) {
			*v = string(b)
		}
		return
	}
	n := len(*v)
	s.writeCount(n)
	s.emit([]byte(*v))
}

func (s *Serializer) writeCount(n int) {
	u := uint64(n)
	s.Uint64(&u)
}

// readCount reads a container length and validates it against the remaining
// buffer. A declared size larger than what the buffer can possibly hold is a
// fatal consistency error, not a short read.
func (s *Serializer) readCount() int {
	var u uint64
	s.Uint64(&u)
	if s.err != nil {
		return 0
	}
	if u > uint64(len(s.buf)-s.pos) {
		s.fail(fmt.Sprintf("declared container size %d exceeds remaining buffer %d",
			u, len(s.buf)-s.pos))
		return 0
	}
	return int(u)
}
