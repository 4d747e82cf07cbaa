package sched

import (
	"strings"

	"github.com/deck-sim/deck-sim/sched/serial"
)

// The deck model mirrors what the external lexer/grammar layer produces: an
// ordered sequence of named keyword occurrences, each a list of records, each
// record a list of typed items. An item value can be "defaulted", which for
// most keywords means "leave the previous value unchanged" rather than "set
// to zero"; the accessors below make that distinction explicit.

// ItemKind is the declared type of a deck item.
type ItemKind int

const (
	IntItem ItemKind = iota
	DoubleItem
	StringItem
	UDAItem // double or quoted UDQ name
)

// ItemValue is one positional value of an item, possibly defaulted.
type ItemValue struct {
	I         int
	F         float64
	S         string
	Defaulted bool
}

// Item is one named column of a deck record.
type Item struct {
	Name      string
	Kind      ItemKind
	Dimension string // unit dimension, e.g. "Pressure"; empty for unitless
	Values    []ItemValue
}

// HasValue reports whether position i carries an explicit (non-defaulted)
// value.
func (it *Item) HasValue(i int) bool {
	return i < len(it.Values) && !it.Values[i].Defaulted
}

// DefaultApplied reports whether position i was defaulted in the deck. A
// position beyond the supplied values counts as defaulted.
func (it *Item) DefaultApplied(i int) bool {
	return i >= len(it.Values) || it.Values[i].Defaulted
}

// GetInt returns the integer at position i, or 0 when defaulted.
func (it *Item) GetInt(i int) int {
	if i >= len(it.Values) {
		return 0
	}
	return it.Values[i].I
}

// GetDouble returns the double at position i in deck units.
func (it *Item) GetDouble(i int) float64 {
	if i >= len(it.Values) {
		return 0
	}
	return it.Values[i].F
}

// GetSIDouble converts the double at position i to SI using the item's
// declared dimension. The engine never hardcodes a conversion factor.
func (it *Item) GetSIDouble(i int, units UnitSystem) float64 {
	return it.GetDouble(i) * units.Parse(it.Dimension).SIScaling()
}

// GetString returns the raw string at position i.
func (it *Item) GetString(i int) string {
	if i >= len(it.Values) {
		return ""
	}
	return it.Values[i].S
}

// GetTrimmedString returns the string at position i with surrounding
// whitespace removed.
func (it *Item) GetTrimmedString(i int) string {
	return strings.TrimSpace(it.GetString(i))
}

// GetUDA returns the value at position i as a user-defined argument: either
// a plain scalar or a reference to a UDQ by name.
func (it *Item) GetUDA(i int) UDAValue {
	if i >= len(it.Values) {
		return UDAValue{}
	}
	v := it.Values[i]
	if v.S != "" {
		return UDAValue{udq: v.S}
	}
	return UDAValue{scalar: v.F}
}

// ToBool interprets a YES/NO style deck string.
func ToBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y", "TRUE", "T", "1":
		return true
	}
	return false
}

// Record is one slash-terminated line of a keyword occurrence.
type Record struct {
	Items []Item
}

// Item returns the named item; records are narrow, a linear scan is fine.
// Asking for an item the grammar does not define for this keyword is a
// programming error, so the zero Item (everything defaulted) is returned
// rather than panicking.
func (r *Record) Item(name string) *Item {
	for i := range r.Items {
		if r.Items[i].Name == name {
			return &r.Items[i]
		}
	}
	return &Item{Name: name}
}

// DefaultedFrom reports whether every item from position idx onwards is
// fully defaulted. WELOPEN and WPIMULT use this to detect records that touch
// only the well and not individual connections.
func (r *Record) DefaultedFrom(idx int) bool {
	for i := idx; i < len(r.Items); i++ {
		for j := range r.Items[i].Values {
			if !r.Items[i].Values[j].Defaulted {
				return false
			}
		}
	}
	return true
}

// Keyword is one named occurrence in the deck.
type Keyword struct {
	Name     string
	Location Location
	Records  []Record
}

// Empty reports whether the occurrence carries no records.
func (k *Keyword) Empty() bool { return len(k.Records) == 0 }

// Deck is the full ordered keyword input to the engine.
type Deck struct {
	Keywords []Keyword
}

func (v *ItemValue) SerializeOp(s *serial.Serializer) {
	s.Int(&v.I)
	s.Float64(&v.F)
	s.String(&v.S)
	s.Bool(&v.Defaulted)
}

func (it *Item) SerializeOp(s *serial.Serializer) {
	s.String(&it.Name)
	kind := int(it.Kind)
	s.Int(&kind)
	it.Kind = ItemKind(kind)
	s.String(&it.Dimension)
	serial.Slice(s, &it.Values, serial.Obj[ItemValue])
}

func (r *Record) SerializeOp(s *serial.Serializer) {
	serial.Slice(s, &r.Items, serial.Obj[Item])
}

func (k *Keyword) SerializeOp(s *serial.Serializer) {
	s.String(&k.Name)
	k.Location.SerializeOp(s)
	serial.Slice(s, &k.Records, serial.Obj[Record])
}
