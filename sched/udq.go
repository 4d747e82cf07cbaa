package sched

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/deck-sim/deck-sim/sched/serial"
)

// UDQVarType classifies a user-defined quantity by its first letter prefix.
type UDQVarType int

const (
	UDQWellVar UDQVarType = iota
	UDQGroupVar
	UDQFieldVar
	UDQSegmentVar
	UDQScalarVar
)

// UDQVarTypeFromName derives the variable type from the quantity name.
// Names follow the Uxxx convention where the second letter selects the
// category.
func UDQVarTypeFromName(name string, location Location) (UDQVarType, error) {
	if len(name) < 2 || name[0] != 'U' {
		return UDQScalarVar, NewInputError(location, "Invalid UDQ name: %s. UDQ names must start with the letter U", name)
	}
	switch name[1] {
	case 'W':
		return UDQWellVar, nil
	case 'G':
		return UDQGroupVar, nil
	case 'F':
		return UDQFieldVar, nil
	case 'S':
		return UDQSegmentVar, nil
	}
	return UDQScalarVar, nil
}

// UDQAssign is an explicit ASSIGN of a constant to a quantity, optionally
// restricted to a set of well or group name patterns.
type UDQAssign struct {
	Quantity   string
	Selector   []string
	Value      float64
	ReportStep int
}

func (a *UDQAssign) SerializeOp(s *serial.Serializer) {
	s.String(&a.Quantity)
	serial.Slice(s, &a.Selector, serial.Str)
	s.Float64(&a.Value)
	s.Int(&a.ReportStep)
}

// UDQDefine is a DEFINE expression for a quantity. The expression is
// validated at parse time with the expr compiler so malformed input is
// rejected where it occurs rather than at evaluation time.
type UDQDefine struct {
	Quantity   string
	Expression string
	ReportStep int

	program *vm.Program
}

func (d *UDQDefine) SerializeOp(s *serial.Serializer) {
	s.String(&d.Quantity)
	s.String(&d.Expression)
	s.Int(&d.ReportStep)
	if s.Unpacking() && d.Expression != "" {
		d.program, _ = expr.Compile(normalizeUDQExpression(d.Expression))
	}
}

// normalizeUDQExpression rewrites deck operator spellings to expressions
// the compiler accepts.
func normalizeUDQExpression(raw string) string {
	r := strings.NewReplacer(
		" EQ ", " == ",
		" NE ", " != ",
		" GT ", " > ",
		" GE ", " >= ",
		" LT ", " < ",
		" LE ", " <= ",
		" AND ", " && ",
		" OR ", " || ",
	)
	return r.Replace(raw)
}

func compileUDQ(raw string, location Location) (*vm.Program, error) {
	program, err := expr.Compile(normalizeUDQExpression(raw), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, NewInputError(location, "Failed to compile UDQ expression %q: %v", raw, err)
	}
	return program, nil
}

// UDQConfig holds every user-defined quantity in effect at a report step.
// Order of definition is preserved so re-evaluation is deterministic.
type UDQConfig struct {
	order   []string
	assigns map[string]*UDQAssign
	defines map[string]*UDQDefine
	units   map[string]string
}

func NewUDQConfig() *UDQConfig {
	return &UDQConfig{
		assigns: make(map[string]*UDQAssign),
		defines: make(map[string]*UDQDefine),
		units:   make(map[string]string),
	}
}

// Clone is a deep copy. UDQ keywords are rare so the copy cost is paid
// only on steps that actually modify the configuration.
func (c *UDQConfig) Clone() *UDQConfig {
	n := NewUDQConfig()
	n.order = append([]string(nil), c.order...)
	for k, v := range c.assigns {
		cp := *v
		n.assigns[k] = &cp
	}
	for k, v := range c.defines {
		cp := *v
		n.defines[k] = &cp
	}
	for k, v := range c.units {
		n.units[k] = v
	}
	return n
}

func (c *UDQConfig) Has(quantity string) bool {
	_, a := c.assigns[quantity]
	_, d := c.defines[quantity]
	return a || d
}

func (c *UDQConfig) Size() int { return len(c.order) }

func (c *UDQConfig) note(quantity string) {
	if _, ok := c.assigns[quantity]; ok {
		return
	}
	if _, ok := c.defines[quantity]; ok {
		return
	}
	c.order = append(c.order, quantity)
}

// AddAssign records an ASSIGN, replacing any DEFINE of the same quantity.
func (c *UDQConfig) AddAssign(quantity string, selector []string, value float64, reportStep int) {
	c.note(quantity)
	delete(c.defines, quantity)
	c.assigns[quantity] = &UDQAssign{
		Quantity:   quantity,
		Selector:   append([]string(nil), selector...),
		Value:      value,
		ReportStep: reportStep,
	}
}

// AddDefine records a DEFINE, replacing any ASSIGN of the same quantity.
// The expression must compile.
func (c *UDQConfig) AddDefine(quantity, expression string, reportStep int, location Location) error {
	program, err := compileUDQ(expression, location)
	if err != nil {
		return err
	}
	c.note(quantity)
	delete(c.assigns, quantity)
	c.defines[quantity] = &UDQDefine{
		Quantity:   quantity,
		Expression: expression,
		ReportStep: reportStep,
		program:    program,
	}
	return nil
}

// AddUnits records the UNITS declaration for a quantity.
func (c *UDQConfig) AddUnits(quantity, unit string) {
	c.units[quantity] = unit
}

func (c *UDQConfig) Unit(quantity string) (string, bool) {
	u, ok := c.units[quantity]
	return u, ok
}

func (c *UDQConfig) Assign(quantity string) (*UDQAssign, bool) {
	a, ok := c.assigns[quantity]
	return a, ok
}

func (c *UDQConfig) Define(quantity string) (*UDQDefine, bool) {
	d, ok := c.defines[quantity]
	return d, ok
}

func (c *UDQConfig) SerializeOp(s *serial.Serializer) {
	serial.Slice(s, &c.order, serial.Str)
	serial.Map(s, &c.assigns, serial.Str, serial.Ref(serial.Obj[UDQAssign]))
	serial.Map(s, &c.defines, serial.Str, serial.Ref(serial.Obj[UDQDefine]))
	serial.Map(s, &c.units, serial.Str, serial.Str)
}

// UDQActive tracks which well and group targets are currently bound to a
// UDQ rather than a constant. An injection or production control set to a
// UDA with a UDQ reference registers here.
type UDQActive struct {
	records map[string]udqActiveRecord
}

type udqActiveRecord struct {
	Quantity string
	Keyword  string
	Control  string
}

func NewUDQActive() *UDQActive {
	return &UDQActive{records: make(map[string]udqActiveRecord)}
}

func (u *UDQActive) Clone() *UDQActive {
	n := NewUDQActive()
	for k, v := range u.records {
		n.records[k] = v
	}
	return n
}

func activeKey(wgName, keyword, control string) string {
	return wgName + ":" + keyword + ":" + control
}

// Update binds or unbinds a well or group control to a UDQ. Setting a
// control to a plain scalar removes any existing binding. Returns true if
// the registry changed.
func (u *UDQActive) Update(value UDAValue, wgName, keyword, control string) bool {
	key := activeKey(wgName, keyword, control)
	if !value.IsNumeric() {
		rec := udqActiveRecord{Quantity: value.UDQName(), Keyword: keyword, Control: control}
		if existing, ok := u.records[key]; ok && existing == rec {
			return false
		}
		u.records[key] = rec
		return true
	}
	if _, ok := u.records[key]; ok {
		delete(u.records, key)
		return true
	}
	return false
}

func (u *UDQActive) Size() int { return len(u.records) }

func (u *UDQActive) SerializeOp(s *serial.Serializer) {
	serial.Map(s, &u.records, serial.Str, func(s *serial.Serializer, v *udqActiveRecord) {
		s.String(&v.Quantity)
		s.String(&v.Keyword)
		s.String(&v.Control)
	})
}
