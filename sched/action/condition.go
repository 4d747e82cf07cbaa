// Package action evaluates trigger conditions for scheduled actions. A
// condition arrives from the deck as tokenized comparison lines; it is
// normalized into a single boolean expression and compiled once, then
// evaluated repeatedly against quantity snapshots supplied by the caller.
package action

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition is one compiled trigger expression.
type Condition struct {
	// Raw is the normalized expression text, kept for round-tripping and
	// diagnostics.
	Raw string

	program *vm.Program
}

// deck spellings for comparison and logic operators
var tokenRewrites = map[string]string{
	"=":    "==",
	".EQ.": "==",
	".NE.": "!=",
	".GT.": ">",
	".GE.": ">=",
	".LT.": "<",
	".LE.": "<=",
	"AND":  "&&",
	"OR":   "||",
}

// Normalize joins the token lines of a condition into one expression in
// compiler syntax. Each deck line is one comparison; lines combine with a
// trailing AND/OR on the line, defaulting to AND.
func Normalize(lines [][]string) string {
	var b strings.Builder
	pending := "&&"
	for _, tokens := range lines {
		var parts []string
		connective := "&&"
		for i, tok := range tokens {
			up := strings.ToUpper(strings.TrimSpace(tok))
			if rw, ok := tokenRewrites[up]; ok {
				if (up == "AND" || up == "OR") && i == len(tokens)-1 {
					connective = rw
					continue
				}
				parts = append(parts, rw)
				continue
			}
			parts = append(parts, tok)
		}
		if len(parts) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" " + pending + " ")
		}
		b.WriteString("(" + strings.Join(parts, " ") + ")")
		pending = connective
	}
	return b.String()
}

// Parse compiles the tokenized condition lines.
func Parse(lines [][]string) (*Condition, error) {
	raw := Normalize(lines)
	return Compile(raw)
}

// Compile builds a Condition from already-normalized expression text.
// Undefined variables are allowed at compile time; they resolve against
// the snapshot at evaluation time.
func Compile(raw string) (*Condition, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty action condition")
	}
	program, err := expr.Compile(raw, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile action condition %q: %w", raw, err)
	}
	return &Condition{Raw: raw, program: program}, nil
}

// Eval runs the condition against one snapshot of named quantities. The
// caller supplies every quantity the condition reads; Quantities lists
// them.
func (c *Condition) Eval(vars map[string]any) (bool, error) {
	if c.program == nil {
		p, err := expr.Compile(c.Raw, expr.AllowUndefinedVariables(), expr.AsBool())
		if err != nil {
			return false, err
		}
		c.program = p
	}
	env := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		env[k] = v
	}
	out, err := vm.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate action condition %q: %w", c.Raw, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("action condition %q is not boolean", c.Raw)
	}
	return b, nil
}

// Quantities lists the bare identifiers the condition reads, in order of
// first appearance. Callers use it to build the evaluation snapshot and to
// decide whether the condition quantifies over wells.
func (c *Condition) Quantities() []string {
	seen := make(map[string]bool)
	var out []string
	fields := strings.FieldsFunc(c.Raw, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z')
	})
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		if f[0] >= '0' && f[0] <= '9' {
			continue
		}
		switch f {
		case "true", "false", "and", "or", "not", "AND", "OR", "NOT":
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// IsWellCondition reports whether any read quantity is a well-level
// vector, i.e. starts with 'W'. Such conditions are evaluated once per
// well and the satisfying wells form the action's matching set.
func (c *Condition) IsWellCondition() bool {
	for _, q := range c.Quantities() {
		if q[0] == 'W' {
			return true
		}
	}
	return false
}
