package sched

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorPolicy decides how one category of recoverable input problem is
// treated during deck processing.
type ErrorPolicy int

const (
	// PolicyError turns the problem into a fatal InputError.
	PolicyError ErrorPolicy = iota
	// PolicyWarn logs the problem and continues.
	PolicyWarn
	// PolicyIgnore silently continues.
	PolicyIgnore
)

// Recoverable problem categories. Each can be downgraded independently.
const (
	ParseInvalidName     = "SCHEDULE_INVALID_NAME"
	ParseWGNameSpace     = "PARSE_WGNAME_SPACE"
	ParseWellInFieldGrp  = "SCHEDULE_WELL_IN_FIELD_GROUP"
	ParseUnsupportedTerm = "UNSUPPORTED_TERMINATE_IF_BHP"
)

// ParseContext holds the per-category downgrade policy for recoverable
// input problems. The zero policy for an unregistered category is
// PolicyError, the strict default.
type ParseContext struct {
	policies map[string]ErrorPolicy
}

// NewParseContext returns a ParseContext with the engine defaults:
// cosmetic name problems warn, everything else errors.
func NewParseContext() *ParseContext {
	return &ParseContext{policies: map[string]ErrorPolicy{
		ParseInvalidName:    PolicyError,
		ParseWGNameSpace:    PolicyWarn,
		ParseWellInFieldGrp: PolicyWarn,
	}}
}

// Update overrides the policy for one category.
func (pc *ParseContext) Update(category string, policy ErrorPolicy) {
	pc.policies[category] = policy
}

func (pc *ParseContext) policy(category string) ErrorPolicy {
	if p, ok := pc.policies[category]; ok {
		return p
	}
	return PolicyError
}

// HandleError applies the configured policy to one recoverable problem.
// PolicyError returns a located InputError for the caller to propagate;
// the other policies record into the guard and return nil, which is what
// makes batched validation possible.
func (pc *ParseContext) HandleError(category string, message string, location Location, guard *ErrorGuard) error {
	switch pc.policy(category) {
	case PolicyIgnore:
		return nil
	case PolicyWarn:
		guard.AddWarning(category, fmt.Sprintf("%s\nIn %s line %d", message, location.File, location.Line))
		return nil
	default:
		guard.AddError(category, message, location)
		return NewInputError(location, "%s", message)
	}
}

// ErrorGuard accumulates the warnings and errors seen while a deck section
// is processed, so several problems can be reported in one pass instead of
// aborting at the first.
type ErrorGuard struct {
	warnings []string
	errors   []*InputError
}

// NewErrorGuard returns an empty guard.
func NewErrorGuard() *ErrorGuard {
	return &ErrorGuard{}
}

// AddWarning records and logs a downgraded problem.
func (g *ErrorGuard) AddWarning(category, message string) {
	g.warnings = append(g.warnings, message)
	logrus.WithField("category", category).Warn(message)
}

// AddError records a fatal problem.
func (g *ErrorGuard) AddError(category, message string, location Location) {
	logrus.WithField("category", category).Error(message)
	g.errors = append(g.errors, NewInputError(location, "%s", message))
}

// Warnings returns the recorded warnings in order.
func (g *ErrorGuard) Warnings() []string { return g.warnings }

// Errors returns the recorded fatal problems in order.
func (g *ErrorGuard) Errors() []*InputError { return g.errors }
