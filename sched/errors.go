package sched

import (
	"errors"
	"fmt"

	"github.com/deck-sim/deck-sim/sched/serial"
)

// Location identifies where in the deck a keyword occurrence came from.
// Every user-facing error carries one so the message is actionable.
type Location struct {
	Keyword string
	File    string
	Line    int
}

func (l Location) String() string {
	return fmt.Sprintf("%s in %s line %d", l.Keyword, l.File, l.Line)
}

func (l *Location) SerializeOp(s *serial.Serializer) {
	s.String(&l.Keyword)
	s.String(&l.File)
	s.Int(&l.Line)
}

// InputError is malformed or semantically illegal deck content: an unknown
// well in WELOPEN, an undefined VFP table, an out-of-range weighting factor.
// It is the single user-facing error type of the engine; the dispatch wrapper
// guarantees every error leaving a handler is one.
type InputError struct {
	Message  string
	Location Location
	wrapped  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s\nProblem with keyword %s", e.Message, e.Location)
}

func (e *InputError) Unwrap() error { return e.wrapped }

// NewInputError builds a located input error.
func NewInputError(location Location, format string, args ...any) *InputError {
	return &InputError{
		Message:  fmt.Sprintf(format, args...),
		Location: location,
	}
}

// internalError marks a violated programming invariant, e.g. a missing PI
// target for a well that must have one. The dispatch wrapper re-labels these
// with an "Internal error:" prefix before surfacing them, since they still
// need a deck location to be actionable.
type internalError struct {
	message string
}

func (e *internalError) Error() string { return e.message }

// errInternal builds an internal logic error.
func errInternal(format string, args ...any) error {
	return &internalError{message: fmt.Sprintf(format, args...)}
}

// AsInputError unwraps err to the typed input error, if it is one.
func AsInputError(err error) (*InputError, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

func isInternal(err error) bool {
	var le *internalError
	return errors.As(err, &le)
}
