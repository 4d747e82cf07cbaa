package sched

import (
	"github.com/sirupsen/logrus"
)

// KeywordHandler applies one keyword occurrence to the schedule state.
type KeywordHandler func(*HandlerContext) error

// HandlerRegistry maps keyword names to their handlers. It is built once
// and passed to every Schedule; handlers never reach for shared mutable
// tables. The sub-registries are consulted in a fixed order so a keyword
// registered in more than one place resolves deterministically.
type HandlerRegistry struct {
	network map[string]KeywordHandler
	group   map[string]KeywordHandler
	udq     map[string]KeywordHandler
	generic map[string]KeywordHandler
}

// NewHandlerRegistry builds the full keyword dispatch table.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		network: networkHandlers(),
		group:   groupHandlers(),
		udq:     udqHandlers(),
		generic: genericHandlers(),
	}
}

func (r *HandlerRegistry) lookup(name string) (KeywordHandler, bool) {
	for _, m := range []map[string]KeywordHandler{r.network, r.group, r.udq, r.generic} {
		if h, ok := m[name]; ok {
			return h, true
		}
	}
	return nil, false
}

// Supported reports whether the keyword has a handler.
func (r *HandlerRegistry) Supported(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Handle dispatches one keyword occurrence. Every error leaving here is an
// *InputError carrying the keyword's deck location: handler input errors
// pass through, violated invariants and panics are re-labelled as internal
// errors, since the user still needs to know which keyword tripped them.
func (r *HandlerRegistry) Handle(hc *HandlerContext) (err error) {
	handler, ok := r.lookup(hc.keyword.Name)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"keyword":  hc.keyword.Name,
			"location": hc.Location().String(),
		}).Debug("ignoring unsupported keyword")
		return nil
	}

	defer func() {
		if p := recover(); p != nil {
			logrus.WithFields(logrus.Fields{
				"keyword":  hc.keyword.Name,
				"location": hc.Location().String(),
			}).Errorf("internal error: %v", p)
			err = NewInputError(hc.Location(), "Internal error: %v", p)
		}
	}()

	if err := handler(hc); err != nil {
		if _, ok := AsInputError(err); ok {
			return err
		}
		if isInternal(err) {
			logrus.WithFields(logrus.Fields{
				"keyword":  hc.keyword.Name,
				"location": hc.Location().String(),
			}).Errorf("internal error: %s", err)
			return NewInputError(hc.Location(), "Internal error: %s", err.Error())
		}
		return NewInputError(hc.Location(), "%s", err.Error())
	}
	return nil
}

// requireRecords fails the keyword unless it carries at least n records.
func requireRecords(hc *HandlerContext, n int) error {
	if len(hc.keyword.Records) < n {
		return NewInputError(hc.Location(), "Keyword %s requires at least %d record(s)", hc.keyword.Name, n)
	}
	return nil
}
