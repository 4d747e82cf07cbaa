package sched

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// scheduleWithHandler builds a schedule whose registry carries one extra
// generic handler, for exercising the dispatch wrapper directly.
func scheduleWithHandler(name string, h KeywordHandler) *Schedule {
	reg := NewHandlerRegistry()
	reg.generic[name] = h
	return NewSchedule(testStart, ScheduleGrid{NX: 10, NY: 10, NZ: 10}, MetricUnits(), reg, NewParseContext())
}

func TestDispatch_UnsupportedKeywordIgnored(t *testing.T) {
	// GIVEN a keyword no handler claims
	s := newTestSchedule()
	guard, err := s.Process(&Deck{Keywords: []Keyword{kw("NOSUCHKW", rec(strItem("A", sv("x"))))}})
	if err != nil {
		t.Fatalf("unsupported keyword rejected: %v", err)
	}
	if len(guard.Errors()) != 0 {
		t.Errorf("unsupported keyword raised guard errors: %v", guard.Errors())
	}
}

func TestDispatch_InputErrorPassesThroughUnchanged(t *testing.T) {
	// GIVEN a handler that fails with a located input error
	want := NewInputError(Location{Keyword: "XTEST", File: "TEST.yaml", Line: 1}, "bad value %d", 3)
	s := scheduleWithHandler("XTEST", func(hc *HandlerContext) error {
		return want
	})

	_, err := s.Process(&Deck{Keywords: []Keyword{kw("XTEST")}})

	// THEN the same error object surfaces, not a re-wrapped copy
	var got *InputError
	if !errors.As(err, &got) {
		t.Fatalf("got %v, want *InputError", err)
	}
	if got != want {
		t.Errorf("input error re-wrapped: got %p, want %p", got, want)
	}
}

func TestDispatch_InternalErrorRelabelled(t *testing.T) {
	// GIVEN a handler that trips a programming invariant
	s := scheduleWithHandler("XTEST", func(hc *HandlerContext) error {
		return errInternal("boom %d", 7)
	})

	_, err := s.Process(&Deck{Keywords: []Keyword{kw("XTEST")}})

	ie, ok := AsInputError(err)
	if !ok {
		t.Fatalf("got %v, want *InputError", err)
	}
	if !strings.Contains(ie.Message, "Internal error: boom 7") {
		t.Errorf("message: got %q, want Internal error prefix", ie.Message)
	}
	if ie.Location.Keyword != "XTEST" {
		t.Errorf("location keyword: got %q, want XTEST", ie.Location.Keyword)
	}
}

func TestDispatch_PanicBecomesInputError(t *testing.T) {
	// GIVEN a handler that panics
	s := scheduleWithHandler("XTEST", func(hc *HandlerContext) error {
		panic("index out of range")
	})

	_, err := s.Process(&Deck{Keywords: []Keyword{kw("XTEST")}})

	ie, ok := AsInputError(err)
	if !ok {
		t.Fatalf("got %v, want *InputError", err)
	}
	if !strings.Contains(ie.Message, "Internal error: index out of range") {
		t.Errorf("message: got %q, want relabelled panic", ie.Message)
	}
}

func TestDispatch_InternalErrorIsLogged(t *testing.T) {
	// GIVEN the global logger instrumented with a capture hook
	hook := logtest.NewGlobal()
	defer hook.Reset()

	s := scheduleWithHandler("XTEST", func(hc *HandlerContext) error {
		return errInternal("boom %d", 7)
	})
	if _, err := s.Process(&Deck{Keywords: []Keyword{kw("XTEST")}}); err == nil {
		t.Fatal("internal error not surfaced")
	}

	// THEN the failure is logged at error level before it surfaces
	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && strings.Contains(e.Message, "boom 7") {
			logged = true
		}
	}
	if !logged {
		t.Errorf("no error-level log entry for the internal failure, got %d entries", len(hook.AllEntries()))
	}
}

func TestDispatch_PanicIsLogged(t *testing.T) {
	// GIVEN the global logger instrumented with a capture hook
	hook := logtest.NewGlobal()
	defer hook.Reset()

	s := scheduleWithHandler("XTEST", func(hc *HandlerContext) error {
		panic("index out of range")
	})
	if _, err := s.Process(&Deck{Keywords: []Keyword{kw("XTEST")}}); err == nil {
		t.Fatal("panic not surfaced as error")
	}

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && strings.Contains(e.Message, "index out of range") {
			logged = true
		}
	}
	if !logged {
		t.Errorf("no error-level log entry for the recovered panic, got %d entries", len(hook.AllEntries()))
	}
}

func TestDispatch_PlainErrorGainsLocation(t *testing.T) {
	// GIVEN a handler returning a bare error with no location
	s := scheduleWithHandler("XTEST", func(hc *HandlerContext) error {
		return errors.New("something ordinary")
	})

	_, err := s.Process(&Deck{Keywords: []Keyword{kw("XTEST")}})

	ie, ok := AsInputError(err)
	if !ok {
		t.Fatalf("got %v, want *InputError", err)
	}
	if ie.Message != "something ordinary" {
		t.Errorf("message: got %q, want the handler text verbatim", ie.Message)
	}
	if strings.Contains(ie.Message, "Internal error") {
		t.Error("plain error mislabelled as internal")
	}
	if ie.Location.Keyword != "XTEST" {
		t.Errorf("location keyword: got %q, want XTEST", ie.Location.Keyword)
	}
}

func TestRegistry_LookupOrderIsFixed(t *testing.T) {
	// GIVEN a name registered in two sub-registries
	reg := NewHandlerRegistry()
	var hit string
	reg.network["XDUP"] = func(hc *HandlerContext) error { hit = "network"; return nil }
	reg.generic["XDUP"] = func(hc *HandlerContext) error { hit = "generic"; return nil }

	s := NewSchedule(testStart, ScheduleGrid{NX: 10, NY: 10, NZ: 10}, MetricUnits(), reg, NewParseContext())
	mustProcess(t, s, kw("XDUP"))

	// THEN the network table wins
	if hit != "network" {
		t.Errorf("dispatched to %q, want network", hit)
	}
}

func TestUnpack_RestoresDispatchOnRestoredState(t *testing.T) {
	// GIVEN a packed schedule restored into a fresh engine
	s := newTestSchedule()
	mustProcess(t, s, welspecsKW("W1", "G1", 1, 1, "OIL"))
	buf, err := s.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	restored := NewSchedule(time.Time{}, ScheduleGrid{NX: 10, NY: 10, NZ: 10}, MetricUnits(), NewHandlerRegistry(), NewParseContext())
	if err := restored.Unpack(buf); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	// WHEN new keywords arrive after the restart
	mustProcess(t, restored, wconprodKW("W1", "OPEN", "ORAT", 100))

	if got := restored.Back().Well("W1").Status; got != StatusOpen {
		t.Errorf("post-restart keyword ignored: status %v, want OPEN", got)
	}
}
