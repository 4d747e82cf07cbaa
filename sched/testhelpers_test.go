package sched

import (
	"testing"
	"time"
)

// Deck construction helpers shared by the handler and schedule tests. They
// build the same Item/Record/Keyword shapes the YAML loader produces, with
// a synthetic location so error messages stay checkable.

func sv(s string) ItemValue { return ItemValue{S: s} }
func iv(i int) ItemValue { return ItemValue{I: i} }
func dv(f float64) ItemValue { return ItemValue{F: f} }
func defaulted() ItemValue { return ItemValue{Defaulted: true} }

func strItem(name string, values ...ItemValue) Item {
	return Item{Name: name, Kind: StringItem, Values: values}
}

func intItem(name string, values ...ItemValue) Item {
	return Item{Name: name, Kind: IntItem, Values: values}
}

func dblItem(name, dimension string, values ...ItemValue) Item {
	return Item{Name: name, Kind: DoubleItem, Dimension: dimension, Values: values}
}

func udaItem(name, dimension string, values ...ItemValue) Item {
	return Item{Name: name, Kind: UDAItem, Dimension: dimension, Values: values}
}

func rec(items ...Item) Record {
	return Record{Items: items}
}

func kw(name string, records ...Record) Keyword {
	return Keyword{
		Name:     name,
		Location: Location{Keyword: name, File: "TEST.yaml", Line: 1},
		Records:  records,
	}
}

func welspecsKW(well, group string, headI, headJ int, phase string) Keyword {
	return kw("WELSPECS", rec(
		strItem("WELL", sv(well)),
		strItem("GROUP", sv(group)),
		intItem("HEAD_I", iv(headI)),
		intItem("HEAD_J", iv(headJ)),
		strItem("PHASE", sv(phase)),
	))
}

func compdatKW(well string, i, j, k1, k2 int, state string, cf float64) Keyword {
	return kw("COMPDAT", rec(
		strItem("WELL", sv(well)),
		intItem("I", iv(i)),
		intItem("J", iv(j)),
		intItem("K1", iv(k1)),
		intItem("K2", iv(k2)),
		strItem("STATE", sv(state)),
		dblItem("CONNECTION_TRANSMISSIBILITY_FACTOR", "Transmissibility", dv(cf)),
	))
}

func wconprodKW(well, status, cmode string, orat float64) Keyword {
	return kw("WCONPROD", rec(
		strItem("WELL", sv(well)),
		strItem("STATUS", sv(status)),
		strItem("CMODE", sv(cmode)),
		udaItem("ORAT", "LiquidRate", dv(orat)),
	))
}

func wconinjeKW(well, injType, status, cmode string, rate float64) Keyword {
	return kw("WCONINJE", rec(
		strItem("WELL", sv(well)),
		strItem("TYPE", sv(injType)),
		strItem("STATUS", sv(status)),
		strItem("CMODE", sv(cmode)),
		udaItem("RATE", "LiquidRate", dv(rate)),
	))
}

// welopenWellKW addresses the well itself: every connection selector is
// defaulted.
func welopenWellKW(well, status string) Keyword {
	return kw("WELOPEN", rec(
		strItem("WELL", sv(well)),
		strItem("STATUS", sv(status)),
		intItem("I", defaulted()),
		intItem("J", defaulted()),
		intItem("K", defaulted()),
		intItem("C1", defaulted()),
		intItem("C2", defaulted()),
	))
}

func datesKW(day int, month string, year int) Keyword {
	return kw("DATES", rec(
		intItem("DAY", iv(day)),
		strItem("MONTH", sv(month)),
		intItem("YEAR", iv(year)),
	))
}

var testStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func newTestSchedule() *Schedule {
	return NewSchedule(testStart,
		ScheduleGrid{NX: 10, NY: 10, NZ: 10},
		MetricUnits(),
		NewHandlerRegistry(),
		NewParseContext())
}

// mustProcess runs the keywords through a fresh deck walk and fails the
// test on any fatal error.
func mustProcess(t *testing.T, s *Schedule, keywords ...Keyword) *ErrorGuard {
	t.Helper()
	guard, err := s.Process(&Deck{Keywords: keywords})
	if err != nil {
		t.Fatalf("Process: unexpected error: %v", err)
	}
	return guard
}
