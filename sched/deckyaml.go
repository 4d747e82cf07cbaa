package sched

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// The YAML deck format is the hand-off point from the external lexer: a
// header (start date, unit system, grid dimensions) followed by the
// keyword/record/item stream. It is a faithful transcription of deck
// content, not a friendlier re-design of it.

// DeckHeader carries the run-level facts a schedule needs besides the
// keyword stream.
type DeckHeader struct {
	Start time.Time
	Units UnitSystem
	Grid  ScheduleGrid
}

type yamlDeck struct {
	Start    string        `yaml:"start"` // RFC 3339 or 2006-01-02
	Units    string        `yaml:"units"` // METRIC or FIELD
	Grid     yamlGrid      `yaml:"grid"`
	Keywords []yamlKeyword `yaml:"keywords"`
}

type yamlGrid struct {
	NX int `yaml:"nx"`
	NY int `yaml:"ny"`
	NZ int `yaml:"nz"`
}

type yamlKeyword struct {
	Name    string       `yaml:"name"`
	File    string       `yaml:"file,omitempty"`
	Line    int          `yaml:"line,omitempty"`
	Records []yamlRecord `yaml:"records,omitempty"`
}

type yamlRecord struct {
	Items []yamlItem `yaml:"items,omitempty"`
}

type yamlItem struct {
	Name      string      `yaml:"name"`
	Kind      string      `yaml:"kind"` // int, double, string, uda
	Dimension string      `yaml:"dimension,omitempty"`
	Values    []yamlValue `yaml:"values,omitempty"`
}

type yamlValue struct {
	Int     *int     `yaml:"int,omitempty"`
	Double  *float64 `yaml:"double,omitempty"`
	String  *string  `yaml:"string,omitempty"`
	Default bool     `yaml:"default,omitempty"`
}

var itemKinds = map[string]ItemKind{
	"int":    IntItem,
	"double": DoubleItem,
	"string": StringItem,
	"uda":    UDAItem,
}

// LoadDeckFile reads a YAML deck from path.
func LoadDeckFile(path string) (*Deck, DeckHeader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, DeckHeader{}, fmt.Errorf("read deck file: %w", err)
	}
	return LoadDeck(raw, path)
}

// LoadDeck parses a YAML deck. source names the origin for keyword
// locations when the stream does not carry its own file attribution.
func LoadDeck(raw []byte, source string) (*Deck, DeckHeader, error) {
	var yd yamlDeck
	if err := yaml.Unmarshal(raw, &yd); err != nil {
		return nil, DeckHeader{}, fmt.Errorf("parse deck yaml: %w", err)
	}

	header := DeckHeader{
		Units: unitSystemByName(yd.Units),
		Grid:  ScheduleGrid{NX: yd.Grid.NX, NY: yd.Grid.NY, NZ: yd.Grid.NZ},
	}
	if yd.Start != "" {
		start, err := parseStartDate(yd.Start)
		if err != nil {
			return nil, DeckHeader{}, err
		}
		header.Start = start
	}

	deck := &Deck{Keywords: make([]Keyword, 0, len(yd.Keywords))}
	for i := range yd.Keywords {
		kw, err := convertKeyword(&yd.Keywords[i], source)
		if err != nil {
			return nil, DeckHeader{}, err
		}
		deck.Keywords = append(deck.Keywords, kw)
	}
	return deck, header, nil
}

func parseStartDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start date %q, want RFC 3339 or YYYY-MM-DD", s)
}

func convertKeyword(yk *yamlKeyword, source string) (Keyword, error) {
	if yk.Name == "" {
		return Keyword{}, fmt.Errorf("deck keyword without a name")
	}
	file := yk.File
	if file == "" {
		file = source
	}
	kw := Keyword{
		Name:     yk.Name,
		Location: Location{Keyword: yk.Name, File: file, Line: yk.Line},
		Records:  make([]Record, 0, len(yk.Records)),
	}
	for r := range yk.Records {
		record := Record{Items: make([]Item, 0, len(yk.Records[r].Items))}
		for _, yi := range yk.Records[r].Items {
			item, err := convertItem(&yi, yk.Name)
			if err != nil {
				return Keyword{}, err
			}
			record.Items = append(record.Items, item)
		}
		kw.Records = append(kw.Records, record)
	}
	return kw, nil
}

func convertItem(yi *yamlItem, keyword string) (Item, error) {
	kind, ok := itemKinds[yi.Kind]
	if !ok {
		return Item{}, fmt.Errorf("keyword %s item %s: unknown kind %q", keyword, yi.Name, yi.Kind)
	}
	item := Item{
		Name:      yi.Name,
		Kind:      kind,
		Dimension: yi.Dimension,
		Values:    make([]ItemValue, 0, len(yi.Values)),
	}
	for _, yv := range yi.Values {
		v := ItemValue{Defaulted: yv.Default}
		if yv.Int != nil {
			v.I = *yv.Int
		}
		if yv.Double != nil {
			v.F = *yv.Double
		}
		if yv.String != nil {
			v.S = *yv.String
		}
		item.Values = append(item.Values, v)
	}
	return item, nil
}
