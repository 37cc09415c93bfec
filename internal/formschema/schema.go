// Package formschema turns a form designer document (pages, panels,
// columns, tabs and input components) plus a Keyword translation table into
// render metadata and a validator.
//
// Parsing is lenient: unexpected shapes degrade to empty values instead of
// errors, because the documents are authored by hand in a designer tool and
// a single bad attribute must not take the whole form down.
package formschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const DisplayWizard = "wizard"

type Schema struct {
	Display    string
	Title      string
	Components []Component
}

type Component struct {
	Type         string
	Key          string
	Label        string
	Title        string
	Placeholder  string
	Format       string
	Input        bool
	Multiple     bool
	Disabled     bool
	Hidden       bool
	DefaultValue interface{}
	Validate     Validation
	Options      []Option
	Components   []Component
	Columns      [][]Component
}

// Validation mirrors the designer's "validate" block.
type Validation struct {
	Required         Flag   `json:"required"`
	MinLength        Limit  `json:"minLength"`
	MaxLength        Limit  `json:"maxLength"`
	Min              Limit  `json:"min"`
	Max              Limit  `json:"max"`
	MinSelectedCount Limit  `json:"minSelectedCount"`
	MaxSelectedCount Limit  `json:"maxSelectedCount"`
	Pattern          string `json:"pattern"`
	CustomMessage    string `json:"customMessage"`
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Flag decodes booleans that designers sometimes write as strings or 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseBool(s)
	*f = Flag(err == nil && v)
	return nil
}

// Limit is an optional number; "", null and garbage leave it unset.
type Limit struct {
	Set   bool
	Value float64
}

func (l *Limit) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	*l = Limit{Set: err == nil, Value: v}
	return nil
}

func (l Limit) Int() int { return int(l.Value) }

// Positive reports a set, non-zero limit; designers write 0 for "no maximum".
func (l Limit) Positive() bool { return l.Set && l.Value > 0 }

func (l Limit) String() string { return strconv.FormatFloat(l.Value, 'f', -1, 64) }

func (o *Option) UnmarshalJSON(b []byte) error {
	var raw struct {
		Label interface{} `json:"label"`
		Value interface{} `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	o.Label = scalarString(raw.Label)
	o.Value = scalarString(raw.Value)
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

type rawCell struct {
	Components []json.RawMessage `json:"components"`
}

type rawComponent struct {
	Type         string            `json:"type"`
	Key          string            `json:"key"`
	Label        string            `json:"label"`
	Title        string            `json:"title"`
	Placeholder  string            `json:"placeholder"`
	Format       string            `json:"format"`
	Input        Flag              `json:"input"`
	Multiple     Flag              `json:"multiple"`
	Disabled     Flag              `json:"disabled"`
	Hidden       Flag              `json:"hidden"`
	DefaultValue interface{}       `json:"defaultValue"`
	Validate     json.RawMessage   `json:"validate"`
	Values       json.RawMessage   `json:"values"`
	Data         json.RawMessage   `json:"data"`
	Components   []json.RawMessage `json:"components"`
	Columns      []json.RawMessage `json:"columns"`
	Rows         []json.RawMessage `json:"rows"`
}

// Parse accepts a designer object, the same object encoded as a JSON string,
// or a bare component array. Empty input yields an empty schema.
func Parse(raw []byte) (*Schema, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return &Schema{}, nil
	}
	switch raw[0] {
	case '"':
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("form designer string: %w", err)
		}
		if strings.HasPrefix(strings.TrimSpace(inner), `"`) {
			return nil, fmt.Errorf("form designer is encoded more than twice")
		}
		return Parse([]byte(inner))
	case '[':
		var comps []json.RawMessage
		if err := json.Unmarshal(raw, &comps); err != nil {
			return nil, fmt.Errorf("form designer components: %w", err)
		}
		return &Schema{Components: parseComponents(comps)}, nil
	case '{':
		var doc struct {
			Display    interface{}       `json:"display"`
			Title      interface{}       `json:"title"`
			Components []json.RawMessage `json:"components"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("form designer: %w", err)
		}
		return &Schema{
			Display:    scalarString(doc.Display),
			Title:      scalarString(doc.Title),
			Components: parseComponents(doc.Components),
		}, nil
	default:
		return nil, fmt.Errorf("form designer: unexpected %q", raw[0])
	}
}

func parseComponents(raws []json.RawMessage) []Component {
	out := make([]Component, 0, len(raws))
	for _, r := range raws {
		if c, ok := parseComponent(r); ok {
			out = append(out, c)
		}
	}
	return out
}

func parseComponent(r json.RawMessage) (Component, bool) {
	var rc rawComponent
	if err := json.Unmarshal(r, &rc); err != nil {
		return Component{}, false
	}
	c := Component{
		Type:         strings.TrimSpace(rc.Type),
		Key:          strings.TrimSpace(rc.Key),
		Label:        rc.Label,
		Title:        rc.Title,
		Placeholder:  rc.Placeholder,
		Format:       rc.Format,
		Input:        bool(rc.Input),
		Multiple:     bool(rc.Multiple),
		Disabled:     bool(rc.Disabled),
		Hidden:       bool(rc.Hidden),
		DefaultValue: rc.DefaultValue,
		Components:   parseComponents(rc.Components),
	}
	if len(rc.Validate) > 0 {
		// a malformed validate block leaves the zero Validation
		json.Unmarshal(rc.Validate, &c.Validate)
	}
	c.Options = parseOptions(rc.Values)
	if len(c.Options) == 0 && len(rc.Data) > 0 {
		var data struct {
			Values json.RawMessage `json:"values"`
		}
		if json.Unmarshal(rc.Data, &data) == nil {
			c.Options = parseOptions(data.Values)
		}
	}
	for _, col := range rc.Columns {
		var cell rawCell
		if json.Unmarshal(col, &cell) == nil {
			c.Columns = append(c.Columns, parseComponents(cell.Components))
		}
	}
	for _, row := range rc.Rows {
		var cells []rawCell
		if json.Unmarshal(row, &cells) != nil {
			continue
		}
		for _, cell := range cells {
			c.Columns = append(c.Columns, parseComponents(cell.Components))
		}
	}
	return c, true
}

func parseOptions(raw json.RawMessage) []Option {
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var opts []Option
	if json.Unmarshal(raw, &opts) != nil {
		return nil
	}
	out := opts[:0]
	for _, o := range opts {
		if o.Value != "" {
			out = append(out, o)
		}
	}
	return out
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Page is one wizard step, or the whole form for non-wizard displays.
type Page struct {
	Key        string
	Title      string
	Components []Component
}

// Pages splits the schema into wizard pages. In wizard display every
// top-level panel is a page and loose inputs are gathered into a trailing
// page; any other display is a single page.
func (s *Schema) Pages() []Page {
	if s == nil {
		return nil
	}
	if s.Display != DisplayWizard {
		return []Page{{Key: "page1", Title: s.Title, Components: s.Components}}
	}
	var pages []Page
	var loose []Component
	for _, c := range s.Components {
		if c.Type == "panel" {
			key := c.Key
			if key == "" {
				key = fmt.Sprintf("page%d", len(pages)+1)
			}
			title := c.Title
			if title == "" {
				title = c.Label
			}
			pages = append(pages, Page{Key: key, Title: title, Components: c.Components})
			continue
		}
		if c.Type != "button" {
			loose = append(loose, c)
		}
	}
	if len(loose) > 0 {
		pages = append(pages, Page{Key: fmt.Sprintf("page%d", len(pages)+1), Components: loose})
	}
	return pages
}
