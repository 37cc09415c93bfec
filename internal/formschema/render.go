package formschema

import (
	"strings"
)

type RenderMode string

const (
	RenderView RenderMode = "view"
	RenderEdit RenderMode = "edit"
)

// ParseRenderMode defaults to edit for anything but "view".
func ParseRenderMode(s string) RenderMode {
	if strings.EqualFold(strings.TrimSpace(s), string(RenderView)) {
		return RenderView
	}
	return RenderEdit
}

type RenderedOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type RenderedField struct {
	Key          string           `json:"key"`
	Type         string           `json:"type"`
	Label        string           `json:"label"`
	Placeholder  string           `json:"placeholder,omitempty"`
	Required     bool             `json:"required"`
	ReadOnly     bool             `json:"readOnly"`
	Multiple     bool             `json:"multiple,omitempty"`
	Value        interface{}      `json:"value,omitempty"`
	DisplayValue string           `json:"displayValue,omitempty"`
	Options      []RenderedOption `json:"options,omitempty"`
	Children     []RenderedField  `json:"children,omitempty"`
}

type RenderedPage struct {
	Key    string          `json:"key"`
	Title  string          `json:"title"`
	Fields []RenderedField `json:"fields"`
}

type RenderedForm struct {
	Title string         `json:"title"`
	Mode  RenderMode     `json:"mode"`
	Lang  string         `json:"lang"`
	Pages []RenderedPage `json:"pages"`
}

// Render builds the localized field list for every page. In view mode every
// field is read-only and option values are replaced by their labels.
func Render(s *Schema, tr Translations, lang string, mode RenderMode, values map[string]interface{}) RenderedForm {
	form := RenderedForm{Mode: mode, Lang: lang, Pages: []RenderedPage{}}
	if s == nil {
		return form
	}
	form.Title = tr.Label(s.Title, lang)
	r := renderer{tr: tr, lang: lang, mode: mode}
	for _, p := range s.Pages() {
		form.Pages = append(form.Pages, RenderedPage{
			Key:    p.Key,
			Title:  tr.Label(p.Title, lang),
			Fields: r.fields(p.Components, values),
		})
	}
	return form
}

type renderer struct {
	tr   Translations
	lang string
	mode RenderMode
}

func (r renderer) fields(comps []Component, values map[string]interface{}) []RenderedField {
	out := []RenderedField{}
	for _, c := range VisibleFields(comps) {
		if typeKinds[c.Type] == kindSkip {
			continue
		}
		out = append(out, r.field(c, values[c.Key]))
	}
	return out
}

func (r renderer) field(c Component, val interface{}) RenderedField {
	if val == nil && r.mode == RenderEdit {
		val = c.DefaultValue
	}
	f := RenderedField{
		Key:         c.Key,
		Type:        c.Type,
		Label:       r.tr.FieldLabel(c, r.lang),
		Placeholder: r.tr.Label(c.Placeholder, r.lang),
		Required:    bool(c.Validate.Required),
		ReadOnly:    r.mode == RenderView || c.Disabled,
		Multiple:    c.Multiple,
		Value:       val,
	}
	selected := selectedSet(c, val)
	for _, o := range c.Options {
		f.Options = append(f.Options, RenderedOption{
			Value:    o.Value,
			Label:    r.tr.Label(o.Label, r.lang),
			Selected: selected[o.Value],
		})
	}
	switch typeKinds[c.Type] {
	case kindGrid:
		rows, _ := val.([]interface{})
		for _, row := range rows {
			m, _ := row.(map[string]interface{})
			f.Children = append(f.Children, RenderedField{
				Key:      c.Key,
				Type:     "row",
				ReadOnly: f.ReadOnly,
				Children: r.fields(c.Components, m),
			})
		}
	case kindContainer:
		m, _ := val.(map[string]interface{})
		f.Children = r.fields(c.Components, m)
	}
	if r.mode == RenderView {
		f.DisplayValue = r.display(c, val, f.Options)
	}
	return f
}

func (r renderer) display(c Component, val interface{}, opts []RenderedOption) string {
	if len(opts) > 0 {
		var labels []string
		for _, o := range opts {
			if o.Selected {
				labels = append(labels, o.Label)
			}
		}
		return strings.Join(labels, ", ")
	}
	switch typeKinds[c.Type] {
	case kindBool:
		if b, ok := toBool(val); ok {
			if b {
				return r.tr.Label("yes", r.lang)
			}
			return r.tr.Label("no", r.lang)
		}
		return ""
	case kindFile:
		return fileNames(val)
	}
	return scalarString(val)
}

func selectedSet(c Component, val interface{}) map[string]bool {
	out := map[string]bool{}
	if m, ok := val.(map[string]interface{}); ok && typeKinds[c.Type] == kindSelectBoxes {
		for k, x := range m {
			if b, ok := toBool(x); ok && b {
				out[k] = true
			}
		}
		return out
	}
	for _, s := range toStrings(val) {
		out[s] = true
	}
	return out
}

func fileNames(val interface{}) string {
	var files []interface{}
	switch t := val.(type) {
	case []interface{}:
		files = t
	case map[string]interface{}:
		files = []interface{}{t}
	}
	var names []string
	for _, f := range files {
		m, _ := f.(map[string]interface{})
		for _, k := range []string{"originalName", "name", "fileName"} {
			if s := scalarString(m[k]); s != "" {
				names = append(names, s)
				break
			}
		}
	}
	return strings.Join(names, ", ")
}

// Collect keeps only the values the schema declares. Grid rows and
// container objects are filtered against their child components.
func Collect(s *Schema, values map[string]interface{}) map[string]interface{} {
	if s == nil {
		return map[string]interface{}{}
	}
	return collect(s.Components, values)
}

func collect(comps []Component, values map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for _, c := range Fields(comps) {
		v, ok := values[c.Key]
		if !ok {
			continue
		}
		switch typeKinds[c.Type] {
		case kindGrid:
			rows, isList := v.([]interface{})
			if !isList || len(c.Components) == 0 {
				out[c.Key] = v
				continue
			}
			kept := make([]interface{}, 0, len(rows))
			for _, row := range rows {
				m, _ := row.(map[string]interface{})
				kept = append(kept, collect(c.Components, m))
			}
			out[c.Key] = kept
		case kindContainer:
			m, isMap := v.(map[string]interface{})
			if !isMap || len(c.Components) == 0 {
				out[c.Key] = v
				continue
			}
			out[c.Key] = collect(c.Components, m)
		default:
			out[c.Key] = v
		}
	}
	return out
}
