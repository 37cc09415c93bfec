package formschema

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Translation struct {
	Keyword string `json:"Keyword"`
	Arabic  string `json:"Arabic"`
	English string `json:"English"`
}

// Translations is the flat Keyword table shipped next to a form designer.
type Translations struct {
	exact map[string]Translation
	fold  map[string]Translation
}

// ParseTranslations never fails: anything but an array of entries (an
// object, a string, null, broken JSON) gives an empty table, and entries
// that do not decode are skipped.
func ParseTranslations(raw []byte) Translations {
	t := Translations{exact: map[string]Translation{}, fold: map[string]Translation{}}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if json.Unmarshal(raw, &inner) == nil {
			raw = bytes.TrimSpace([]byte(inner))
		}
	}
	if len(raw) == 0 || raw[0] != '[' {
		return t
	}
	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) != nil {
		return t
	}
	for _, e := range entries {
		var tr Translation
		if json.Unmarshal(e, &tr) != nil || tr.Keyword == "" {
			continue
		}
		t.Add(tr)
	}
	return t
}

func NewTranslations(entries ...Translation) Translations {
	t := Translations{exact: map[string]Translation{}, fold: map[string]Translation{}}
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

func (t *Translations) Add(tr Translation) {
	if t.exact == nil {
		t.exact = map[string]Translation{}
		t.fold = map[string]Translation{}
	}
	t.exact[tr.Keyword] = tr
	t.fold[strings.ToLower(strings.TrimSpace(tr.Keyword))] = tr
}

func (t Translations) Len() int { return len(t.exact) }

// Lookup returns the text for keyword in lang, falling back to the other
// language when the preferred one is blank.
func (t Translations) Lookup(keyword, lang string) (string, bool) {
	if keyword == "" {
		return "", false
	}
	tr, ok := t.exact[keyword]
	if !ok {
		tr, ok = t.fold[strings.ToLower(strings.TrimSpace(keyword))]
	}
	if !ok {
		return "", false
	}
	primary, secondary := tr.Arabic, tr.English
	if isEnglish(lang) {
		primary, secondary = tr.English, tr.Arabic
	}
	if primary != "" {
		return primary, true
	}
	if secondary != "" {
		return secondary, true
	}
	return "", false
}

// Label translates keyword, or returns it untouched.
func (t Translations) Label(keyword, lang string) string {
	if s, ok := t.Lookup(keyword, lang); ok {
		return s
	}
	return keyword
}

// FieldLabel is the display label of a component: its translated label,
// then its translated key, then the raw label or key.
func (t Translations) FieldLabel(c Component, lang string) string {
	if s, ok := t.Lookup(c.Label, lang); ok {
		return s
	}
	if s, ok := t.Lookup(c.Key, lang); ok {
		return s
	}
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

func isEnglish(lang string) bool { return strings.HasPrefix(strings.ToLower(lang), "en") }
