package formschema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Mode selects which rules apply. Drafts skip presence rules so a citizen
// can save a half-filled form; format rules still apply to what was typed.
type Mode int

const (
	ModeSubmit Mode = iota
	ModeDraft
)

type kind int

const (
	kindText kind = iota
	kindEmail
	kindURL
	kindNumber
	kindBool
	kindChoice
	kindSelectBoxes
	kindFile
	kindDate
	kindGrid
	kindContainer
	kindSkip
)

var typeKinds = map[string]kind{
	"textfield":   kindText,
	"textarea":    kindText,
	"password":    kindText,
	"phoneNumber": kindText,
	"tags":        kindText,
	"email":       kindEmail,
	"url":         kindURL,
	"number":      kindNumber,
	"currency":    kindNumber,
	"checkbox":    kindBool,
	"select":      kindChoice,
	"radio":       kindChoice,
	"selectboxes": kindSelectBoxes,
	"file":        kindFile,
	"datetime":    kindDate,
	"day":         kindDate,
	"date":        kindDate,
	"datagrid":    kindGrid,
	"editgrid":    kindGrid,
	"container":   kindContainer,
	"hidden":      kindSkip,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Rule names, also used as translation keywords for the messages.
const (
	RuleRequired      = "required"
	RuleEmail         = "invalid_email"
	RuleURL           = "invalid_url"
	RuleMinLength     = "min_length"
	RuleMaxLength     = "max_length"
	RuleMinValue      = "min_value"
	RuleMaxValue      = "max_value"
	RulePattern       = "invalid_pattern"
	RuleDate          = "invalid_date"
	RuleMinSelected   = "min_selected"
	RuleMaxSelected   = "max_selected"
	RuleNumber        = "invalid_number"
	RuleOption        = "invalid_option"
	RuleInvalidFormat = "invalid_value"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// ByField keeps the first message per field.
func (e FieldErrors) ByField() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

type fieldRule struct {
	comp     Component
	kind     kind
	label    string
	pattern  *regexp.Regexp
	options  map[string]bool
	children []fieldRule
}

type Validator struct {
	fields []fieldRule
	tr     Translations
	lang   string
	v      *validator.Validate
}

// BuildValidator derives a validator from the schema. A nil schema gives a
// validator that accepts everything.
func BuildValidator(s *Schema, tr Translations, lang string) *Validator {
	var comps []Component
	if s != nil {
		comps = s.Components
	}
	return &Validator{
		fields: buildRules(comps, tr, lang),
		tr:     tr,
		lang:   lang,
		v:      validator.New(),
	}
}

func buildRules(comps []Component, tr Translations, lang string) []fieldRule {
	var rules []fieldRule
	for _, c := range VisibleFields(comps) {
		k, ok := typeKinds[c.Type]
		if !ok {
			k = kindText
		}
		if k == kindSkip {
			continue
		}
		r := fieldRule{comp: c, kind: k, label: tr.FieldLabel(c, lang)}
		if p := strings.TrimSpace(c.Validate.Pattern); p != "" {
			// designer patterns are JS regexes; ones RE2 cannot compile are dropped
			if re, err := regexp.Compile("^(?:" + p + ")$"); err == nil {
				r.pattern = re
			}
		}
		if len(c.Options) > 0 && k == kindChoice {
			r.options = make(map[string]bool, len(c.Options))
			for _, o := range c.Options {
				r.options[o.Value] = true
			}
		}
		if k == kindGrid || k == kindContainer {
			r.children = buildRules(c.Components, tr, lang)
		}
		rules = append(rules, r)
	}
	return rules
}

func (v *Validator) Validate(values map[string]interface{}, mode Mode) FieldErrors {
	var errs FieldErrors
	v.validateFields(v.fields, values, "", mode, &errs)
	return errs
}

func (v *Validator) validateFields(rules []fieldRule, values map[string]interface{}, prefix string, mode Mode, errs *FieldErrors) {
	for _, r := range rules {
		path := prefix + r.comp.Key
		val := values[r.comp.Key]
		if isEmpty(r.kind, val) {
			if mode == ModeSubmit && bool(r.comp.Validate.Required) {
				*errs = append(*errs, v.fail(r, path, RuleRequired, nil))
			}
			continue
		}
		v.check(r, path, val, mode, errs)
	}
}

func (v *Validator) check(r fieldRule, path string, val interface{}, mode Mode, errs *FieldErrors) {
	rules := r.comp.Validate
	add := func(rule string, vars map[string]string) {
		*errs = append(*errs, v.fail(r, path, rule, vars))
	}

	switch r.kind {
	case kindText, kindEmail, kindURL:
		s, ok := val.(string)
		if !ok {
			s = scalarString(val)
			if s == "" {
				add(RuleInvalidFormat, nil)
				return
			}
		}
		if r.kind == kindEmail && v.v.Var(s, "email") != nil {
			add(RuleEmail, nil)
			return
		}
		if r.kind == kindURL && v.v.Var(s, "url") != nil {
			add(RuleURL, nil)
			return
		}
		if rules.MinLength.Set && v.v.Var(s, "min="+strconv.Itoa(rules.MinLength.Int())) != nil {
			add(RuleMinLength, map[string]string{"min": rules.MinLength.String()})
			return
		}
		if rules.MaxLength.Positive() && v.v.Var(s, "max="+strconv.Itoa(rules.MaxLength.Int())) != nil {
			add(RuleMaxLength, map[string]string{"max": rules.MaxLength.String()})
			return
		}
		if r.pattern != nil && !r.pattern.MatchString(s) {
			add(RulePattern, nil)
		}

	case kindNumber:
		n, ok := toFloat(val)
		if !ok {
			add(RuleNumber, nil)
			return
		}
		if rules.Min.Set && v.v.Var(n, "gte="+rules.Min.String()) != nil {
			add(RuleMinValue, map[string]string{"min": rules.Min.String()})
			return
		}
		if rules.Max.Set && v.v.Var(n, "lte="+rules.Max.String()) != nil {
			add(RuleMaxValue, map[string]string{"max": rules.Max.String()})
		}

	case kindBool:
		b, ok := toBool(val)
		if !ok {
			add(RuleInvalidFormat, nil)
			return
		}
		if !b && mode == ModeSubmit && bool(rules.Required) {
			add(RuleRequired, nil)
		}

	case kindChoice:
		selected := toStrings(val)
		if selected == nil {
			add(RuleInvalidFormat, nil)
			return
		}
		if r.options != nil {
			for _, s := range selected {
				if !r.options[s] {
					add(RuleOption, nil)
					return
				}
			}
		}
		if r.comp.Multiple {
			v.checkCount(r, len(selected), mode, add)
		}

	case kindSelectBoxes:
		m, ok := val.(map[string]interface{})
		if !ok {
			add(RuleInvalidFormat, nil)
			return
		}
		count := 0
		for _, x := range m {
			if b, ok := toBool(x); ok && b {
				count++
			}
		}
		if count == 0 && mode == ModeSubmit && bool(rules.Required) {
			add(RuleRequired, nil)
			return
		}
		v.checkCount(r, count, mode, add)

	case kindFile:
		switch val.(type) {
		case []interface{}, map[string]interface{}:
		default:
			add(RuleInvalidFormat, nil)
		}

	case kindDate:
		s, ok := val.(string)
		if !ok || !parsesAsDate(s) {
			add(RuleDate, nil)
		}

	case kindGrid:
		rows, ok := val.([]interface{})
		if !ok {
			add(RuleInvalidFormat, nil)
			return
		}
		if mode == ModeSubmit && rules.MinLength.Set && len(rows) < rules.MinLength.Int() {
			add(RuleMinLength, map[string]string{"min": rules.MinLength.String()})
		}
		if rules.MaxLength.Positive() && len(rows) > rules.MaxLength.Int() {
			add(RuleMaxLength, map[string]string{"max": rules.MaxLength.String()})
		}
		for i, row := range rows {
			m, isMap := row.(map[string]interface{})
			if !isMap {
				*errs = append(*errs, v.fail(r, fmt.Sprintf("%s[%d]", path, i), RuleInvalidFormat, nil))
				continue
			}
			v.validateFields(r.children, m, fmt.Sprintf("%s[%d].", path, i), mode, errs)
		}

	case kindContainer:
		m, ok := val.(map[string]interface{})
		if !ok {
			add(RuleInvalidFormat, nil)
			return
		}
		v.validateFields(r.children, m, path+".", mode, errs)
	}
}

func (v *Validator) checkCount(r fieldRule, count int, mode Mode, add func(string, map[string]string)) {
	rules := r.comp.Validate
	if mode == ModeSubmit && rules.MinSelectedCount.Set && count < rules.MinSelectedCount.Int() {
		add(RuleMinSelected, map[string]string{"min": rules.MinSelectedCount.String()})
		return
	}
	if rules.MaxSelectedCount.Positive() && count > rules.MaxSelectedCount.Int() {
		add(RuleMaxSelected, map[string]string{"max": rules.MaxSelectedCount.String()})
	}
}

func (v *Validator) fail(r fieldRule, path, rule string, vars map[string]string) FieldError {
	return FieldError{Field: path, Rule: rule, Message: v.message(r, rule, vars)}
}

func (v *Validator) message(r fieldRule, rule string, vars map[string]string) string {
	if cm := strings.TrimSpace(r.comp.Validate.CustomMessage); cm != "" {
		return v.tr.Label(cm, v.lang)
	}
	tmpl, ok := v.tr.Lookup(rule, v.lang)
	if !ok {
		tmpl = fallbackMessage(rule, v.lang)
	}
	pairs := []string{"{{field}}", r.label, "{field}", r.label}
	for k, val := range vars {
		pairs = append(pairs, "{{"+k+"}}", val, "{"+k+"}", val)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func isEmpty(k kind, val interface{}) bool {
	switch t := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		if k == kindSelectBoxes || k == kindContainer {
			return false
		}
		return len(t) == 0
	}
	return false
}

func toFloat(val interface{}) (float64, bool) {
	switch t := val.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(val interface{}) (bool, bool) {
	switch t := val.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	}
	return false, false
}

func toStrings(val interface{}) []string {
	switch t := val.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s := scalarString(x); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalarString(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func parsesAsDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
