// Command formcheck lets form authors validate and preview form designer
// documents offline, against the same rules the portal applies.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"eportal/internal/formschema"
	"eportal/internal/wizard"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("values are invalid")

type options struct {
	schema       string
	translations string
	values       string
	lang         string
	mode         string
	draft        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "formcheck:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formcheck",
		Short:         "Validate and preview form designer documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd(), newRenderCmd(), newFieldsCmd())
	return root
}

func addSchemaFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().StringVar(&o.schema, "schema", "", "form designer JSON file")
	cmd.Flags().StringVar(&o.translations, "translations", "", "Keyword translation table JSON file")
	cmd.Flags().StringVar(&o.lang, "lang", "ar", "message language (ar or en)")
	cmd.MarkFlagRequired("schema")
}

func newValidateCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate submitted values; exits 1 when invalid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, tr, err := o.load()
			if err != nil {
				return err
			}
			values, err := readValues(o.values)
			if err != nil {
				return err
			}
			mode := formschema.ModeSubmit
			if o.draft {
				mode = formschema.ModeDraft
			}
			errs := formschema.BuildValidator(s, tr, o.lang).Validate(values, mode)
			if errs == nil {
				errs = formschema.FieldErrors{}
			}
			if err := printJSON(cmd.OutOrStdout(), map[string]interface{}{"valid": len(errs) == 0, "fields": errs}); err != nil {
				return err
			}
			if len(errs) > 0 {
				return errInvalid
			}
			return nil
		},
	}
	addSchemaFlags(cmd, o)
	cmd.Flags().StringVar(&o.values, "values", "", "submitted values JSON file")
	cmd.Flags().BoolVar(&o.draft, "draft", false, "apply draft rules (skip required checks)")
	cmd.MarkFlagRequired("values")
	return cmd
}

func newRenderCmd() *cobra.Command {
	o := &options{}
	var step int
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the rendered form and wizard as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, tr, err := o.load()
			if err != nil {
				return err
			}
			var values map[string]interface{}
			if o.values != "" {
				if values, err = readValues(o.values); err != nil {
					return err
				}
			}
			form := formschema.Render(s, tr, o.lang, formschema.ParseRenderMode(o.mode), values)
			steps := make([]wizard.Step, len(form.Pages))
			for i, p := range form.Pages {
				steps[i] = wizard.Step{Key: p.Key, Title: p.Title}
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"form": form, "wizard": wizard.New(steps, step)})
		},
	}
	addSchemaFlags(cmd, o)
	cmd.Flags().StringVar(&o.values, "values", "", "values JSON file to prefill")
	cmd.Flags().StringVar(&o.mode, "mode", "edit", "render mode: view or edit")
	cmd.Flags().IntVar(&step, "step", 0, "wizard step to mark active")
	return cmd
}

func newFieldsCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List input keys with their type and rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, tr, err := o.load()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, c := range s.Fields() {
				fmt.Fprintf(w, "%-24s %-12s %-28s %s\n", c.Key, c.Type, tr.FieldLabel(c, o.lang), rules(c.Validate))
			}
			return nil
		},
	}
	addSchemaFlags(cmd, o)
	return cmd
}

func (o *options) load() (*formschema.Schema, formschema.Translations, error) {
	raw, err := os.ReadFile(o.schema)
	if err != nil {
		return nil, formschema.Translations{}, err
	}
	s, err := formschema.Parse(raw)
	if err != nil {
		return nil, formschema.Translations{}, fmt.Errorf("%s: %w", o.schema, err)
	}
	tr := formschema.NewTranslations()
	if o.translations != "" {
		data, err := os.ReadFile(o.translations)
		if err != nil {
			return nil, formschema.Translations{}, err
		}
		tr = formschema.ParseTranslations(data)
	}
	return s, tr, nil
}

func readValues(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]interface{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func rules(v formschema.Validation) string {
	var out []string
	if v.Required {
		out = append(out, "required")
	}
	limits := map[string]formschema.Limit{
		"minLength": v.MinLength, "maxLength": v.MaxLength,
		"min": v.Min, "max": v.Max,
		"minSelected": v.MinSelectedCount, "maxSelected": v.MaxSelectedCount,
	}
	var named []string
	for name, l := range limits {
		if l.Set {
			named = append(named, name+"="+l.String())
		}
	}
	sort.Strings(named)
	out = append(out, named...)
	if v.Pattern != "" {
		out = append(out, "pattern="+v.Pattern)
	}
	return strings.Join(out, " ")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
