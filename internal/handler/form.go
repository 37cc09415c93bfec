package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"eportal/internal/formschema"
	"eportal/internal/service"
	"eportal/internal/wizard"

	"github.com/gin-gonic/gin"
)

type parsedForm struct {
	schema *formschema.Schema
	tr     formschema.Translations
}

// parseForm reads a designer document and its translation table. Only a
// designer that is not JSON at all is an error; translations never are.
func parseForm(designer, translations json.RawMessage) (*parsedForm, error) {
	s, err := formschema.Parse(designer)
	if err != nil {
		return nil, &service.APIError{Code: service.ErrCodeDecode, Message: err.Error()}
	}
	return &parsedForm{schema: s, tr: formschema.ParseTranslations(translations)}, nil
}

func loadServiceForm(ctx context.Context, eservices *service.EServiceService, sc service.Scope, serviceID string) (*parsedForm, error) {
	f, err := eservices.Form(ctx, sc, serviceID)
	if err != nil {
		return nil, err
	}
	return parseForm(f.FormDesigner, f.Translations)
}

func (f *parsedForm) validate(lang string, values map[string]interface{}, mode formschema.Mode) formschema.FieldErrors {
	return formschema.BuildValidator(f.schema, f.tr, lang).Validate(values, mode)
}

// view renders the form and the wizard bar positioned at step.
func (f *parsedForm) view(lang string, mode formschema.RenderMode, values map[string]interface{}, step int) gin.H {
	form := formschema.Render(f.schema, f.tr, lang, mode, values)
	steps := make([]wizard.Step, len(form.Pages))
	for i, p := range form.Pages {
		steps[i] = wizard.Step{Key: p.Key, Title: p.Title}
	}
	wz := wizard.New(steps, step)
	body := gin.H{"form": form, "wizard": wz}
	if active, found := wz.ActiveStep(); found {
		body["nav"] = gin.H{
			"activeStep": active.Key,
			"prev":       wz.Prev().Current,
			"next":       wz.Next().Current,
			"isFirst":    wz.IsFirst(),
			"isLast":     wz.IsLast(),
		}
	}
	return body
}

func stepParam(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("step"))
	return n
}

func invalid(c *gin.Context, errs formschema.FieldErrors) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"error":   service.ErrCodeValidation,
		"message": "validation failed",
		"fields":  errs,
	})
}
