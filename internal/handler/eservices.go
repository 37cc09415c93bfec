package handler

import (
	"eportal/internal/formschema"
	"eportal/internal/middleware"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

type EServiceHandler struct {
	eservices *service.EServiceService
	jar       session.Cookies
}

func NewEServiceHandler(eservices *service.EServiceService, jar session.Cookies) *EServiceHandler {
	return &EServiceHandler{eservices: eservices, jar: jar}
}

func (h *EServiceHandler) Catalog(c *gin.Context) {
	items, err := h.eservices.Catalog(c.Request.Context(), scope(c), c.Query("category"))
	if err != nil {
		fail(c, h.jar, "eservice.catalog", err, nil)
		return
	}
	ok(c, items)
}

func (h *EServiceHandler) Get(c *gin.Context) {
	e, err := h.eservices.Get(c.Request.Context(), scope(c), c.Param("id"))
	if err != nil {
		fail(c, h.jar, "eservice.get", err, nil)
		return
	}
	ok(c, e)
}

// Form renders an empty (or prefilled from defaults) application form.
func (h *EServiceHandler) Form(c *gin.Context) {
	id := c.Param("id")
	form, err := loadServiceForm(c.Request.Context(), h.eservices, scope(c), id)
	if err != nil {
		fail(c, h.jar, "eservice.form", err, nil)
		return
	}
	body := form.view(middleware.LocaleFrom(c), formschema.ParseRenderMode(c.Query("mode")), nil, stepParam(c))
	body["serviceId"] = id
	ok(c, body)
}

type validateRequest struct {
	Values map[string]interface{} `json:"values"`
	Draft  bool                   `json:"draft"`
}

// Validate checks values without saving anything, for inline feedback.
func (h *EServiceHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	form, err := loadServiceForm(c.Request.Context(), h.eservices, scope(c), c.Param("id"))
	if err != nil {
		fail(c, h.jar, "eservice.validate", err, nil)
		return
	}
	mode := formschema.ModeSubmit
	if req.Draft {
		mode = formschema.ModeDraft
	}
	errs := form.validate(middleware.LocaleFrom(c), req.Values, mode)
	if errs == nil {
		errs = formschema.FieldErrors{}
	}
	ok(c, gin.H{"valid": len(errs) == 0, "fields": errs})
}
