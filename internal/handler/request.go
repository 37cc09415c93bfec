package handler

import (
	"strings"

	"eportal/internal/formschema"
	"eportal/internal/logger"
	"eportal/internal/middleware"
	"eportal/internal/model"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requests  *service.RequestService
	eservices *service.EServiceService
	jar       session.Cookies
	audit     service.Auditor
}

func NewRequestHandler(requests *service.RequestService, eservices *service.EServiceService, jar session.Cookies, audit service.Auditor) *RequestHandler {
	return &RequestHandler{requests: requests, eservices: eservices, jar: jar, audit: audit}
}

func (h *RequestHandler) List(c *gin.Context) {
	p, err := h.requests.List(c.Request.Context(), scope(c), listQuery(c))
	if err != nil {
		fail(c, h.jar, "request.list", err, nil)
		return
	}
	paged(c, p.Items, p.Meta)
}

func (h *RequestHandler) Drafts(c *gin.Context) {
	p, err := h.requests.Drafts(c.Request.Context(), scope(c), listQuery(c))
	if err != nil {
		fail(c, h.jar, "request.drafts", err, nil)
		return
	}
	paged(c, p.Items, p.Meta)
}

// Get returns the request with its form rendered. Only drafts can be opened
// for editing; anything else is shown read-only.
func (h *RequestHandler) Get(c *gin.Context) {
	d, err := h.requests.Get(c.Request.Context(), scope(c), c.Param("id"))
	if err != nil {
		fail(c, h.jar, "request.get", err, nil)
		return
	}
	form, err := parseForm(d.FormDesigner, d.Translations)
	if err != nil {
		fail(c, h.jar, "request.get", err, nil)
		return
	}

	mode := formschema.ParseRenderMode(c.Query("mode"))
	if !strings.EqualFold(string(d.Status), string(model.StatusDraft)) {
		mode = formschema.RenderView
	}
	step := d.Step
	if c.Query("step") != "" {
		step = stepParam(c)
	}

	body := form.view(middleware.LocaleFrom(c), mode, d.Values, step)
	d.FormDesigner, d.Translations = nil, nil
	body["request"] = d
	ok(c, body)
}

func (h *RequestHandler) SaveDraft(c *gin.Context) {
	h.forward(c, formschema.ModeDraft)
}

func (h *RequestHandler) Submit(c *gin.Context) {
	h.forward(c, formschema.ModeSubmit)
}

// forward validates the submission against the service form, keeps only the
// declared values and passes it on to the backend.
func (h *RequestHandler) forward(c *gin.Context, mode formschema.Mode) {
	var sub model.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, "invalid request")
		return
	}
	event, action := "request.submit", model.AuditRequestSubmitted
	if mode == formschema.ModeDraft {
		event, action = "request.draft", model.AuditDraftSaved
	}

	ctx := c.Request.Context()
	form, err := loadServiceForm(ctx, h.eservices, scope(c), sub.ServiceID)
	if err != nil {
		fail(c, h.jar, event, err, nil)
		return
	}
	if errs := form.validate(middleware.LocaleFrom(c), sub.Values, mode); len(errs) > 0 {
		logger.Info(event+".invalid", "service_id", sub.ServiceID, "fields", len(errs), "request_id", middleware.RequestIDFrom(c))
		invalid(c, errs)
		return
	}
	sub.Values = formschema.Collect(form.schema, sub.Values)

	save := h.requests.Submit
	if mode == formschema.ModeDraft {
		save = h.requests.SaveDraft
	}
	res, err := save(ctx, scope(c), sub)
	if err != nil {
		fail(c, h.jar, event, err, nil)
		return
	}
	logger.Info(event+".ok", "service_id", sub.ServiceID, "reference", res.ReferenceNumber, "request_id", middleware.RequestIDFrom(c))
	audit(c, h.audit, currentUser(c).IdentityID, action, res.ReferenceNumber, sub.ServiceID)
	ok(c, res)
}

func (h *RequestHandler) Close(c *gin.Context) {
	var req model.CloseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
	}
	id := c.Param("id")
	ctx := c.Request.Context()
	d, err := h.requests.Get(ctx, scope(c), id)
	if err != nil {
		fail(c, h.jar, "request.close", err, nil)
		return
	}
	if !d.Closable() {
		fail(c, h.jar, "request.close", &service.APIError{Code: service.ErrCodeValidation, Message: "only active requests can be closed"}, gin.H{"status": d.Status})
		return
	}
	if err := h.requests.Close(ctx, scope(c), id, req.Reason); err != nil {
		fail(c, h.jar, "request.close", err, nil)
		return
	}
	audit(c, h.audit, currentUser(c).IdentityID, model.AuditRequestClosed, id, req.Reason)
	ok(c, gin.H{"id": id, "status": model.StatusClosed})
}
