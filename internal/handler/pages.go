package handler

import (
	"net/http"

	"eportal/internal/logger"
	"eportal/internal/middleware"
	"eportal/internal/model"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

const landingHighlights = 6

// PageHandler serves the JSON page models the front-end shell renders for
// the locale-prefixed routes.
type PageHandler struct {
	eservices *service.EServiceService
	requests  *service.RequestService
	dashboard *service.DashboardService
	jar       session.Cookies
}

func NewPageHandler(eservices *service.EServiceService, requests *service.RequestService, dashboard *service.DashboardService, jar session.Cookies) *PageHandler {
	return &PageHandler{eservices: eservices, requests: requests, dashboard: dashboard, jar: jar}
}

func (h *PageHandler) page(c *gin.Context, name string, data gin.H) {
	body := gin.H{"page": name, "locale": middleware.LocaleFrom(c)}
	if sess, found := middleware.SessionFrom(c); found {
		body["user"] = sess.User
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Landing never fails on the catalog: the highlights are simply empty.
func (h *PageHandler) Landing(c *gin.Context) {
	items, err := h.eservices.Catalog(c.Request.Context(), anonymous(c), "")
	if err != nil {
		logger.Warn("page.landing.catalog_failed", "code", service.CodeOf(err), "request_id", middleware.RequestIDFrom(c))
		items = nil
	}
	h.page(c, "landing", gin.H{"highlights": highlights(items, middleware.LocaleFrom(c))})
}

type highlight struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// highlights prefers featured services and fills up with the rest.
func highlights(items []model.EService, locale string) []highlight {
	out := []highlight{}
	add := func(featured bool) {
		for _, e := range items {
			if len(out) == landingHighlights {
				return
			}
			if e.Featured == featured {
				out = append(out, highlight{ID: e.ID, Name: e.Name(locale), Icon: e.Icon})
			}
		}
	}
	add(true)
	add(false)
	return out
}

func (h *PageHandler) Login(c *gin.Context) {
	loc := middleware.LocaleFrom(c)
	if _, found := middleware.SessionFrom(c); found {
		c.Redirect(http.StatusFound, "/"+loc+"/dashboard")
		return
	}
	h.page(c, "login", gin.H{
		"sessionExpired": c.Query("session_expired") == "true" || middleware.SessionExpired(c),
		"methods":        []string{"password", "nafath"},
	})
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	sum, err := h.dashboard.Summary(c.Request.Context(), scope(c))
	if err != nil {
		h.pageError(c, "page.dashboard", err)
		return
	}
	h.page(c, "dashboard", gin.H{
		"greeting": currentUser(c).DisplayName(middleware.LocaleFrom(c)),
		"summary":  sum,
	})
}

func (h *PageHandler) Requests(c *gin.Context) {
	p, err := h.requests.List(c.Request.Context(), scope(c), listQuery(c))
	if err != nil {
		h.pageError(c, "page.requests", err)
		return
	}
	h.page(c, "requests", gin.H{
		"items":      p.Items,
		"pagination": newPageView(p.Meta),
		"status":     c.Query("status"),
	})
}

// pageError redirects to login on an expired session and otherwise answers
// with the error code for the shell's error view.
func (h *PageHandler) pageError(c *gin.Context, event string, err error) {
	fail(c, h.jar, event, err, gin.H{"page": "error", "locale": middleware.LocaleFrom(c)})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
