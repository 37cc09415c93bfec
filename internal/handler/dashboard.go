package handler

import (
	"eportal/internal/middleware"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

const activityLimit = 20

type DashboardHandler struct {
	dashboard *service.DashboardService
	audit     service.Auditor
	jar       session.Cookies
}

func NewDashboardHandler(dashboard *service.DashboardService, audit service.Auditor, jar session.Cookies) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, audit: audit, jar: jar}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	sum, err := h.dashboard.Summary(c.Request.Context(), scope(c))
	if err != nil {
		fail(c, h.jar, "dashboard", err, nil)
		return
	}
	user := currentUser(c)
	ok(c, gin.H{
		"greeting": user.DisplayName(middleware.LocaleFrom(c)),
		"summary":  sum,
	})
}

// Activity lists the citizen's own recent portal actions from the audit
// trail. Without an audit database the list is empty.
func (h *DashboardHandler) Activity(c *gin.Context) {
	events, err := h.audit.Recent(c.Request.Context(), currentUser(c).IdentityID, activityLimit)
	if err != nil {
		fail(c, h.jar, "account.activity", err, nil)
		return
	}
	ok(c, events)
}
