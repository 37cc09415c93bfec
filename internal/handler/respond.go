package handler

import (
	"errors"
	"net/http"

	"eportal/internal/logger"
	"eportal/internal/middleware"
	"eportal/internal/model"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

func scope(c *gin.Context) service.Scope {
	s := service.Scope{Locale: middleware.LocaleFrom(c), RequestID: middleware.RequestIDFrom(c)}
	if sess, ok := middleware.SessionFrom(c); ok {
		s.Token = sess.Token
	}
	return s
}

// anonymous is scope without the bearer, for public backend endpoints.
func anonymous(c *gin.Context) service.Scope {
	s := scope(c)
	s.Token = ""
	return s
}

func currentUser(c *gin.Context) model.User {
	if sess, ok := middleware.SessionFrom(c); ok {
		return sess.User
	}
	return model.User{}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": service.ErrCodeValidation, "message": msg})
}

// fail answers with the error's code. UNAUTHORIZED from the backend means
// the session is gone: cookies are cleared and the client is sent to login.
func fail(c *gin.Context, jar session.Cookies, event string, err error, extra gin.H) {
	if service.IsUnauthorized(err) {
		logger.Info(event+".session_expired", "request_id", middleware.RequestIDFrom(c))
		jar.ClearSession(c)
		middleware.AbortUnauthorized(c)
		return
	}

	code := service.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error(event+".failed", "code", code, "err", err, "request_id", middleware.RequestIDFrom(c))
	} else {
		logger.Warn(event+".failed", "code", code, "err", err, "request_id", middleware.RequestIDFrom(c))
	}

	body := gin.H{"success": false, "error": code, "message": message(err)}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}

func message(err error) string {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return string(service.CodeOf(err))
}

func audit(c *gin.Context, a service.Auditor, identityID, action, reference, detail string) {
	a.Record(c.Request.Context(), model.AuditEvent{
		IdentityID: identityID,
		Action:     action,
		Reference:  reference,
		RequestID:  middleware.RequestIDFrom(c),
		ClientIP:   c.ClientIP(),
		Detail:     detail,
	})
}
