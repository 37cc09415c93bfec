package handler

import (
	"net/http"
	"strconv"

	"eportal/internal/logger"
	"eportal/internal/middleware"
	"eportal/internal/model"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

const captchaMaxAge = 5 * 60

type AuthHandler struct {
	auth  *service.AuthService
	codec *session.Codec
	jar   session.Cookies
	audit service.Auditor
}

func NewAuthHandler(auth *service.AuthService, codec *session.Codec, jar session.Cookies, audit service.Auditor) *AuthHandler {
	return &AuthHandler{auth: auth, codec: codec, jar: jar, audit: audit}
}

func (h *AuthHandler) Captcha(c *gin.Context) {
	captcha, err := h.auth.Captcha(c.Request.Context(), anonymous(c))
	if err != nil {
		fail(c, h.jar, "auth.captcha", err, nil)
		return
	}
	h.jar.Set(c, session.CaptchaCookie, captcha.ID, captchaMaxAge)
	ok(c, gin.H{"image": captcha.Image})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	captchaID, _ := c.Cookie(session.CaptchaCookie)
	if captchaID == "" {
		fail(c, h.jar, "auth.login", &service.APIError{Code: service.ErrCodeInvalidCaptcha, Message: "captcha expired"}, gin.H{"captchaReset": true})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), anonymous(c), service.LoginInput{
		IdentityID:   req.IdentityID,
		Password:     req.Password,
		CaptchaID:    captchaID,
		CaptchaValue: req.CaptchaValue,
	})
	// a captcha answer is single use whatever the outcome
	h.jar.Clear(c, session.CaptchaCookie)
	if err != nil {
		audit(c, h.audit, req.IdentityID, model.AuditLoginFailed, "", string(service.CodeOf(err)))
		fail(c, h.jar, "auth.login", err, gin.H{"captchaReset": true})
		return
	}

	if !h.startSession(c, res.Token, res.User) {
		return
	}
	logger.Info("auth.login.ok", "identity_id", res.User.IdentityID, "request_id", middleware.RequestIDFrom(c))
	audit(c, h.audit, res.User.IdentityID, model.AuditLogin, "", "")
	ok(c, h.sessionBody(c, res.User))
}

func (h *AuthHandler) NafathStart(c *gin.Context) {
	var req model.NafathStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid identity id")
		return
	}
	captchaID, _ := c.Cookie(session.CaptchaCookie)
	if captchaID == "" {
		fail(c, h.jar, "auth.nafath", &service.APIError{Code: service.ErrCodeInvalidCaptcha, Message: "captcha expired"}, gin.H{"captchaReset": true})
		return
	}

	ch, err := h.auth.NafathStart(c.Request.Context(), anonymous(c), service.NafathStartInput{
		IdentityID:   req.IdentityID,
		CaptchaID:    captchaID,
		CaptchaValue: req.CaptchaValue,
	})
	h.jar.Clear(c, session.CaptchaCookie)
	if err != nil {
		fail(c, h.jar, "auth.nafath", err, gin.H{"captchaReset": true})
		return
	}
	logger.Info("auth.nafath.started", "transaction_id", ch.TransactionID, "request_id", middleware.RequestIDFrom(c))
	ok(c, ch)
}

// NafathStatus is polled by the client until the citizen answers in the
// Nafath app. Only COMPLETED opens a session.
func (h *AuthHandler) NafathStatus(c *gin.Context) {
	res, err := h.auth.NafathStatus(c.Request.Context(), anonymous(c), c.Param("transactionId"))
	if err != nil {
		fail(c, h.jar, "auth.nafath.status", err, nil)
		return
	}
	if res.Status != model.NafathCompleted {
		ok(c, gin.H{"status": res.Status})
		return
	}

	if !h.startSession(c, res.Token, *res.User) {
		return
	}
	logger.Info("auth.nafath.ok", "identity_id", res.User.IdentityID, "request_id", middleware.RequestIDFrom(c))
	audit(c, h.audit, res.User.IdentityID, model.AuditNafathLogin, c.Param("transactionId"), "")
	body := h.sessionBody(c, *res.User)
	body["status"] = res.Status
	ok(c, body)
}

// Logout tells the backend when possible and always clears the cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, found := middleware.SessionFrom(c); found {
		if err := h.auth.Logout(c.Request.Context(), scope(c)); err != nil {
			logger.Warn("auth.logout.backend_failed", "code", service.CodeOf(err), "request_id", middleware.RequestIDFrom(c))
		}
		audit(c, h.audit, sess.User.IdentityID, model.AuditLogout, "", "")
	}
	h.jar.ClearSession(c)
	ok(c, gin.H{"redirect": "/" + middleware.LocaleFrom(c) + "/login"})
}

// Session mirrors the user cookie. With ?refresh=true the profile is
// reloaded from the backend and the user cookie re-signed.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, found := middleware.SessionFrom(c)
	if !found {
		ok(c, model.SessionResponse{Authenticated: false})
		return
	}
	user := sess.User
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		u, err := h.auth.Profile(c.Request.Context(), scope(c))
		if err != nil {
			fail(c, h.jar, "auth.profile", err, nil)
			return
		}
		if !h.startSession(c, sess.Token, *u) {
			return
		}
		logger.Info("auth.profile.refreshed", "identity_id", u.IdentityID, "request_id", middleware.RequestIDFrom(c))
		user = *u
	}
	ok(c, model.SessionResponse{Authenticated: true, User: &user})
}

func (h *AuthHandler) startSession(c *gin.Context, token string, user model.User) bool {
	tokenValue, userValue, maxAge, err := h.codec.Encode(token, user)
	if err != nil {
		logger.Error("auth.session.encode_failed", "err", err, "request_id", middleware.RequestIDFrom(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": service.ErrCodeUnknown, "message": "cannot start session"})
		return false
	}
	h.jar.Set(c, session.TokenCookie, tokenValue, maxAge)
	h.jar.Set(c, session.UserCookie, userValue, maxAge)
	return true
}

func (h *AuthHandler) sessionBody(c *gin.Context, user model.User) gin.H {
	return gin.H{
		"user":     user,
		"redirect": "/" + middleware.LocaleFrom(c) + "/dashboard",
	}
}
