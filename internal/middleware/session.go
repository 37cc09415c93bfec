package middleware

import (
	"errors"
	"net/http"
	"strings"

	"eportal/internal/logger"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	keySession = "session"
	keyExpired = "session_expired"
)

// LoadSession decodes the session cookies into the context. Cookies that
// fail to decode are cleared.
func LoadSession(codec *session.Codec, jar session.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue, _ := c.Cookie(session.TokenCookie)
		userValue, _ := c.Cookie(session.UserCookie)
		sess, err := codec.Decode(tokenValue, userValue)
		switch {
		case err == nil:
			c.Set(keySession, sess)
		case errors.Is(err, session.ErrNoSession):
			if tokenValue != "" || userValue != "" {
				jar.ClearSession(c)
			}
		default:
			logger.Info("session.rejected", "reason", err.Error(), "request_id", RequestIDFrom(c))
			c.Set(keyExpired, true)
			jar.ClearSession(c)
		}
		c.Next()
	}
}

// RequireSession stops anonymous requests. API routes get a 401 JSON body
// carrying the login redirect; page routes are redirected.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFrom(c); ok {
			c.Next()
			return
		}
		AbortUnauthorized(c)
	}
}

// AbortUnauthorized ends the request the way an expired session does.
func AbortUnauthorized(c *gin.Context) {
	redirect := LoginPath(LocaleFrom(c))
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success":  false,
			"error":    "UNAUTHORIZED",
			"message":  "session expired",
			"redirect": redirect,
		})
		return
	}
	c.Redirect(http.StatusFound, redirect)
	c.Abort()
}

func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(keySession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

// SessionExpired reports whether the request carried a session that was
// rejected.
func SessionExpired(c *gin.Context) bool { return c.GetBool(keyExpired) }
