package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookies writes the portal cookies. All of them are HTTP-only, Lax and
// scoped to "/"; Secure follows the deployment.
type Cookies struct {
	Secure bool
}

func (k Cookies) Set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", k.Secure, true)
}

func (k Cookies) Clear(c *gin.Context, names ...string) {
	for _, name := range names {
		k.Set(c, name, "", -1)
	}
}

// ClearSession drops the auth-token and user cookies.
func (k Cookies) ClearSession(c *gin.Context) { k.Clear(c, TokenCookie, UserCookie) }
