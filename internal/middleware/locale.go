package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const keyLocale = "locale"

// Locale resolves the request language: a supported /{locale} path prefix
// wins, then ?lang=, then Accept-Language. The result is always one of
// supported; def is used when nothing matches.
func Locale(def string, supported []string) gin.HandlerFunc {
	if len(supported) == 0 {
		supported = []string{def}
	}
	ordered := []string{def}
	for _, s := range supported {
		if s != def {
			ordered = append(ordered, s)
		}
	}
	tags := make([]language.Tag, len(ordered))
	for i, s := range ordered {
		tags[i] = language.Make(s)
	}
	matcher := language.NewMatcher(tags)
	known := make(map[string]bool, len(ordered))
	for _, s := range ordered {
		known[s] = true
	}

	return func(c *gin.Context) {
		loc := ""
		if seg := firstSegment(c.Request.URL.Path); known[seg] {
			loc = seg
		} else if q := strings.ToLower(c.Query("lang")); known[q] {
			loc = q
		} else if al := c.GetHeader("Accept-Language"); al != "" {
			loc = negotiate(matcher, ordered, al)
		}
		if loc == "" {
			loc = def
		}
		c.Set(keyLocale, loc)
		c.Header("Content-Language", loc)
		c.Next()
	}
}

func negotiate(m language.Matcher, ordered []string, header string) string {
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return ""
	}
	_, idx, conf := m.Match(prefs...)
	if conf == language.No {
		return ""
	}
	return ordered[idx]
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return strings.ToLower(path)
}

// LocaleFrom returns the resolved locale, or "ar" outside the middleware.
func LocaleFrom(c *gin.Context) string {
	if loc := c.GetString(keyLocale); loc != "" {
		return loc
	}
	return "ar"
}

// LoginPath is where an expired session is sent.
func LoginPath(locale string) string {
	return "/" + locale + "/login?session_expired=true"
}
