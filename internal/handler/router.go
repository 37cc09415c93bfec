package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"eportal/internal/middleware"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth         *service.AuthService
	Requests     *service.RequestService
	Bills        *service.BillService
	Certificates *service.CertificateService
	EServices    *service.EServiceService
	Dashboard    *service.DashboardService
	Audit        service.Auditor
}

type RouterConfig struct {
	Codec         *session.Codec
	Cookies       session.Cookies
	DefaultLocale string
	Locales       []string
	CORSOrigins   []string
	// Static, when set, serves the front-end shell for unmatched paths.
	Static fs.FS
}

func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	if svc.Audit == nil {
		svc.Audit = service.NopAuditor{}
	}
	jar := cfg.Cookies

	authH := NewAuthHandler(svc.Auth, cfg.Codec, jar, svc.Audit)
	requestH := NewRequestHandler(svc.Requests, svc.EServices, jar, svc.Audit)
	billH := NewBillHandler(svc.Bills, jar)
	certH := NewCertificateHandler(svc.Certificates, jar)
	eserviceH := NewEServiceHandler(svc.EServices, jar)
	dashH := NewDashboardHandler(svc.Dashboard, svc.Audit, jar)
	pageH := NewPageHandler(svc.EServices, svc.Requests, svc.Dashboard, jar)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept-Language", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
		}))
	}
	r.Use(middleware.Locale(cfg.DefaultLocale, cfg.Locales), middleware.LoadSession(cfg.Codec, jar))

	r.GET("/healthz", Healthz)

	api := r.Group("/api")
	api.GET("/auth/captcha", authH.Captcha)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/nafath", authH.NafathStart)
	api.GET("/auth/nafath/:transactionId", authH.NafathStatus)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/auth/session", authH.Session)
	api.GET("/eservices", eserviceH.Catalog)
	api.GET("/eservices/:id", eserviceH.Get)
	api.GET("/certificates/verify/:number", certH.Verify)

	auth := api.Group("", middleware.RequireSession())
	auth.GET("/requests", requestH.List)
	auth.GET("/requests/drafts", requestH.Drafts)
	auth.GET("/requests/:id", requestH.Get)
	auth.POST("/requests/draft", requestH.SaveDraft)
	auth.POST("/requests/submit", requestH.Submit)
	auth.POST("/requests/:id/close", requestH.Close)
	auth.GET("/bills", billH.List)
	auth.GET("/bills/unpaid", billH.Unpaid)
	auth.GET("/bills/:id", billH.Get)
	auth.GET("/certificates", certH.List)
	auth.GET("/certificates/:id", certH.Get)
	auth.GET("/certificates/:id/download", certH.Download)
	auth.GET("/eservices/:id/form", eserviceH.Form)
	auth.POST("/eservices/:id/validate", eserviceH.Validate)
	auth.GET("/dashboard", dashH.Summary)
	auth.GET("/account/activity", dashH.Activity)

	var notFound gin.HandlerFunc = func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": service.ErrCodeNotFound, "message": "not found"})
	}
	if cfg.Static != nil {
		notFound = gin.WrapH(http.FileServer(http.FS(cfg.Static)))
	}

	locales := cfg.Locales
	if len(locales) == 0 {
		locales = []string{cfg.DefaultLocale}
	}
	pages := r.Group("/:locale", knownLocale(locales, notFound))
	pages.GET("/", pageH.Landing)
	pages.GET("/login", pageH.Login)
	pages.GET("/dashboard", middleware.RequireSession(), pageH.Dashboard)
	pages.GET("/requests", middleware.RequireSession(), pageH.Requests)

	r.NoRoute(notFound)
	return r
}

// knownLocale lets only supported locale prefixes reach the page routes.
func knownLocale(locales []string, otherwise gin.HandlerFunc) gin.HandlerFunc {
	known := make(map[string]bool, len(locales))
	for _, l := range locales {
		known[strings.ToLower(l)] = true
	}
	return func(c *gin.Context) {
		if known[strings.ToLower(c.Param("locale"))] {
			c.Next()
			return
		}
		otherwise(c)
		c.Abort()
	}
}
