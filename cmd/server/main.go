package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eportal/internal/config"
	"eportal/internal/handler"
	"eportal/internal/logger"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

//go:embed dist/*
var staticFS embed.FS

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	if cfg.UsesDevSecret() {
		slog.Warn("session secret is the development default; set SESSION_SECRET")
	}

	var audit service.Auditor = service.NopAuditor{}
	if cfg.AuditEnabled() {
		db, err := cfg.OpenGormDB()
		if err != nil {
			slog.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		auditSvc := service.NewAuditService(db)
		if err := auditSvc.Migrate(); err != nil {
			slog.Error("audit migrate failed", "err", err)
			os.Exit(1)
		}
		audit = auditSvc
		slog.Info("audit trail enabled", "host", cfg.Database.Host, "db", cfg.Database.Name)
	}

	codec, err := session.NewCodec(cfg.Server.SessionSecret, cfg.SessionTTL())
	if err != nil {
		slog.Error("session codec init failed", "err", err)
		os.Exit(1)
	}

	backend := service.NewBackend(cfg.Backend.BaseURL, cfg.BackendTimeout())
	defer backend.Close()
	requests := service.NewRequestService(backend)
	bills := service.NewBillService(backend)

	distFS, _ := fs.Sub(staticFS, "dist")
	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.RouterConfig{
		Codec:         codec,
		Cookies:       session.Cookies{Secure: cfg.Server.SecureCookies},
		DefaultLocale: cfg.Locale.Default,
		Locales:       cfg.Locale.Supported,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Static:        distFS,
	}, handler.Services{
		Auth:         service.NewAuthService(backend),
		Requests:     requests,
		Bills:        bills,
		Certificates: service.NewCertificateService(backend),
		EServices:    service.NewEServiceService(backend),
		Dashboard:    service.NewDashboardService(requests, bills),
		Audit:        audit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "err", err)
	}
}
