// Package server exposes the helpdesk HTTP API: ticket entry, the filtered
// report with CSV/Excel export, form drafts and the operational error log.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vndesk/helpdesk/internal/auth"
	redisclient "github.com/vndesk/helpdesk/internal/infra/redis"
	"github.com/vndesk/helpdesk/internal/infra/storage"
)

// Config holds HTTP server settings.
type Config struct {
	Port           int
	Location       *time.Location
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the helpdesk HTTP server.
type Server struct {
	cfg    Config
	store  storage.Store
	drafts *redisclient.DraftStore // nil when redis is not configured
	policy auth.Policy
	log    *slog.Logger
	http   *http.Server
}

// New creates the server and registers all routes.
func New(cfg Config, store storage.Store, drafts *redisclient.DraftStore, policy auth.Policy, log *slog.Logger) *Server {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		drafts: drafts,
		policy: policy,
		log:    log,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), s.httpMetrics())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	api.Use(s.authMiddleware(), s.rateLimitMiddleware())

	api.POST("/tickets", s.handleCreateTicket)
	api.GET("/tickets", s.handleListTickets)
	api.GET("/tickets/export", s.handleExport)
	api.GET("/errors", s.handleErrorLog)

	if s.drafts != nil {
		api.GET("/drafts/:session", s.handleLoadDraft)
		api.PUT("/drafts/:session", s.handleSaveDraft)
		api.DELETE("/drafts/:session", s.handleResetDraft)
	}

	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}
	return s
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
