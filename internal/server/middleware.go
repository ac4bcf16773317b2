package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vndesk/helpdesk/internal/core/domain"
	"github.com/vndesk/helpdesk/internal/metrics"
)

// identityHeader carries the signed-in user's email, injected by the SSO
// proxy in front of this service.
const identityHeader = "X-User-Email"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) httpMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// authMiddleware enforces the email allowlist on all API routes. Denials go
// to the error log so operators can spot misconfigured accounts.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(identityHeader)
		if s.policy.IsAllowed(c.Request.Context(), email) {
			c.Next()
			return
		}

		metrics.AuthDenied.Inc()
		s.log.Warn("access denied", "email", email, "path", c.Request.URL.Path)
		entry := &domain.ErrorEntry{
			Time:      time.Now().UTC(),
			Operation: "auth",
			Message:   "access denied for " + email,
		}
		if err := s.store.ErrorLog().Append(c.Request.Context(), entry); err != nil {
			s.log.Warn("failed to append error log entry", "error", err)
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}

// rateLimitMiddleware applies a per-identity token bucket. Keyed by the
// identity header when present, client IP otherwise.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateLimitBurst)
			limiters[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		key := c.GetHeader(identityHeader)
		if key == "" {
			key = c.ClientIP()
		}
		if !limiterFor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
