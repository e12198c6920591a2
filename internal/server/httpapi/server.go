// Package httpapi exposes the scan workflow over HTTP/JSON for the browser
// front end: session auth, scan submission, override resolution, batch view,
// export download, and admin account management.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/records"
	"github.com/gabrielslopes/labelcheck/internal/server/scan"
	"github.com/gabrielslopes/labelcheck/internal/server/users"
)

type Server struct {
	address         string
	logger          logging.Logger
	users           *users.Service
	records         *records.Service
	scans           *scan.Service
	jwtSecret       []byte
	sessionValidity time.Duration

	engine *gin.Engine
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service, rs *records.Service, ss *scan.Service) *Server {
	s := &Server{
		address:         cfg.EndpointAddrHTTP,
		logger:          l.With("module", "http_server"),
		users:           us,
		records:         rs,
		scans:           ss,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")

	// open until the first admin exists, then permanently closed
	api.POST("/bootstrap", s.bootstrap)

	api.POST("/auth/login", s.bootstrapGuard(), s.login)

	authed := api.Group("", s.authRequired())
	{
		authed.POST("/auth/logout", s.logout)

		authed.POST("/scan", s.submitScan)
		authed.POST("/scan/override", s.overrideScan)
		authed.POST("/scan/override/cancel", s.cancelOverride)

		authed.GET("/batch", s.batchItems)
		authed.POST("/batch/reset", s.resetBatch)

		authed.POST("/records/flush", s.flushRecords)
		authed.GET("/export", s.export)

		admin := authed.Group("/admin", s.requireAdmin())
		{
			admin.GET("/users", s.listUsers)
			admin.POST("/users", s.createUser)
			admin.PUT("/users/:id", s.updateUser)
			admin.POST("/users/:id/reset-password", s.resetPassword)
			admin.DELETE("/users/:id", s.deleteUser)
		}
	}

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
