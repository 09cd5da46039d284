// Package rpc exposes the query service as named procedures over HTTP and
// provides a client for them.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nhle/notekeeper/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the server's authentication settings.
type Config struct {
	JWTSecret string
	JWTIssuer string
}

// Server routes procedure calls to the service.
type Server struct {
	svc     *service.Service
	db      Pinger
	auth    *Authenticator
	metrics *Metrics
	log     zerolog.Logger
	engine  *gin.Engine
}

// NewServer builds the gin engine with all middleware and procedures.
// db may be nil, in which case /healthz only reports the process is up.
func NewServer(svc *service.Service, db Pinger, cfg Config, log zerolog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		svc:     svc,
		db:      db,
		auth:    NewAuthenticator(svc, cfg.JWTSecret, cfg.JWTIssuer),
		metrics: NewMetrics(),
		log:     log,
		engine:  gin.New(),
	}
	s.auth.metrics = s.metrics

	s.engine.Use(
		RequestID(),
		Logger(log),
		Recovery(log),
		s.metrics.Middleware(),
	)

	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	procs := s.engine.Group("/rpc", s.auth.Middleware())
	s.registerProcedures(procs)

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("rpc server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("rpc server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
