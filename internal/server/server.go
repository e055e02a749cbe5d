// Package server exposes the integration endpoints the voice platform and
// the test frontend call.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lapu-lapu-poc/server/internal/calllog"
	"github.com/lapu-lapu-poc/server/internal/fulfillment"
	"github.com/lapu-lapu-poc/server/internal/observers"
	"github.com/lapu-lapu-poc/server/internal/ratelimit"
	"github.com/lapu-lapu-poc/server/internal/tools"
	"github.com/lapu-lapu-poc/server/internal/webhook"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	"github.com/lapu-lapu-poc/server/pkg/retell"
)

const (
	Version = "0.1.0"
	Phase   = "POC"

	shutdownTimeout = 10 * time.Second
)

// Catalog is what the health check needs from the product store.
type Catalog interface {
	Len() int
}

// Deps are the collaborators the handlers use. Metrics may be nil.
type Deps struct {
	Catalog    Catalog
	Calls      *calllog.Recorder
	Ledger     *fulfillment.Ledger
	Dispatcher *tools.Dispatcher
	Webhooks   *webhook.Validator
	Limiter    *ratelimit.Limiter
	Platform   retell.CallPlatform
	Metrics    *observers.Metrics

	// StaticDir is served for paths no route matches. Empty disables it.
	StaticDir string
}

type Server struct {
	deps   Deps
	engine *gin.Engine
	now    func() time.Time

	files      http.FileSystem
	fileServer http.Handler
}

func New(deps Deps) *Server {
	s := &Server{deps: deps, now: time.Now}
	if deps.StaticDir != "" {
		s.files = gin.Dir(deps.StaticDir, false)
		s.fileServer = http.FileServer(s.files)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), RequestLogger())

	r.GET("/health", s.health)
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	hooks := r.Group("/webhooks/retell")
	{
		hooks.POST("", s.receiveWebhook)
		hooks.GET("/logs", s.listCallLogs)
		hooks.POST("/tools", s.invokeTool)
		hooks.GET("/tools", s.listTools)
		hooks.GET("/orders", s.listOrders)
		hooks.GET("/complaints", s.listComplaints)
	}

	calls := r.Group("/api/web-call")
	{
		calls.POST("", s.createWebCall)
		calls.GET("/agents", s.listAgents)
		calls.GET("/status", s.rateLimitStatus)
	}

	r.NoRoute(s.static)
	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
