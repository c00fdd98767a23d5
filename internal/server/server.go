// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"gemini-gateway/internal/common/config"
	"gemini-gateway/internal/common/llm"
	"gemini-gateway/internal/common/logger"
	"gemini-gateway/internal/common/observability"
	gff "gemini-gateway/internal/handlers/generate-from-file"
	gt "gemini-gateway/internal/handlers/generate-text"
)

// maxMultipartMemory caps the part of an upload parsed in memory; the rest
// spills to temporary files that Upload.Release removes.
const maxMultipartMemory = 8 << 20

type Options struct {
	Config        *config.Config
	Generator     llm.Generator
	Logger        logger.Logger
	Observability *observability.Observability
}

// Server owns the router and the http.Server for the generation endpoints.
type Server struct {
	config *config.Config
	logger logger.Logger
	obs    *observability.Observability
	router *mux.Router
	ready  atomic.Bool
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server: config is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("server: generator is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json", "")
	}

	s := &Server{
		config: opts.Config,
		logger: log,
		obs:    opts.Observability,
		router: mux.NewRouter(),
	}

	if err := s.routes(opts.Generator); err != nil {
		return nil, err
	}
	s.ready.Store(true)
	return s, nil
}

func (s *Server) routes(gen llm.Generator) error {
	text, err := gt.NewHandler(gt.HandlerOptions{
		Config:    gt.DefaultConfig(),
		Generator: gen,
		Logger:    s.logger,
	})
	if err != nil {
		return err
	}
	s.router.Handle("/"+gt.Endpoint, text).Methods(http.MethodPost).Name(gt.Endpoint)

	fileCfg := &gff.Config{
		UploadDir:      s.config.Server.UploadDir,
		MaxUploadBytes: s.config.Server.MaxUploadBytes,
		MaxMemoryBytes: min(int64(maxMultipartMemory), s.config.Server.MaxUploadBytes),
	}
	for _, m := range gff.Modalities() {
		h, err := gff.NewHandler(gff.HandlerOptions{
			Modality:  m,
			Config:    fileCfg,
			Generator: gen,
			Logger:    s.logger,
		})
		if err != nil {
			return err
		}
		endpoint := h.Modality().Endpoint
		s.router.Handle("/"+endpoint, h).Methods(http.MethodPost).Name(endpoint)
	}

	s.registerHealthRoutes()

	s.router.NotFoundHandler = http.HandlerFunc(notFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	s.router.Use(s.requestMiddleware)
	return nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Server.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and shuts down gracefully once ctx is done.
// In-flight requests get up to server.shutdown_timeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: config.GetDuration(s.config.Server.ReadTimeout),
		ReadTimeout:       config.GetDuration(s.config.Server.ReadTimeout),
		WriteTimeout:      config.GetDuration(s.config.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{
			"address": ln.Addr().String(),
		})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.ready.Store(false)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.ready.Store(false)
	s.logger.Info("Shutdown signal received, draining requests", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.config.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully", nil)
	return nil
}
