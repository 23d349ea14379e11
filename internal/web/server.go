package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lvcoi/tubestream/internal/extract"
	"github.com/lvcoi/tubestream/internal/metrics"
)

//go:embed assets/*
var embeddedAssets embed.FS

// Options configures a Server.
type Options struct {
	ServiceName    string
	MetricsEnabled bool
}

// Server serves the landing page and the search/stream API on top of an
// Extractor.
type Server struct {
	extractor extract.Extractor
	log       zerolog.Logger
	opts      Options
	assets    fs.FS
}

// NewServer returns a Server that extracts with ex and logs through log.
func NewServer(ex extract.Extractor, log zerolog.Logger, opts Options) *Server {
	assets, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "tubestream"
	}
	return &Server{
		extractor: ex,
		log:       log,
		opts:      opts,
		assets:    assets,
	}
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(withSecurityHeaders)
	if s.opts.MetricsEnabled {
		r.Use(recordMetrics)
		r.Handle("/metrics", metrics.Handler())
	}

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.assets))))
	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	r.Get("/stream/{videoID}", s.handleStream)
	return r
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log zerolog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
