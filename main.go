package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lvcoi/tubestream/internal/config"
	"github.com/lvcoi/tubestream/internal/extract"
	"github.com/lvcoi/tubestream/internal/logging"
	"github.com/lvcoi/tubestream/internal/web"
)

func main() {
	var addr, backend, logLevel string
	flag.StringVar(&addr, "addr", "", "listen address host:port (overrides HOST and PORT)")
	flag.StringVar(&backend, "backend", "", "extraction backend: ytdlp or native (overrides EXTRACTOR_BACKEND)")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if err := applyFlags(cfg, addr, backend, logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ex, err := newExtractor(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Backend).Msg("extractor unavailable")
		os.Exit(1)
	}
	srv := web.NewServer(ex, log, web.Options{
		ServiceName:    cfg.ServiceName,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	log.Debug().
		Str("addr", cfg.Addr()).
		Str("backend", ex.Name()).
		Str("environment", cfg.Environment).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("starting server")

	if err := web.ListenAndServe(ctx, cfg.Addr(), srv.Routes(), cfg.ShutdownTimeout, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func applyFlags(cfg *config.Config, addr, backend, logLevel string) error {
	if addr != "" {
		if err := cfg.SetAddr(addr); err != nil {
			return err
		}
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg.Normalize()
}

func newExtractor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (extract.Extractor, error) {
	switch cfg.Backend {
	case config.BackendNative:
		return extract.NewNative(cfg.ExtractorHTTPRetry), nil
	default:
		executable := cfg.YTDLPPath
		if cfg.YTDLPInstall {
			log.Info().Msg("ensuring yt-dlp is installed")
			installed, err := extract.InstallYTDLP(ctx)
			if err != nil {
				return nil, err
			}
			if executable == "" {
				executable = installed
			}
			log.Debug().Str("executable", installed).Msg("yt-dlp ready")
		}
		return extract.NewYTDLP(executable), nil
	}
}
