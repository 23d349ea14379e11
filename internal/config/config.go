package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendYTDLP  = "ytdlp"
	BackendNative = "native"
)

// Config holds the environment driven configuration for the service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"tubestream"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"debug"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console or json

	// Extraction backend: "ytdlp" shells out to yt-dlp, "native" uses kkdai/youtube.
	Backend            string `env:"EXTRACTOR_BACKEND" envDefault:"ytdlp"`
	YTDLPPath          string `env:"YTDLP_PATH"`
	YTDLPInstall       bool   `env:"YTDLP_INSTALL" envDefault:"false"`
	ExtractorHTTPRetry int    `env:"EXTRACTOR_HTTP_RETRIES" envDefault:"3"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads .env files (if present) and parses the environment into Config.
func Load() (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize trims string settings and validates them.
func (c *Config) Normalize() error {
	c.Host = strings.TrimSpace(c.Host)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.YTDLPPath = strings.TrimSpace(c.YTDLPPath)

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.Backend {
	case BackendYTDLP, BackendNative:
	default:
		return fmt.Errorf("EXTRACTOR_BACKEND must be %q or %q, got %q", BackendYTDLP, BackendNative, c.Backend)
	}
	if c.ExtractorHTTPRetry < 0 {
		c.ExtractorHTTPRetry = 0
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SetAddr overrides Host and Port from a host:port string such as ":8080".
func (c *Config) SetAddr(addr string) error {
	host, rawPort, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid listen port %q", rawPort)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	c.Host = host
	c.Port = port
	return nil
}

func loadEnvFiles() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
