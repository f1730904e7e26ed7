package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL  = "http://localhost:5000"
	defaultHTTPTimeout = 15 * time.Second
	defaultStubAddr    = "0.0.0.0:5000"

	envAPIBaseURL  = "POLLBOOTH_API_URL"
	envSessionFile = "POLLBOOTH_SESSION_FILE"
	envHTTPTimeout = "POLLBOOTH_HTTP_TIMEOUT"
	envExportDir   = "POLLBOOTH_EXPORT_DIR"
	envStubAddr    = "POLLBOOTH_STUB_ADDR"
)

// Config captures runtime settings for the pollbooth client.
type Config struct {
	APIBaseURL  string
	SessionFile string
	HTTPTimeout time.Duration
	ExportDir   string
	StubAddr    string
}

// Load reads an optional .env file, then the environment, filling in
// defaults for anything unset.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:  defaultAPIBaseURL,
		HTTPTimeout: defaultHTTPTimeout,
		ExportDir:   ".",
		StubAddr:    defaultStubAddr,
	}

	if url := os.Getenv(envAPIBaseURL); url != "" {
		cfg.APIBaseURL = url
	}
	if addr := os.Getenv(envStubAddr); addr != "" {
		cfg.StubAddr = addr
	}
	if dir := os.Getenv(envExportDir); dir != "" {
		cfg.ExportDir = dir
	}

	if raw := os.Getenv(envHTTPTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envHTTPTimeout, err)
		}
		cfg.HTTPTimeout = timeout
	}

	if path := os.Getenv(envSessionFile); path != "" {
		cfg.SessionFile = path
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.SessionFile = filepath.Join(home, ".pollbooth", "session.json")
	}

	return cfg, nil
}
