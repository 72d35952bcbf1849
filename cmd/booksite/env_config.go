package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bookforge/go-booksite/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without a YAML file.
type envConfig struct {
	ConfigPath string        // BOOKSITE_CONFIG: config file name or path
	SourceDir  string        // BOOKSITE_SOURCE_DIR: book directory
	OutputDir  string        // BOOKSITE_OUTPUT_DIR: site directory
	AssetPath  string        // BOOKSITE_ASSET_PATH: asset override directory
	Timeout    time.Duration // BOOKSITE_TIMEOUT: build or check timeout
	Workers    int           // BOOKSITE_WORKERS: page workers
	Browser    bool          // BOOKSITE_BROWSER: run the browser check
}

// knownEnvVars lists valid BOOKSITE_* environment variables.
// BOOKSITE_CONTAINER is read by doctor.
var knownEnvVars = map[string]bool{
	"BOOKSITE_CONFIG":     true,
	"BOOKSITE_SOURCE_DIR": true,
	"BOOKSITE_OUTPUT_DIR": true,
	"BOOKSITE_ASSET_PATH": true,
	"BOOKSITE_TIMEOUT":    true,
	"BOOKSITE_WORKERS":    true,
	"BOOKSITE_BROWSER":    true,
	"BOOKSITE_CONTAINER":  true,
}

// loadEnvConfig reads the recognized BOOKSITE_* variables. Unparsable
// numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("BOOKSITE_CONFIG"),
		SourceDir:  os.Getenv("BOOKSITE_SOURCE_DIR"),
		OutputDir:  os.Getenv("BOOKSITE_OUTPUT_DIR"),
		AssetPath:  os.Getenv("BOOKSITE_ASSET_PATH"),
	}

	if timeout := os.Getenv("BOOKSITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("BOOKSITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if browser := os.Getenv("BOOKSITE_BROWSER"); browser != "" {
		cfg.Browser, _ = strconv.ParseBool(browser)
	}

	return cfg
}

// warnUnknownEnvVars warns about unrecognized BOOKSITE_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "BOOKSITE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config values left empty by the file.
// Precedence: CLI flags > env vars > config file > defaults. Flags are
// merged afterwards; the timeout is resolved separately in resolveTimeout.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.SourceDir != "" && cfg.Source.Dir == "" {
		cfg.Source.Dir = env.SourceDir
	}
	if env.OutputDir != "" && cfg.Output.Dir == "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Workers > 0 && cfg.Build.Workers == 0 {
		cfg.Build.Workers = env.Workers
	}
	if env.Browser {
		cfg.Check.Browser = true
	}
}
