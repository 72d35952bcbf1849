package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bookforge/go-booksite/internal/config"
	"github.com/bookforge/go-booksite/internal/fileutil"
	"github.com/bookforge/go-booksite/internal/yamlutil"
)

// defaultConfigFile is written by init when no path is given.
const defaultConfigFile = config.DefaultName + ".yaml"

// ErrConfigExists is returned by init when the target exists and --force
// was not given.
var ErrConfigExists = errors.New("config file already exists")

// runInit writes a starter config.
func runInit(args []string, env *Environment) error {
	f, path, err := parseInitFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if fileutil.FileExists(path) && !f.force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	cfg := starterConfig()
	mergeSiteFlags(f.site, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- config is not secret
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Wrote %s\n", path)
	return nil
}

// starterConfig is DefaultConfig with the conventional book layout filled in.
func starterConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Source.Dir = "book"
	cfg.Output.Dir = "dist"
	return cfg
}
