package main

import (
	"io"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/bookforge/go-booksite/internal/process"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// LookPath resolves external tools named by the configuration.
	LookPath func(name string) (string, bool)
	// BrowserPath locates Chrome when ROD_BROWSER_BIN is unset.
	BrowserPath func() (string, bool)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LookPath:    process.LookPath,
		BrowserPath: launcher.LookPath,
	}
}
