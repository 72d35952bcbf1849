package main

import (
	"errors"
	"os"

	booksite "github.com/bookforge/go-booksite"
	"github.com/bookforge/go-booksite/internal/config"
	"github.com/bookforge/go-booksite/internal/process"
	"github.com/bookforge/go-booksite/internal/watch"
)

// Exit codes for the booksite CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Site built or checked clean
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // Missing files, permissions, missing tools
	ExitBrowser = 4 // Browser/Chrome errors
	ExitCheck   = 5 // Check found defects
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is on wrapped errors, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrDefects) {
		return ExitCheck
	}

	if booksite.IsBrowserError(err) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, process.ErrCommandNotFound) ||
		errors.Is(err, booksite.ErrNoPages) ||
		errors.Is(err, booksite.ErrNoIndexPage) ||
		errors.Is(err, booksite.ErrCopy) ||
		errors.Is(err, watch.ErrNoRoot) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, booksite.ErrNoSourceDir) ||
		errors.Is(err, booksite.ErrNoOutputDir) ||
		errors.Is(err, booksite.ErrSameDir) ||
		errors.Is(err, booksite.ErrInvalidCopy) ||
		errors.Is(err, booksite.ErrInvalidFontFormat) ||
		errors.Is(err, booksite.ErrInvalidAssetPath) ||
		errors.Is(err, booksite.ErrHighlight) ||
		errors.Is(err, ErrConfigExists) {
		return ExitUsage
	}

	return ExitGeneral
}
