package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	booksite "github.com/bookforge/go-booksite"
)

// ErrDefects is returned when check finds missing anchors or mismatches.
var ErrDefects = errors.New("site has defects")

// maxListed bounds the defects printed without --verbose.
const maxListed = 5

// runCheck executes the check command.
func runCheck(ctx context.Context, args []string, env *Environment) error {
	f, err := parseCheckFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if f.samples < 0 {
		return fmt.Errorf("%w: --samples must not be negative", ErrUsage)
	}
	warnUnknownEnvVars(env.Stderr)

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(f.common.config, envCfg)
	if err != nil {
		return err
	}
	timeout, err := resolveTimeout(f.timeout, envCfg.Timeout, cfg.Build)
	if err != nil {
		return err
	}

	in := booksite.CheckInput{
		Dir:       cfg.Output.Dir,
		IndexPage: cfg.Source.IndexPage,
		Browser:   f.browser || cfg.Check.Browser,
		Samples:   cfg.Check.Samples,
	}
	if f.dir != "" {
		in.Dir = f.dir
	}
	if f.samples > 0 {
		in.Samples = f.samples
	}

	logger := newLogger(env.Stderr, f.common)
	defer func() { _ = logger.Sync() }()

	opts := []booksite.Option{
		booksite.WithLogger(logger),
		booksite.WithWorkers(cfg.Build.Workers),
	}
	if timeout > 0 {
		opts = append(opts, booksite.WithTimeout(timeout))
	}

	report, err := booksite.NewChecker(opts...).Check(ctx, in)
	if err != nil {
		return err
	}
	if !f.common.quiet {
		printCheckReport(env.Stdout, report, in, f.common.verbose)
	}
	if n := report.Defects(); n > 0 {
		return fmt.Errorf("%w: %d found", ErrDefects, n)
	}
	return nil
}

// printCheckReport prints a summary and the defects, capped at maxListed
// unless verbose.
func printCheckReport(w io.Writer, r *booksite.CheckReport, in booksite.CheckInput, verbose bool) {
	mode := "static"
	if in.Browser {
		mode = "static+browser"
	}
	fmt.Fprintf(w, "Checked %d pages in %s (%s): %d defects\n", r.Pages, in.Dir, mode, r.Defects())

	var lines []string
	for _, m := range r.Missing {
		lines = append(lines, "missing anchor  "+m.String())
	}
	for _, m := range r.Mismatches {
		lines = append(lines, "mismatch        "+m.String())
	}
	listed := lines
	if !verbose && len(lines) > maxListed {
		listed = lines[:maxListed]
	}
	for _, l := range listed {
		fmt.Fprintf(w, "  %s\n", l)
	}
	if rest := len(lines) - len(listed); rest > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", rest)
	}

	if verbose {
		for _, p := range r.Disabled {
			fmt.Fprintf(w, "  navigator off   %s (no sidebar link into the page)\n", p)
		}
	}
}
