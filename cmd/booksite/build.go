package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	booksite "github.com/bookforge/go-booksite"
	"github.com/bookforge/go-booksite/internal/config"
)

// runBuild executes the build command.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags("build", args, env.Stderr)
	if err != nil {
		return err
	}
	warnUnknownEnvVars(env.Stderr)

	cfg, timeout, err := resolveBuildConfig(f, loadEnvConfig())
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common)
	defer func() { _ = logger.Sync() }()

	b, err := booksite.NewBuilder(builderOptions(cfg, timeout, logger)...)
	if err != nil {
		return err
	}
	result, err := b.Build(ctx, buildInput(cfg))
	if err != nil {
		return err
	}
	if !f.common.quiet {
		printBuildResult(env.Stdout, result, cfg.Output.Dir, f.common.verbose)
	}
	return nil
}

// loadConfig loads the named config, falling back to BOOKSITE_CONFIG and
// then to an optional booksite.yaml. Environment values are applied on top.
func loadConfig(name string, env *envConfig) (*config.Config, error) {
	if name == "" {
		name = env.ConfigPath
	}

	var cfg *config.Config
	var err error
	if name != "" {
		cfg, err = config.LoadConfig(name)
	} else {
		cfg, err = config.LoadConfig(config.DefaultName)
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.DefaultConfig(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// resolveBuildConfig merges config file, environment and flags, validates the
// result and resolves the timeout.
func resolveBuildConfig(f *buildFlags, env *envConfig) (*config.Config, time.Duration, error) {
	cfg, err := loadConfig(f.common.config, env)
	if err != nil {
		return nil, 0, err
	}
	mergeBuildFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	timeout, err := resolveTimeout(f.timeout, env.Timeout, cfg.Build)
	if err != nil {
		return nil, 0, err
	}
	return cfg, timeout, nil
}

// mergeBuildFlags overrides config values with the flags that were given.
func mergeBuildFlags(f *buildFlags, cfg *config.Config) {
	mergeSiteFlags(f.site, cfg)
	if f.workers != 0 {
		cfg.Build.Workers = f.workers
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.highlight {
		cfg.Highlight.Enabled = true
	}
	if f.math != "" {
		cfg.Math.Renderer = f.math
	}
}

func mergeSiteFlags(f siteFlags, cfg *config.Config) {
	if f.source != "" {
		cfg.Source.Dir = f.source
	}
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.indexPage != "" {
		cfg.Source.IndexPage = f.indexPage
	}
}

// resolveTimeout picks the flag, then the environment, then the config
// value. Zero means the library default.
func resolveTimeout(flagValue string, envValue time.Duration, cfg config.BuildConfig) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: --timeout: %v", ErrUsage, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --timeout must be positive", ErrUsage)
		}
		return d, nil
	}
	if envValue > 0 {
		return envValue, nil
	}
	return cfg.TimeoutDuration()
}

// builderOptions translates a validated config into Builder options.
func builderOptions(cfg *config.Config, timeout time.Duration, logger *zap.Logger) []booksite.Option {
	opts := []booksite.Option{
		booksite.WithLogger(logger),
		booksite.WithWorkers(cfg.Build.Workers),
		booksite.WithAssetPath(cfg.Assets.BasePath),
		booksite.WithContentsSelector(cfg.Source.Contents),
	}
	if timeout > 0 {
		opts = append(opts, booksite.WithTimeout(timeout))
	}
	if len(cfg.RemoveScripts) > 0 {
		opts = append(opts, booksite.WithRemoveScripts(cfg.RemoveScripts))
	}
	if cfg.Math.Renderer == config.MathCommand {
		opts = append(opts, booksite.WithMathCommand(booksite.MathCommand{
			Command:        cfg.Math.Command,
			Args:           cfg.Math.Args,
			FontURL:        cfg.Math.FontURL,
			ContainerWidth: cfg.Math.ContainerWidth,
		}))
	}
	if cfg.Highlight.Enabled {
		opts = append(opts, booksite.WithHighlight(booksite.Highlight{
			Selector: cfg.Highlight.Selector,
			Language: cfg.Highlight.Language,
			Style:    cfg.Highlight.Style,
		}))
	}
	return opts
}

// buildInput maps the config onto a build request.
func buildInput(cfg *config.Config) booksite.Input {
	in := booksite.Input{
		SourceDir: cfg.Source.Dir,
		OutputDir: cfg.Output.Dir,
		IndexPage: cfg.Source.IndexPage,
		AssetRoot: cfg.Dir,
	}
	for _, c := range cfg.Copies {
		entry := booksite.CopyEntry{From: c.From, To: c.To, Optional: c.Optional}
		if c.Subset != nil {
			entry.Subset = &booksite.FontSubset{Text: c.Subset.Text, Format: c.Subset.Format}
		}
		in.Copies = append(in.Copies, entry)
	}
	return in
}

// printBuildResult prints a one-line summary, and per-page lines if verbose.
func printBuildResult(w io.Writer, r *booksite.BuildResult, outDir string, verbose bool) {
	fmt.Fprintf(w, "Built %d pages (%d formulas, %d assets copied) in %s -> %s\n",
		len(r.Pages), r.MathCount(), r.Copied, r.Duration.Round(time.Millisecond), outDir)
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "  skipped %s (optional, missing)\n", s)
	}
	if !verbose {
		return
	}
	for _, p := range r.Pages {
		fmt.Fprintf(w, "  %-24s math=%d code=%d sidebar=%t %s\n",
			p.Name, p.Math, p.Code, p.Sidebar, p.Duration.Round(time.Microsecond))
	}
}
