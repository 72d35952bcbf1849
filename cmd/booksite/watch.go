package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	booksite "github.com/bookforge/go-booksite"
	"github.com/bookforge/go-booksite/internal/watch"
)

// runWatch builds once, then rebuilds whenever the source tree changes,
// until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags("watch", args, env.Stderr)
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
	in := buildInput(cfg)
	if err := in.Validate(); err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		result, err := b.Build(ctx, in)
		if err != nil {
			return err
		}
		if !f.common.quiet {
			printBuildResult(env.Stdout, result, in.OutputDir, f.common.verbose)
		}
		return nil
	}

	// A broken page should not stop the session; the next save retries.
	if err := rebuild(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if exitCodeFor(err) == ExitUsage {
			return err
		}
		logger.Error("initial build failed", zap.Error(err))
	}

	w := watch.New(in.SourceDir,
		watch.WithLogger(logger),
		watch.WithExclude(in.OutputDir))
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", in.SourceDir)
	}
	return w.Run(ctx, rebuild)
}
