package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	booksite "github.com/bookforge/go-booksite"
	"github.com/bookforge/go-booksite/internal/config"
	"github.com/bookforge/go-booksite/internal/hints"
	"github.com/bookforge/go-booksite/internal/process"
)

// runMain dispatches args (without the program name) and returns the exit
// code.
func runMain(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "build":
		err = runBuild(ctx, rest, env)
	case "check":
		err = runCheck(ctx, rest, env)
	case "watch":
		err = runWatch(ctx, rest, env)
	case "init":
		err = runInit(rest, env)
	case "doctor":
		err = runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "go-booksite %s\n", Version)
	case "help", "-h", "--help":
		err = runHelp(rest, env)
	default:
		printUsage(env.Stderr)
		err = fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// hintFor returns the actionable hint for err, or "".
func hintFor(err error) string {
	var notFound *process.NotFoundError
	switch {
	case booksite.IsBrowserError(err):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		searched := []string{defaultConfigFile}
		if dir, dirErr := config.UserDir(); dirErr == nil {
			searched = append(searched, filepath.Join(dir, defaultConfigFile))
		}
		return hints.ForConfigNotFound(searched)
	case errors.As(err, &notFound):
		return hints.ForMissingTool(notFound.Name)
	case errors.Is(err, ErrDefects):
		return hints.ForDefects()
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
