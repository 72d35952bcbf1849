// Package process runs the external tools the build delegates to (font
// subsetters, math typesetters) and cleans up browser process trees.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	ErrCommandNotFound = errors.New("command not found")
	ErrCommandFailed   = errors.New("command failed")
)

// NotFoundError names the executable that could not be resolved.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return ErrCommandNotFound.Error() + ": " + e.Name }

func (e *NotFoundError) Unwrap() error { return ErrCommandNotFound }

// maxStderr bounds the stderr excerpt carried in errors.
const maxStderr = 512

// Runner abstracts command execution so callers can be tested without
// spawning real subprocesses.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout []byte, err error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// Run executes name with args, feeding stdin when non-nil. A non-zero exit is
// reported as ErrCommandFailed with a stderr excerpt.
func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, &NotFoundError{Name: name}
	}

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- tool names come from validated config
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrCommandFailed, name, err, excerpt(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// LookPath reports whether name resolves to an executable.
func LookPath(name string) (string, bool) {
	p, err := exec.LookPath(name)
	return p, err == nil
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
