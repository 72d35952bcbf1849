// Package fonts derives small web fonts holding only the glyphs a book uses.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bookforge/go-booksite/internal/fileutil"
	"github.com/bookforge/go-booksite/internal/process"
)

var (
	ErrEmptyText     = errors.New("fonts: subset text is empty")
	ErrInvalidFormat = errors.New("fonts: unsupported output format")
	ErrSubset        = errors.New("fonts: subsetting failed")
)

// Formats lists the output flavors a subsetter can write.
var Formats = []string{"woff2", "woff", "ttf"}

// ValidFormat reports whether f is one of Formats.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Request describes one subsetting job.
type Request struct {
	Source string // input font file
	Output string // output font file
	Text   string // glyphs to keep
	Format string // one of Formats
}

func (r Request) validate() error {
	if r.Text == "" {
		return ErrEmptyText
	}
	if !ValidFormat(r.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, r.Format)
	}
	return nil
}

// Subsetter writes a subset of a font.
type Subsetter interface {
	Subset(ctx context.Context, req Request) error
}

// DefaultCommand is the fonttools subsetter.
const DefaultCommand = "pyftsubset"

// CommandSubsetter runs pyftsubset, or a compatible tool.
type CommandSubsetter struct {
	Runner  process.Runner
	Command string
}

// NewCommandSubsetter returns a subsetter running DefaultCommand.
func NewCommandSubsetter() *CommandSubsetter {
	return &CommandSubsetter{Runner: process.ExecRunner{}, Command: DefaultCommand}
}

func (s *CommandSubsetter) Subset(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}

	// Glyph lists go through a file: argv encoding of non-ASCII text is
	// unreliable on Windows.
	textPath, cleanup, err := fileutil.WriteTempFile(req.Text, "txt")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubset, err)
	}
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSubset, err)
	}

	args := []string{
		req.Source,
		"--text-file=" + textPath,
		"--output-file=" + req.Output,
		"--layout-features=*",
	}
	// pyftsubset writes plain sfnt unless a flavor is requested.
	if req.Format != "ttf" {
		args = append(args, "--flavor="+req.Format)
	}

	if _, err := s.Runner.Run(ctx, nil, s.Command, args...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubset, filepath.Base(req.Source), err)
	}
	return nil
}
