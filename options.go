package booksite

import (
	"time"

	"go.uber.org/zap"

	"github.com/bookforge/go-booksite/internal/pipeline"
)

// Option configures a Builder or a Checker. Options that do not apply to
// the receiver are ignored.
type Option func(*settings)

type settings struct {
	timeout       time.Duration
	workers       int
	logger        *zap.Logger
	assetPath     string
	math          MathRenderer
	mathCommand   *MathCommand
	highlight     *Highlight
	contents      string
	removeScripts []string
	viewport      [2]int
}

// Defaults.
const (
	defaultTimeout        = 5 * time.Minute
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
)

func newSettings(opts []Option) settings {
	s := settings{
		timeout:       defaultTimeout,
		logger:        zap.NewNop(),
		contents:      pipeline.DefaultContentsSelector,
		removeScripts: pipeline.DefaultRemoveScripts,
		viewport:      [2]int{defaultViewportWidth, defaultViewportHeight},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTimeout bounds a whole build or check.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("booksite: WithTimeout duration must be positive")
	}
	return func(s *settings) { s.timeout = d }
}

// WithWorkers sets how many pages are processed at once. 0 sizes the pool
// from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAssetPath overrides embedded assets with files from dir, which holds
// styles/ and scripts/ subdirectories.
func WithAssetPath(dir string) Option {
	return func(s *settings) { s.assetPath = dir }
}

// WithMathRenderer replaces the native MathML renderer.
func WithMathRenderer(r MathRenderer) Option {
	return func(s *settings) { s.math = r }
}

// WithMathCommand renders math through an external command.
// Ignored when WithMathRenderer is also given.
func WithMathCommand(cmd MathCommand) Option {
	return func(s *settings) { s.mathCommand = &cmd }
}

// WithHighlight enables syntax highlighting of code blocks.
func WithHighlight(h Highlight) Option {
	return func(s *settings) { s.highlight = &h }
}

// WithContentsSelector sets the selector of the contents list on the index
// page the sidebar is built from.
func WithContentsSelector(sel string) Option {
	return func(s *settings) {
		if sel != "" {
			s.contents = sel
		}
	}
}

// WithRemoveScripts sets the head scripts dropped from every page.
func WithRemoveScripts(srcs []string) Option {
	return func(s *settings) { s.removeScripts = srcs }
}

// WithViewport sets the browser window size used by the browser check.
func WithViewport(width, height int) Option {
	return func(s *settings) {
		if width > 0 && height > 0 {
			s.viewport = [2]int{width, height}
		}
	}
}
