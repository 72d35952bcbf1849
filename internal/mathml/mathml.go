// Package mathml turns MathML islands of a page into their published form.
//
// Typesetting is delegated: NativeRenderer keeps the MathML for browsers that
// implement MathML Core, CommandRenderer pipes each expression through an
// external typesetter such as a MathJax CLI.
package mathml

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/bookforge/go-booksite/internal/process"
)

var (
	ErrEmptyInput  = errors.New("mathml: empty expression")
	ErrRender      = errors.New("mathml: render failed")
	ErrNoCommand   = errors.New("mathml: no typesetting command configured")
	ErrEmptyOutput = errors.New("mathml: typesetter produced no output")
)

// DefaultContainerWidth is the line width, in pixels, display math is broken
// against (25em at 16px).
const DefaultContainerWidth = 400

// Renderer converts one MathML expression and provides the stylesheet its
// output needs. Stylesheet receives every distinct expression rendered
// during the build, so typesetters that emit per-glyph CSS can cover them.
type Renderer interface {
	Render(ctx context.Context, mathml string, display bool) (string, error)
	Stylesheet(ctx context.Context, used []string) (string, error)
}

// NativeRenderer keeps MathML as is, wrapped in a span carrying the mode.
type NativeRenderer struct{}

func (NativeRenderer) Render(ctx context.Context, mathml string, display bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(mathml) == "" {
		return "", ErrEmptyInput
	}
	mode := "math-inline"
	if display {
		mode = "math-display"
	}
	return `<span class="math ` + mode + `">` + mathml + `</span>`, nil
}

const nativeStylesheet = `.math-display {
  display: block;
  margin: 1em 0;
  overflow-x: auto;
  text-align: center;
}
.math-display > math {
  display: block math;
}
.math-inline > math {
  display: inline math;
}
`

func (NativeRenderer) Stylesheet(context.Context, []string) (string, error) {
	return nativeStylesheet, nil
}

// CommandRenderer runs an external typesetter once per expression. The
// expression is written to stdin and the HTML is read from stdout. The
// stylesheet comes from one extra run with StylesheetArg, fed the rendered
// expressions on stdin, one per line.
//
// Arguments passed to the command, after Args:
//
//	--display | --inline
//	--container-width <px>
//	--font-url <url>       (when FontURL is set)
type CommandRenderer struct {
	Runner         process.Runner
	Command        string
	Args           []string
	ContainerWidth int
	FontURL        string
	StylesheetArg  string
}

// NewCommandRenderer returns a renderer over command with the default
// container width and a real runner.
func NewCommandRenderer(command string, args ...string) *CommandRenderer {
	return &CommandRenderer{
		Runner:         process.ExecRunner{},
		Command:        command,
		Args:           args,
		ContainerWidth: DefaultContainerWidth,
		StylesheetArg:  "--stylesheet",
	}
}

func (r *CommandRenderer) Render(ctx context.Context, mathml string, display bool) (string, error) {
	if strings.TrimSpace(mathml) == "" {
		return "", ErrEmptyInput
	}
	if r.Command == "" {
		return "", ErrNoCommand
	}

	args := append([]string(nil), r.Args...)
	if display {
		args = append(args, "--display")
	} else {
		args = append(args, "--inline")
	}
	width := r.ContainerWidth
	if width <= 0 {
		width = DefaultContainerWidth
	}
	args = append(args, "--container-width", strconv.Itoa(width))
	if r.FontURL != "" {
		args = append(args, "--font-url", r.FontURL)
	}

	out, err := r.Runner.Run(ctx, []byte(mathml), r.Command, args...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	html := strings.TrimSpace(string(out))
	if html == "" {
		return "", ErrEmptyOutput
	}
	return html, nil
}

func (r *CommandRenderer) Stylesheet(ctx context.Context, used []string) (string, error) {
	if r.Command == "" {
		return "", ErrNoCommand
	}
	args := append(append([]string(nil), r.Args...), r.StylesheetArg)
	out, err := r.Runner.Run(ctx, joinLines(used), r.Command, args...)
	if err != nil {
		return "", fmt.Errorf("%w: stylesheet: %w", ErrRender, err)
	}
	return string(out), nil
}

// joinLines writes one expression per line. Line breaks inside an
// expression are whitespace between MathML tags and become spaces.
func joinLines(exprs []string) []byte {
	var b strings.Builder
	for _, e := range exprs {
		b.WriteString(strings.Join(strings.Fields(e), " "))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Cache memoizes a Renderer for the lifetime of one build. Books repeat the
// same small expressions many times. Safe for concurrent use.
type Cache struct {
	next Renderer

	mu      sync.Mutex
	entries map[cacheKey]string
	hits    int
}

type cacheKey struct {
	mathml  string
	display bool
}

// NewCache wraps next.
func NewCache(next Renderer) *Cache {
	return &Cache{next: next, entries: make(map[cacheKey]string)}
}

func (c *Cache) Render(ctx context.Context, mathml string, display bool) (string, error) {
	key := cacheKey{mathml: mathml, display: display}

	c.mu.Lock()
	if out, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	out, err := c.next.Render(ctx, mathml, display)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = out
	c.mu.Unlock()
	return out, nil
}

// Stylesheet asks the wrapped renderer for the stylesheet covering every
// expression rendered so far. Call it once all pages are done.
func (c *Cache) Stylesheet(ctx context.Context) (string, error) {
	return c.next.Stylesheet(ctx, c.Used())
}

// Used returns the distinct expressions rendered so far, sorted. An
// expression rendered both inline and as display appears once.
func (c *Cache) Used() []string {
	c.mu.Lock()
	used := make([]string, 0, len(c.entries))
	for k := range c.entries {
		used = append(used, k.mathml)
	}
	c.mu.Unlock()
	slices.Sort(used)
	return slices.Compact(used)
}

// Stats returns the number of distinct expressions rendered and cache hits.
func (c *Cache) Stats() (entries, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits
}
