package booksite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookforge/go-booksite/internal/fonts"
)

// DefaultFontFormat is used when a FontSubset leaves Format empty.
const DefaultFontFormat = "woff2"

// Input describes one build.
type Input struct {
	SourceDir string      // directory holding the .xhtml pages (required)
	OutputDir string      // generated site root (required)
	IndexPage string      // landing page name, default "index.xhtml"
	AssetRoot string      // directory CopyEntry.From is resolved against, default SourceDir
	Copies    []CopyEntry // assets copied into OutputDir before pages are written
}

// copyRoot returns the directory copy sources are relative to.
func (in *Input) copyRoot() string {
	if in.AssetRoot != "" {
		return in.AssetRoot
	}
	return in.SourceDir
}

// Validate checks the input before anything is written.
func (in *Input) Validate() error {
	if strings.TrimSpace(in.SourceDir) == "" {
		return ErrNoSourceDir
	}
	if strings.TrimSpace(in.OutputDir) == "" {
		return ErrNoOutputDir
	}
	if filepath.Clean(in.SourceDir) == filepath.Clean(in.OutputDir) {
		return fmt.Errorf("%w: %s", ErrSameDir, in.OutputDir)
	}
	if strings.ContainsAny(in.IndexPage, `/\`) {
		return fmt.Errorf("%w: index page %q must be a file name", ErrNoIndexPage, in.IndexPage)
	}
	for i := range in.Copies {
		if err := in.Copies[i].Validate(); err != nil {
			return fmt.Errorf("copies[%d]: %w", i, err)
		}
	}
	return nil
}

// CopyEntry copies a file or directory into the site.
// A relative From is resolved against Input.AssetRoot and may leave it
// (fonts usually live in a package directory next to the book). To is
// relative to Input.OutputDir and must stay inside it.
type CopyEntry struct {
	From     string
	To       string
	Optional bool        // a missing source is skipped with a warning
	Subset   *FontSubset // nil = plain copy
}

// Validate checks that both ends are set and that To stays inside the
// output directory.
func (c *CopyEntry) Validate() error {
	if c.From == "" || c.To == "" {
		return fmt.Errorf("%w: from and to are required", ErrInvalidCopy)
	}
	if filepath.IsAbs(c.To) || escapes(c.To) {
		return fmt.Errorf("%w: %q must be relative and stay inside the output directory", ErrInvalidCopy, c.To)
	}
	return c.Subset.Validate()
}

func escapes(p string) bool {
	clean := filepath.Clean(p)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// FontSubset turns a CopyEntry into a font subset of the listed glyphs.
type FontSubset struct {
	Text   string // glyphs to keep (required)
	Format string // woff2 (default), woff or ttf
}

// Validate checks the subset settings.
// Returns nil if f is nil (nil means plain copy).
func (f *FontSubset) Validate() error {
	if f == nil {
		return nil
	}
	if f.Text == "" {
		return fmt.Errorf("%w: subset text is empty", ErrInvalidCopy)
	}
	if f.Format != "" && !fonts.ValidFormat(f.Format) {
		return fmt.Errorf("%w: %q (must be woff2, woff or ttf)", ErrInvalidFontFormat, f.Format)
	}
	return nil
}

func (f *FontSubset) format() string {
	if f.Format == "" {
		return DefaultFontFormat
	}
	return f.Format
}

// Highlight configures code block highlighting. Empty fields take the
// pipeline defaults (pre.prettyprint, scheme, github).
type Highlight struct {
	Selector string
	Language string
	Style    string
}

// MathRenderer turns one <math> element into HTML. Stylesheet is called
// once after every page, with the distinct expressions rendered by the build.
type MathRenderer interface {
	Render(ctx context.Context, mathml string, display bool) (string, error)
	Stylesheet(ctx context.Context, used []string) (string, error)
}

// MathCommand configures an external math typesetting command.
type MathCommand struct {
	Command        string
	Args           []string
	FontURL        string
	ContainerWidth int // pixels, 0 = default
}

// BuildResult summarizes a build.
type BuildResult struct {
	Pages    []PageResult // in file name order
	Copied   int          // files copied or subset
	Skipped  []string     // optional copies whose source was missing
	Duration time.Duration
}

// MathCount returns the number of formulas rendered across all pages.
func (r *BuildResult) MathCount() int {
	n := 0
	for _, p := range r.Pages {
		n += p.Math
	}
	return n
}

// PageResult describes one written page.
type PageResult struct {
	Name     string
	Math     int
	Code     int
	Sidebar  bool
	Duration time.Duration
}

// CheckInput describes a check of a built site.
type CheckInput struct {
	Dir       string // built site root (required)
	IndexPage string // landing page name, default "index.xhtml"
	Browser   bool   // also compare the navigator model with the browser
	Samples   int    // anchors scrolled to per page in the browser pass, 0 = all
}

// CheckReport lists the defects found in a site.
type CheckReport struct {
	Pages      int
	Disabled   []string        // pages whose navigator binds nothing
	Missing    []MissingAnchor // sidebar links pointing at absent anchors
	Mismatches []Mismatch      // browser pass disagreements
}

// Defects counts missing anchors and mismatches. Disabled pages are not
// defects on their own.
func (r *CheckReport) Defects() int {
	return len(r.Missing) + len(r.Mismatches)
}

// MissingAnchor is a sidebar link whose fragment names no element of its page.
type MissingAnchor struct {
	Page   string
	Anchor string
}

func (m MissingAnchor) String() string {
	return m.Page + ": no element with id " + fmt.Sprintf("%q", m.Anchor)
}

// Mismatch is a disagreement between the navigator model and the page.
type Mismatch struct {
	Page     string
	ScrollTo string // anchor scrolled to, "" for the initial state
	Field    string // "anchor" or "fragment"
	Model    string
	Browser  string
}

func (m Mismatch) String() string {
	at := "initial state"
	if m.ScrollTo != "" {
		at = "after scrolling to " + m.ScrollTo
	}
	return fmt.Sprintf("%s: %s: %s = %q, browser has %q", m.Page, at, m.Field, m.Model, m.Browser)
}
