package booksite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookforge/go-booksite/internal/assets"
	"github.com/bookforge/go-booksite/internal/fileutil"
	"github.com/bookforge/go-booksite/internal/fonts"
	"github.com/bookforge/go-booksite/internal/logfields"
	"github.com/bookforge/go-booksite/internal/mathml"
	"github.com/bookforge/go-booksite/internal/pipeline"
)

// Output layout, relative to the site root.
const (
	ScriptDir     = "js"
	StyleDir      = "css"
	FontDir       = "css/fonts"
	NavigatorPath = "js/toc.js"
	BookCSSPath   = "css/book.css"
	MathCSSPath   = "css/math.css"
	CodeCSSPath   = "css/highlight.css"
)

// PageExt is the extension of book pages.
const PageExt = ".xhtml"

// Builder turns an XHTML book into a static site.
// Create with NewBuilder and reuse across builds; it is safe for
// concurrent use.
type Builder struct {
	cfg         settings
	assets      assets.AssetLoader
	highlighter *pipeline.Highlighter
	subsetter   fonts.Subsetter
}

// NewBuilder creates a Builder.
// Returns error if the asset path or the highlight settings are invalid.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:       newSettings(opts),
		assets:    assets.NewEmbeddedLoader(),
		subsetter: fonts.NewCommandSubsetter(),
	}

	if b.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(b.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		b.assets = resolver
	}

	if h := b.cfg.highlight; h != nil {
		hl, err := pipeline.NewHighlighter(h.Selector, h.Language, h.Style)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHighlight, err)
		}
		b.highlighter = hl
	}

	return b, nil
}

// mathRenderer returns a fresh per-build renderer. The cache lives for one
// build so an edited formula is never served stale in watch mode.
func (b *Builder) mathRenderer() *mathml.Cache {
	var r mathml.Renderer = mathml.NativeRenderer{}
	switch {
	case b.cfg.math != nil:
		r = b.cfg.math
	case b.cfg.mathCommand != nil:
		mc := b.cfg.mathCommand
		b.cfg.logger.Debug("math through external command", logfields.Command(mc.Command))
		cr := mathml.NewCommandRenderer(mc.Command, mc.Args...)
		cr.FontURL = mc.FontURL
		if mc.ContainerWidth > 0 {
			cr.ContainerWidth = mc.ContainerWidth
		}
		r = cr
	}
	return mathml.NewCache(r)
}

// Build writes the site for in.
// Context cancellation stops the build between pages.
func (b *Builder) Build(ctx context.Context, in Input) (*BuildResult, error) {
	start := time.Now()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.IndexPage == "" {
		in.IndexPage = pipeline.DefaultIndexPage
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.timeout)
	defer cancel()

	pages, err := listPages(in.SourceDir)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(pages, in.IndexPage) {
		return nil, fmt.Errorf("%w: %s", ErrNoIndexPage, filepath.Join(in.SourceDir, in.IndexPage))
	}

	for _, dir := range []string{"", ScriptDir, StyleDir, FontDir} {
		if err := os.MkdirAll(filepath.Join(in.OutputDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	result := &BuildResult{}
	math := b.mathRenderer()
	tr := b.transformer(in, math)

	steps := []struct {
		name string
		run  func() error
	}{
		{"copy", func() error { return b.copyAssets(ctx, in, result) }},
		{"assets", func() error { return b.emitAssets(in.OutputDir) }},
		{"pages", func() (err error) {
			result.Pages, err = b.buildPages(ctx, tr, in, pages)
			return err
		}},
		{"stylesheets", func() error { return b.writeStylesheets(ctx, in.OutputDir, math) }},
	}
	for _, step := range steps {
		stepStart := time.Now()
		if err := step.run(); err != nil {
			return nil, err
		}
		b.cfg.logger.Debug("stage done", logfields.Stage(step.name), logfields.Duration(time.Since(stepStart)))
	}

	entries, hits := math.Stats()
	result.Duration = time.Since(start)
	b.cfg.logger.Info("site built",
		logfields.Path(in.OutputDir),
		zap.Int("pages", len(result.Pages)),
		zap.Int("copied", result.Copied),
		zap.Int("formulas", entries),
		zap.Int("formula_hits", hits),
		logfields.Duration(result.Duration))
	return result, nil
}

func (b *Builder) transformer(in Input, math pipeline.MathRenderer) *pipeline.Transformer {
	stylesheets := []string{BookCSSPath, MathCSSPath}
	if b.highlighter != nil {
		stylesheets = append(stylesheets, CodeCSSPath)
	}

	indexPath := filepath.Join(in.SourceDir, in.IndexPage)
	sidebar := pipeline.NewSidebar(b.cfg.contents, func(context.Context) ([]byte, error) {
		return os.ReadFile(indexPath) // #nosec G304 -- inside the source directory
	})

	return pipeline.NewTransformer(pipeline.Config{
		IndexPage:     in.IndexPage,
		RemoveScripts: b.cfg.removeScripts,
		Stylesheets:   stylesheets,
		Scripts:       []string{NavigatorPath},
		Math:          math,
		Sidebar:       sidebar,
		Highlighter:   b.highlighter,
		Logger:        b.cfg.logger,
	})
}

// buildPages transforms pages with a bounded number of workers. The first
// failure cancels the pages not yet started.
func (b *Builder) buildPages(ctx context.Context, tr *pipeline.Transformer, in Input, pages []string) ([]PageResult, error) {
	workers := min(ResolvePoolSize(b.cfg.workers), len(pages))
	b.cfg.logger.Debug("building pages", zap.Int("pages", len(pages)), logfields.Workers(workers))

	results := make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range pages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := b.buildPage(gctx, tr, in, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Builder) buildPage(ctx context.Context, tr *pipeline.Transformer, in Input, name string) (PageResult, error) {
	start := time.Now()

	src, err := os.ReadFile(filepath.Join(in.SourceDir, name)) // #nosec G304 -- listed from the source directory
	if err != nil {
		return PageResult{}, fmt.Errorf("%w: %v", ErrPageBuild, err)
	}

	out, stats, err := tr.Transform(ctx, name, src)
	if err != nil {
		if ctx.Err() != nil {
			return PageResult{}, ctx.Err()
		}
		return PageResult{}, fmt.Errorf("%w: %w", ErrPageBuild, err)
	}

	if err := fileutil.WriteFile(filepath.Join(in.OutputDir, name), out); err != nil {
		return PageResult{}, fmt.Errorf("%w: %v", ErrPageBuild, err)
	}

	return PageResult{
		Name:     name,
		Math:     stats.Math,
		Code:     stats.Code,
		Sidebar:  stats.Sidebar,
		Duration: time.Since(start),
	}, nil
}

// copyAssets copies or subsets every entry, in order.
func (b *Builder) copyAssets(ctx context.Context, in Input, result *BuildResult) error {
	for _, c := range in.Copies {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := c.From
		if !filepath.IsAbs(src) {
			src = filepath.Join(in.copyRoot(), src)
		}
		dst := filepath.Join(in.OutputDir, c.To)

		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) && c.Optional {
				b.cfg.logger.Warn("optional asset missing, skipped", logfields.Path(src))
				result.Skipped = append(result.Skipped, c.From)
				continue
			}
			return fmt.Errorf("%w: %v", ErrCopy, err)
		}

		if c.Subset != nil {
			err := b.subsetter.Subset(ctx, fonts.Request{
				Source: src,
				Output: dst,
				Text:   c.Subset.Text,
				Format: c.Subset.format(),
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCopy, err)
			}
			result.Copied++
			b.cfg.logger.Debug("font subset", logfields.Path(dst), zap.String("format", c.Subset.format()))
			continue
		}

		n, err := fileutil.Copy(src, dst)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCopy, err)
		}
		result.Copied += n
		b.cfg.logger.Debug("copied", logfields.Path(dst), zap.Int("files", n))
	}
	return nil
}

// emitAssets writes the navigator script and the site stylesheet.
func (b *Builder) emitAssets(outDir string) error {
	script, err := b.assets.LoadScript(assets.NavigatorScript)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	style, err := b.assets.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}

	if err := fileutil.WriteFile(filepath.Join(outDir, NavigatorPath), []byte(script)); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	if err := fileutil.WriteFile(filepath.Join(outDir, BookCSSPath), []byte(style)); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	return nil
}

// writeStylesheets writes the stylesheets that depend on what the pages
// contained, once every page is done.
func (b *Builder) writeStylesheets(ctx context.Context, outDir string, math *mathml.Cache) error {
	css, err := math.Stylesheet(ctx)
	if err != nil {
		return fmt.Errorf("%w: math stylesheet: %w", ErrAssetLoad, err)
	}
	if err := fileutil.WriteFile(filepath.Join(outDir, MathCSSPath), []byte(css)); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}

	if b.highlighter == nil {
		return nil
	}
	css, err = b.highlighter.CSS()
	if err != nil {
		return fmt.Errorf("%w: highlight stylesheet: %w", ErrAssetLoad, err)
	}
	if err := fileutil.WriteFile(filepath.Join(outDir, CodeCSSPath), []byte(css)); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}
	return nil
}

// listPages returns the page file names at the top of dir, sorted.
func listPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading pages: %w", err)
	}

	var pages []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), PageExt) {
			pages = append(pages, e.Name())
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPages, dir)
	}
	slices.Sort(pages)
	return pages, nil
}
