package pipeline

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bookforge/go-booksite/internal/logfields"
)

// DefaultIndexPage is the landing page of a book.
const DefaultIndexPage = "index.xhtml"

// DefaultRemoveScripts lists legacy head scripts the site no longer ships.
var DefaultRemoveScripts = []string{
	"js/jquery.min.js",
	"js/footnotes.js",
	"js/browsertest.js",
}

// MathRenderer turns one <math> element into its published form.
// mathml.Renderer and mathml.Cache satisfy it.
type MathRenderer interface {
	Render(ctx context.Context, mathml string, display bool) (string, error)
}

// Config configures a Transformer. Nil Math leaves MathML untouched, nil
// Sidebar and nil Highlighter disable those stages.
type Config struct {
	IndexPage     string
	RemoveScripts []string
	Stylesheets   []string // appended to <head> in order
	Scripts       []string // appended to <head> after the stylesheets
	Math          MathRenderer
	Sidebar       *Sidebar
	Highlighter   *Highlighter
	Logger        *zap.Logger
}

// Stats describes what a transform did to one page.
type Stats struct {
	Math    int
	Code    int
	Sidebar bool
}

// Transformer rewrites pages. Safe for concurrent use when its Math
// renderer is.
type Transformer struct {
	cfg     Config
	removed map[string]bool
}

// NewTransformer returns a transformer for cfg.
func NewTransformer(cfg Config) *Transformer {
	if cfg.IndexPage == "" {
		cfg.IndexPage = DefaultIndexPage
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	removed := make(map[string]bool, len(cfg.RemoveScripts))
	for _, src := range cfg.RemoveScripts {
		removed[src] = true
	}
	return &Transformer{cfg: cfg, removed: removed}
}

// Transform rewrites the page called name.
func (t *Transformer) Transform(ctx context.Context, name string, src []byte) ([]byte, Stats, error) {
	var stats Stats

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	doc, decl, err := parsePage(src)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", name, err)
	}

	t.rewriteHead(doc.Find("head").First())

	// The HTML parser always synthesizes <head> and <body>.
	body := doc.Find("body").First()
	main := element("main")
	adoptChildren(body.Get(0), main)
	body.Get(0).AppendChild(main)
	mainSel := body.ChildrenFiltered("main").Last()

	isIndex := name == t.cfg.IndexPage
	if isIndex {
		mainSel.Find("nav.header").First().Remove()
	}

	if t.cfg.Math != nil {
		if stats.Math, err = t.renderMath(ctx, mainSel); err != nil {
			return nil, stats, fmt.Errorf("%s: %w", name, err)
		}
	}

	if t.cfg.Highlighter != nil {
		if stats.Code, err = t.cfg.Highlighter.Apply(mainSel); err != nil {
			return nil, stats, fmt.Errorf("%s: %w", name, err)
		}
	}

	if !isIndex && t.cfg.Sidebar != nil {
		aside, err := t.cfg.Sidebar.HTML(ctx)
		if err != nil {
			return nil, stats, fmt.Errorf("%s: sidebar: %w", name, err)
		}
		mainSel.BeforeHtml(aside)
		stats.Sidebar = true
	}

	out, err := renderPage(doc, decl)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", name, err)
	}

	t.cfg.Logger.Debug("page transformed",
		logfields.Page(name),
		logfields.Math(stats.Math),
		logfields.Code(stats.Code),
		logfields.Sidebar(stats.Sidebar))
	return out, stats, nil
}

func (t *Transformer) rewriteHead(head *goquery.Selection) {
	if head.Length() == 0 {
		return
	}

	head.Find("script[src]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		return t.removed[src]
	}).Remove()

	n := head.Get(0)
	for _, href := range t.cfg.Stylesheets {
		n.AppendChild(element("link", "rel", "stylesheet", "href", href))
	}
	for _, src := range t.cfg.Scripts {
		n.AppendChild(element("script", "src", src))
	}
}

// renderMath replaces every <math> under sel with the renderer's output.
func (t *Transformer) renderMath(ctx context.Context, sel *goquery.Selection) (int, error) {
	var (
		count int
		err   error
	)
	sel.Find("math").Not("math math").EachWithBreak(func(_ int, m *goquery.Selection) bool {
		var src, out string
		if src, err = goquery.OuterHtml(m); err != nil {
			err = fmt.Errorf("%w: %v", ErrMath, err)
			return false
		}
		display := m.AttrOr("display", "") == "block"
		if out, err = t.cfg.Math.Render(ctx, src, display); err != nil {
			err = fmt.Errorf("%w: %w", ErrMath, err)
			return false
		}
		m.ReplaceWithHtml(out)
		count++
		return true
	})
	return count, err
}
