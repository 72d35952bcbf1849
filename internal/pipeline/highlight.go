package pipeline

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight defaults match the book's Scheme listings.
const (
	DefaultHighlightSelector = "pre.prettyprint"
	DefaultHighlightLanguage = "scheme"
	DefaultHighlightStyle    = "github"
)

// Highlighter replaces the text of matching code blocks with chroma
// token spans. Styling comes from the stylesheet returned by CSS.
type Highlighter struct {
	selector  string
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlighter returns a highlighter for blocks matching selector.
// Empty arguments take the defaults.
func NewHighlighter(selector, language, style string) (*Highlighter, error) {
	if selector == "" {
		selector = DefaultHighlightSelector
	}
	if language == "" {
		language = DefaultHighlightLanguage
	}
	if style == "" {
		style = DefaultHighlightStyle
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
	if !slices.Contains(styles.Names(), style) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	return &Highlighter{
		selector: selector,
		lexer:    chroma.Coalesce(lexer),
		style:    styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}, nil
}

// Apply highlights every matching block under sel and returns how many
// were rewritten.
func (h *Highlighter) Apply(sel *goquery.Selection) (int, error) {
	var (
		count int
		err   error
	)
	sel.Find(h.selector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		var out string
		out, err = h.highlight(block.Text())
		if err != nil {
			return false
		}
		block.SetHtml(out)
		block.AddClass("chroma")
		count++
		return true
	})
	return count, err
}

func (h *Highlighter) highlight(code string) (string, error) {
	it, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenising code block: %w", err)
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return "", fmt.Errorf("formatting code block: %w", err)
	}
	return buf.String(), nil
}

// CSS returns the stylesheet for the configured style.
func (h *Highlighter) CSS() (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("writing highlight stylesheet: %w", err)
	}
	return buf.String(), nil
}
