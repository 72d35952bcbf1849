package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// DefaultContentsSelector selects the contents list of the landing page.
const DefaultContentsSelector = ".contents"

// sectionNumber matches a leading section number such as "1", "1.2" or "3.5.4".
var sectionNumber = regexp.MustCompile(`^[\d.]+$`)

// Sidebar builds the <aside> shared by all pages from the landing page's
// contents list. The markup is computed on first use and memoized; the
// first error is memoized too. Safe for concurrent use.
type Sidebar struct {
	selector string
	load     func(ctx context.Context) ([]byte, error)

	once  sync.Once
	html  string
	links int
	err   error
}

// NewSidebar returns a sidebar built from the page load returns.
func NewSidebar(selector string, load func(ctx context.Context) ([]byte, error)) *Sidebar {
	if selector == "" {
		selector = DefaultContentsSelector
	}
	return &Sidebar{selector: selector, load: load}
}

// HTML returns the rendered <aside>.
func (s *Sidebar) HTML(ctx context.Context) (string, error) {
	s.once.Do(func() {
		s.html, s.links, s.err = s.build(ctx)
	})
	return s.html, s.err
}

// Links returns the number of links in the sidebar, once built.
func (s *Sidebar) Links() int {
	return s.links
}

func (s *Sidebar) build(ctx context.Context) (string, int, error) {
	src, err := s.load(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("loading landing page: %w", err)
	}
	doc, _, err := parsePage(src)
	if err != nil {
		return "", 0, err
	}

	contents := doc.Find(s.selector).First()
	if contents.Length() == 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrNoContents, s.selector)
	}

	aside := element("aside")
	adoptChildren(contents.Get(0), aside)

	links := goquery.NewDocumentFromNode(aside).Find("a")
	links.Each(func(_ int, a *goquery.Selection) {
		splitLinkText(a)
	})

	out, err := renderNode(aside)
	if err != nil {
		return "", 0, err
	}
	return out, links.Length(), nil
}

// splitLinkText replaces the content of a contents link with a number span
// and a title span, or a single title span when the text has no leading
// section number.
func splitLinkText(a *goquery.Selection) {
	text := strings.TrimSpace(a.Text())

	number, title := "", text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		number, title = text[:i], text[i+1:]
	}

	a.Empty()
	n := a.Get(0)
	if sectionNumber.MatchString(number) {
		n.AppendChild(textElement("span", number, "class", "number"))
		n.AppendChild(textElement("span", title, "class", "title"))
		return
	}
	n.AppendChild(textElement("span", text, "class", "title"))
}
