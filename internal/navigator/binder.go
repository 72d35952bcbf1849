package navigator

import "strings"

// Link is a sidebar link bound to an anchor id.
type Link struct {
	Index  int // position among all sidebar links
	Href   string
	Anchor string
}

// Binding is the result of binding a page: its qualifying links and the
// anchors they target, in document order.
type Binding struct {
	Links   []Link
	Anchors []string
}

// Empty reports whether the navigator has nothing to drive on this page.
// A page with links but no anchors is treated as empty so the selector is
// never asked to choose among zero anchors.
func (b Binding) Empty() bool {
	return len(b.Links) == 0 || len(b.Anchors) == 0
}

// Missing returns the anchor ids targeted by links that have no matching
// element on the page, deduplicated, in link order.
func (b Binding) Missing() []string {
	present := make(map[string]bool, len(b.Anchors))
	for _, id := range b.Anchors {
		present[id] = true
	}

	var missing []string
	for _, l := range b.Links {
		if !present[l.Anchor] {
			present[l.Anchor] = true
			missing = append(missing, l.Anchor)
		}
	}
	return missing
}

// Filename returns the last segment of a location path.
func Filename(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Bind scans the sidebar for links into the current page and resolves the
// anchor each one targets. Every qualifying link gets its id cached through
// MarkLink. Links without a fragment are ignored.
func Bind(doc Document) Binding {
	name := Filename(doc.Path())
	if name == "" {
		return Binding{}
	}

	var (
		links []Link
		ids   []string
		seen  = make(map[string]bool)
	)
	for i, href := range doc.SidebarHrefs() {
		if !strings.HasPrefix(href, name) {
			continue
		}
		anchor, ok := fragment(href)
		if !ok {
			continue
		}

		doc.MarkLink(i, anchor)
		links = append(links, Link{Index: i, Href: href, Anchor: anchor})
		if !seen[anchor] {
			seen[anchor] = true
			ids = append(ids, anchor)
		}
	}

	if len(links) == 0 {
		return Binding{}
	}
	return Binding{Links: links, Anchors: doc.Anchors(ids)}
}

func fragment(href string) (string, bool) {
	i := strings.LastIndexByte(href, '#')
	if i < 0 || i == len(href)-1 {
		return "", false
	}
	return href[i+1:], true
}
