// Package navigator models the table-of-contents navigator shipped with every
// generated page. It binds sidebar links to content anchors, picks the current
// anchor from scroll geometry and keeps exactly one link highlighted with the
// address fragment in sync.
//
// The DOM is only reached through Document, so the same state machine runs
// against a static goquery tree, a live headless-Chrome page and test fakes.
// The embedded js/toc.js asset is the in-browser counterpart of this package.
package navigator

const (
	// CurrentClass marks the highlighted sidebar link.
	CurrentClass = "current"

	// AnchorAttr caches the resolved anchor id on each bound link.
	AnchorAttr = "data-anchor"

	// SidebarLinkSelector selects the candidate links of a page.
	SidebarLinkSelector = "aside a"
)

// Document is the view of a rendered page the navigator needs.
// Links are addressed by their position among all sidebar links.
type Document interface {
	// Path is the location path of the page, e.g. "/book/ch02.xhtml".
	Path() string

	// SidebarHrefs returns the raw href attribute of every sidebar link.
	SidebarHrefs() []string

	// MarkLink caches the resolved anchor id on link i.
	MarkLink(i int, anchor string)

	// Anchors returns the members of ids present as content elements,
	// in document order.
	Anchors(ids []string) []string

	// Top is the distance from the viewport top to the top edge of the
	// element with the given id. Negative once scrolled past.
	Top(id string) float64

	// ViewportHeight is the height of the visible area.
	ViewportHeight() float64

	// SetCurrent toggles the highlight on link i.
	SetCurrent(i int, on bool)

	// CenterLink scrolls the sidebar so link i sits in its vertical center.
	CenterLink(i int)

	// ReplaceURL replaces the current history entry without navigating.
	ReplaceURL(url string)
}
