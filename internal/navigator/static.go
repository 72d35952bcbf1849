package navigator

import (
	"github.com/PuerkitoBio/goquery"
)

// StaticDocument is a Document over a parsed page with no layout. Every
// anchor sits on the viewport top and the viewport has no height, so the
// first anchor is always current. Mutations apply to the tree.
type StaticDocument struct {
	path  string
	doc   *goquery.Document
	links *goquery.Selection
	url   string
}

// NewStaticDocument wraps doc, located at path.
func NewStaticDocument(path string, doc *goquery.Document) *StaticDocument {
	return &StaticDocument{
		path:  path,
		doc:   doc,
		links: doc.Find(SidebarLinkSelector),
	}
}

func (d *StaticDocument) Path() string { return d.path }

func (d *StaticDocument) SidebarHrefs() []string {
	hrefs := make([]string, d.links.Length())
	d.links.Each(func(i int, s *goquery.Selection) {
		hrefs[i], _ = s.Attr("href")
	})
	return hrefs
}

func (d *StaticDocument) MarkLink(i int, anchor string) {
	d.links.Eq(i).SetAttr(AnchorAttr, anchor)
}

func (d *StaticDocument) Anchors(ids []string) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var found []string
	d.doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		if want[id] {
			delete(want, id)
			found = append(found, id)
		}
	})
	return found
}

func (d *StaticDocument) Top(string) float64 { return 0 }

func (d *StaticDocument) ViewportHeight() float64 { return 0 }

func (d *StaticDocument) SetCurrent(i int, on bool) {
	if on {
		d.links.Eq(i).AddClass(CurrentClass)
		return
	}
	d.links.Eq(i).RemoveClass(CurrentClass)
}

func (d *StaticDocument) CenterLink(int) {}

func (d *StaticDocument) ReplaceURL(url string) { d.url = url }

// URL returns the last replaced URL.
func (d *StaticDocument) URL() string { return d.url }
