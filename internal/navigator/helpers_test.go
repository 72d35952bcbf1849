package navigator

// fakePage is a Document with fixed structure and scrollable geometry.
// Mutations are dropped; wrap it in a Shadow to observe them.
type fakePage struct {
	path     string
	hrefs    []string
	ids      []string // content element ids in document order
	offsets  map[string]float64
	scrollY  float64
	viewport float64
}

func newFakePage(path string, hrefs []string, ids []string, offsets []float64) *fakePage {
	p := &fakePage{
		path:     path,
		hrefs:    hrefs,
		ids:      ids,
		offsets:  make(map[string]float64, len(ids)),
		viewport: 1000,
	}
	for i, id := range ids {
		p.offsets[id] = offsets[i]
	}
	return p
}

func (p *fakePage) Path() string           { return p.path }
func (p *fakePage) SidebarHrefs() []string { return p.hrefs }
func (p *fakePage) MarkLink(int, string)   {}
func (p *fakePage) SetCurrent(int, bool)   {}
func (p *fakePage) CenterLink(int)         {}
func (p *fakePage) ReplaceURL(string)      {}

func (p *fakePage) Anchors(ids []string) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []string
	for _, id := range p.ids {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

func (p *fakePage) Top(id string) float64    { return p.offsets[id] - p.scrollY }
func (p *fakePage) ViewportHeight() float64 { return p.viewport }

// chapterPage is the reference layout: anchors A, B and C at 0, 500 and 1000
// with a 1000px viewport.
func chapterPage() *fakePage {
	return newFakePage(
		"/book/ch01.xhtml",
		[]string{"ch01.xhtml#A", "ch01.xhtml#B", "ch01.xhtml#C"},
		[]string{"A", "B", "C"},
		[]float64{0, 500, 1000},
	)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
