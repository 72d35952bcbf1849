package navigator

// ReferenceRatio places the reference line at this fraction of the viewport
// height, measured from the top.
const ReferenceRatio = 0.3

// Anchor is an anchor id with its current top offset.
type Anchor struct {
	ID  string
	Top float64
}

// CurrentAnchor returns the last anchor, in document order, whose top edge is
// strictly above the reference line. When none is, the first anchor is the
// current one. Returns the zero Anchor when anchors is empty.
func CurrentAnchor(anchors []Anchor, viewportHeight float64) Anchor {
	if len(anchors) == 0 {
		return Anchor{}
	}

	line := viewportHeight * ReferenceRatio
	for i := len(anchors) - 1; i >= 0; i-- {
		if anchors[i].Top < line {
			return anchors[i]
		}
	}
	return anchors[0]
}

// Measure reads the geometry of the bound anchors from doc.
func Measure(doc Document, ids []string) []Anchor {
	anchors := make([]Anchor, len(ids))
	for i, id := range ids {
		anchors[i] = Anchor{ID: id, Top: doc.Top(id)}
	}
	return anchors
}
