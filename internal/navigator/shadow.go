package navigator

import "sort"

// Shadow reads structure and geometry from the wrapped Document and keeps
// every mutation to itself. It lets the navigator run beside a live page
// without touching it, and records what it would have done.
type Shadow struct {
	Document

	marks    map[int]string
	current  map[int]bool
	centered []int
	urls     []string
}

// NewShadow wraps doc.
func NewShadow(doc Document) *Shadow {
	return &Shadow{
		Document: doc,
		marks:    make(map[int]string),
		current:  make(map[int]bool),
	}
}

func (s *Shadow) MarkLink(i int, anchor string) { s.marks[i] = anchor }

func (s *Shadow) SetCurrent(i int, on bool) {
	if on {
		s.current[i] = true
		return
	}
	delete(s.current, i)
}

func (s *Shadow) CenterLink(i int) { s.centered = append(s.centered, i) }

func (s *Shadow) ReplaceURL(url string) { s.urls = append(s.urls, url) }

// Mark returns the anchor cached on link i.
func (s *Shadow) Mark(i int) (string, bool) {
	a, ok := s.marks[i]
	return a, ok
}

// Highlighted returns the indexes of highlighted links, ascending.
func (s *Shadow) Highlighted() []int {
	out := make([]int, 0, len(s.current))
	for i := range s.current {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Centered returns every link index passed to CenterLink.
func (s *Shadow) Centered() []int { return append([]int(nil), s.centered...) }

// Replaced returns every URL passed to ReplaceURL, oldest first.
func (s *Shadow) Replaced() []string { return append([]string(nil), s.urls...) }

// URL returns the last replaced URL, or "" when none was.
func (s *Shadow) URL() string {
	if len(s.urls) == 0 {
		return ""
	}
	return s.urls[len(s.urls)-1]
}
