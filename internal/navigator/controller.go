package navigator

// Controller owns the highlighted-link state of one page.
// It is not safe for concurrent use; the Loop serializes access.
type Controller struct {
	doc     Document
	binding Binding
	current int // index into binding.Links, -1 before the first transition
}

// NewController returns a controller over a non-empty binding.
func NewController(doc Document, binding Binding) *Controller {
	return &Controller{doc: doc, binding: binding, current: -1}
}

// Start performs the initial transition and centers the highlighted link in
// the sidebar. It is meant to be called once.
func (c *Controller) Start() {
	c.Update()
	if c.current >= 0 {
		c.doc.CenterLink(c.binding.Links[c.current].Index)
	}
}

// Update recomputes the current anchor and moves the highlight when it
// changed. Returns false when nothing was mutated.
func (c *Controller) Update() bool {
	if c.binding.Empty() {
		return false
	}

	anchor := CurrentAnchor(Measure(c.doc, c.binding.Anchors), c.doc.ViewportHeight())
	if c.current >= 0 && c.binding.Links[c.current].Anchor == anchor.ID {
		return false
	}

	next := -1
	for i, l := range c.binding.Links {
		if l.Anchor == anchor.ID {
			next = i
			break
		}
	}
	if next < 0 {
		return false
	}

	if c.current >= 0 {
		c.doc.SetCurrent(c.binding.Links[c.current].Index, false)
	}
	c.doc.SetCurrent(c.binding.Links[next].Index, true)
	c.current = next
	c.doc.ReplaceURL(c.doc.Path() + "#" + anchor.ID)
	return true
}

// Current returns the highlighted link, if any.
func (c *Controller) Current() (Link, bool) {
	if c.current < 0 {
		return Link{}, false
	}
	return c.binding.Links[c.current], true
}
