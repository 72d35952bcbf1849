package navigator

import (
	"go.uber.org/zap"

	"github.com/bookforge/go-booksite/internal/logfields"
)

// Widget is the navigator of one page. It binds on EventReady and follows
// EventScroll afterwards. A page without qualifying links or anchors leaves
// the widget disabled and no scroll handler is installed.
type Widget struct {
	doc    Document
	logger *zap.Logger

	ready   bool
	binding Binding
	ctrl    *Controller
}

// NewWidget returns a widget over doc. Only WithLogger is meaningful here.
func NewWidget(doc Document, opts ...Option) *Widget {
	s := newSettings(opts)
	return &Widget{doc: doc, logger: s.logger}
}

// Attach registers the widget's handlers on l.
func (w *Widget) Attach(l *Loop) {
	l.Handle(EventReady, func() {
		if w.Ready() {
			l.HandleThrottled(EventScroll, w.Scroll)
		}
	})
}

// Ready binds the page and performs the initial transition. It reports
// whether the widget is enabled. Later calls are no-ops.
func (w *Widget) Ready() bool {
	if w.ready {
		return w.ctrl != nil
	}
	w.ready = true

	w.binding = Bind(w.doc)
	if w.binding.Empty() {
		w.logger.Debug("navigator disabled",
			logfields.Path(w.doc.Path()),
			logfields.Links(len(w.binding.Links)),
			logfields.Anchors(len(w.binding.Anchors)))
		return false
	}

	w.ctrl = NewController(w.doc, w.binding)
	w.ctrl.Start()
	w.logger.Debug("navigator ready",
		logfields.Path(w.doc.Path()),
		logfields.Links(len(w.binding.Links)),
		logfields.Anchors(len(w.binding.Anchors)))
	return true
}

// Scroll moves the highlight to follow the scroll position.
func (w *Widget) Scroll() {
	if w.ctrl == nil {
		return
	}
	if w.ctrl.Update() {
		if l, ok := w.ctrl.Current(); ok {
			w.logger.Debug("current anchor changed", logfields.Anchor(l.Anchor))
		}
	}
}

// Enabled reports whether the widget bound at least one link and anchor.
func (w *Widget) Enabled() bool { return w.ctrl != nil }

// Binding returns what Ready bound.
func (w *Widget) Binding() Binding { return w.binding }

// Current returns the highlighted link, if any.
func (w *Widget) Current() (Link, bool) {
	if w.ctrl == nil {
		return Link{}, false
	}
	return w.ctrl.Current()
}
