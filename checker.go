package booksite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookforge/go-booksite/internal/logfields"
	"github.com/bookforge/go-booksite/internal/navigator"
	"github.com/bookforge/go-booksite/internal/pipeline"
)

// settleDelay is how long the browser pass waits after a scroll so both
// throttles have run their trailing call and disarmed.
const settleDelay = 2*navigator.DefaultInterval + 100*time.Millisecond

// Checker verifies the navigator of a built site.
type Checker struct {
	cfg settings
}

// NewChecker creates a Checker. WithTimeout, WithWorkers, WithLogger and
// WithViewport apply; build options are ignored.
func NewChecker(opts ...Option) *Checker {
	return &Checker{cfg: newSettings(opts)}
}

// Check runs the static pass and, when in.Browser is set, the browser pass.
// Defects are reported, not returned as errors.
func (c *Checker) Check(ctx context.Context, in CheckInput) (*CheckReport, error) {
	if strings.TrimSpace(in.Dir) == "" {
		return nil, ErrNoOutputDir
	}
	if in.IndexPage == "" {
		in.IndexPage = pipeline.DefaultIndexPage
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	pages, err := listPages(in.Dir)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{}
	var bound []string
	for _, name := range pages {
		if name == in.IndexPage {
			continue
		}
		report.Pages++
		ok, err := c.checkStatic(in.Dir, name, report)
		if err != nil {
			return nil, err
		}
		if ok {
			bound = append(bound, name)
		}
	}

	if in.Browser && len(bound) > 0 {
		mismatches, err := c.checkBrowser(ctx, in, bound)
		if err != nil {
			return nil, err
		}
		report.Mismatches = mismatches
	}

	c.cfg.logger.Info("site checked",
		logfields.Path(in.Dir),
		zap.Int("pages", report.Pages),
		zap.Int("disabled", len(report.Disabled)),
		logfields.Defects(report.Defects()))
	return report, nil
}

// checkStatic binds one page without layout and records links whose anchor
// is absent. It reports whether the navigator is enabled on the page.
func (c *Checker) checkStatic(dir, name string, report *CheckReport) (bool, error) {
	src, err := os.ReadFile(filepath.Join(dir, name)) // #nosec G304 -- listed from the site directory
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", name, err)
	}

	binding := navigator.Bind(navigator.NewStaticDocument("/"+name, doc))
	for _, id := range binding.Missing() {
		report.Missing = append(report.Missing, MissingAnchor{Page: name, Anchor: id})
	}
	if binding.Empty() {
		report.Disabled = append(report.Disabled, name)
		c.cfg.logger.Debug("navigator disabled", logfields.Page(name), logfields.Links(len(binding.Links)))
		return false, nil
	}
	return true, nil
}

// checkBrowser opens every page in headless Chrome, lets the shipped script
// run, and drives the Go navigator beside it over the same live layout.
func (c *Checker) checkBrowser(ctx context.Context, in CheckInput, pages []string) ([]Mismatch, error) {
	br, err := launchBrowser(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := br.Close(); err != nil {
			c.cfg.logger.Debug("closing browser", zap.Error(err))
		}
	}()

	workers := min(ResolvePoolSize(c.cfg.workers), len(pages))
	tabs := newPool(workers,
		func(context.Context) (*rod.Page, error) { return br.newPage(c.cfg.viewport) },
		func(p *rod.Page) error { return p.Close() })
	defer func() { _ = tabs.close() }()

	var (
		mu     sync.Mutex
		result = make(map[string][]Mismatch, len(pages))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range pages {
		g.Go(func() error {
			tab, err := tabs.acquire(gctx)
			if err != nil {
				return err
			}
			defer tabs.release(tab)

			mm, err := c.checkLive(gctx, tab, filepath.Join(in.Dir, name), name, in.Samples)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			result[name] = mm
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Report in page order, independent of scheduling.
	var mismatches []Mismatch
	for _, name := range pages {
		mismatches = append(mismatches, result[name]...)
	}
	return mismatches, nil
}

// checkLive compares the model with the page after load and after
// scrolling to each sampled anchor. Every DOM access runs on the loop
// goroutine.
func (c *Checker) checkLive(ctx context.Context, tab *rod.Page, path, name string, samples int) ([]Mismatch, error) {
	url, err := fileURL(path)
	if err != nil {
		return nil, err
	}
	if err := tab.Context(ctx).Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := tab.Context(ctx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	doc := newRodDocument(ctx, tab)
	shadow := navigator.NewShadow(doc)
	logger := c.cfg.logger.With(logfields.Page(name))
	widget := navigator.NewWidget(shadow, navigator.WithLogger(logger))
	loop := navigator.NewLoop(navigator.WithLogger(logger))
	widget.Attach(loop)

	loopCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- loop.Run(loopCtx) }()
	defer func() {
		stop()
		<-done
	}()

	if err := loop.Post(ctx, navigator.EventReady); err != nil {
		return nil, err
	}

	var (
		enabled bool
		anchors []string
	)
	if err := loop.Do(ctx, func() {
		enabled = widget.Enabled()
		anchors = widget.Binding().Anchors
	}); err != nil {
		return nil, err
	}
	if err := doc.Err(); err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	compare := func(scrollTo string) ([]Mismatch, error) {
		var (
			model    navigator.Link
			fragment string
			state    pageState
		)
		err := loop.Do(ctx, func() {
			model, _ = widget.Current()
			fragment = urlFragment(shadow.URL())
			state = doc.State()
		})
		if err != nil {
			return nil, err
		}
		if err := doc.Err(); err != nil {
			return nil, err
		}

		var mm []Mismatch
		if model.Anchor != state.Anchor {
			mm = append(mm, Mismatch{Page: name, ScrollTo: scrollTo, Field: "anchor", Model: model.Anchor, Browser: state.Anchor})
		}
		if fragment != state.Fragment {
			mm = append(mm, Mismatch{Page: name, ScrollTo: scrollTo, Field: "fragment", Model: fragment, Browser: state.Fragment})
		}
		return mm, nil
	}

	if err := settleInitial(ctx, loop, sleep); err != nil {
		return nil, err
	}
	mismatches, err := compare("")
	if err != nil {
		return nil, err
	}

	for _, id := range sampleAnchors(anchors, samples) {
		if err := loop.Do(ctx, func() { doc.ScrollTo(id) }); err != nil {
			return nil, err
		}
		if err := replayScroll(ctx, loop, sleep); err != nil {
			return nil, err
		}
		mm, err := compare(id)
		if err != nil {
			return nil, err
		}
		mismatches = append(mismatches, mm...)
	}

	logger.Debug("page compared", logfields.Anchors(len(anchors)), zap.Int("mismatches", len(mismatches)))
	return mismatches, nil
}

type waitFunc func(context.Context, time.Duration) error

// settleInitial waits out the page's own load-time update. Centering the
// current sidebar link can scroll the window, so the model is then shown
// a scroll too.
func settleInitial(ctx context.Context, loop *navigator.Loop, wait waitFunc) error {
	if err := wait(ctx, settleDelay); err != nil {
		return err
	}
	return replayScroll(ctx, loop, wait)
}

// replayScroll feeds the model a scroll and waits until the throttled
// updates on both sides have landed.
func replayScroll(ctx context.Context, loop *navigator.Loop, wait waitFunc) error {
	if err := loop.Post(ctx, navigator.EventScroll); err != nil {
		return err
	}
	return wait(ctx, settleDelay)
}

// sampleAnchors picks n anchors spread evenly over ids, all of them when n
// is 0 or covers the list.
func sampleAnchors(ids []string, n int) []string {
	if n <= 0 || n >= len(ids) {
		return ids
	}
	out := make([]string, 0, n)
	for i := range n {
		out = append(out, ids[i*len(ids)/n])
	}
	return out
}

// urlFragment returns what follows the last '#' of url.
func urlFragment(url string) string {
	if i := strings.LastIndexByte(url, '#'); i >= 0 {
		return url[i+1:]
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsBrowserError reports whether err came from launching or driving Chrome.
func IsBrowserError(err error) bool {
	return errors.Is(err, ErrBrowserConnect) || errors.Is(err, ErrPageCreate) ||
		errors.Is(err, ErrPageLoad) || errors.Is(err, ErrPageEval)
}
