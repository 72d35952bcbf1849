package booksite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/bookforge/go-booksite/internal/navigator"
	"github.com/bookforge/go-booksite/internal/process"
)

// browser is a headless Chrome owned by one check.
// Rod downloads Chromium on first run if none is found.
type browser struct {
	launcher *launcher.Launcher
	rod      *rod.Browser
}

// launchBrowser starts Chrome. ROD_BROWSER_BIN selects a pre-installed
// binary; the sandbox is disabled in CI and containers.
func launchBrowser(ctx context.Context) (*browser, error) {
	l := launcher.New().Context(ctx)

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return &browser{launcher: l, rod: b}, nil
}

// newPage opens a blank tab sized to viewport.
func (b *browser) newPage(viewport [2]int) (*rod.Page, error) {
	page, err := b.rod.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	err = proto.EmulationSetDeviceMetricsOverride{
		Width:             viewport[0],
		Height:            viewport[1],
		DeviceScaleFactor: 1,
	}.Call(page)
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: viewport: %v", ErrPageCreate, err)
	}
	return page, nil
}

// Close shuts Chrome down, including renderer and GPU helpers.
func (b *browser) Close() error {
	err := b.rod.Close()
	if pid := b.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

// fileURL returns the file:// URL of a local path.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// rodDocument exposes a loaded page as a navigator.Document. Document
// methods cannot fail, so the first evaluation error is kept in Err and
// later calls return zero values.
type rodDocument struct {
	ctx  context.Context
	page *rod.Page
	err  error
}

var _ navigator.Document = (*rodDocument)(nil)

func newRodDocument(ctx context.Context, page *rod.Page) *rodDocument {
	return &rodDocument{ctx: ctx, page: page}
}

// Err returns the first evaluation error.
func (d *rodDocument) Err() error { return d.err }

// eval runs a JS function on the page and decodes its result into out.
func (d *rodDocument) eval(out any, js string, args ...any) {
	if d.err != nil {
		return
	}
	res, err := d.page.Context(d.ctx).Evaluate(&rod.EvalOptions{
		JS:      js,
		JSArgs:  args,
		ByValue: true,
	})
	if err != nil {
		d.err = fmt.Errorf("%w: %v", ErrPageEval, err)
		return
	}
	if out == nil {
		return
	}
	raw, err := res.Value.MarshalJSON()
	if err == nil {
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		d.err = fmt.Errorf("%w: decoding result: %v", ErrPageEval, err)
	}
}

func (d *rodDocument) Path() string {
	var p string
	d.eval(&p, `() => location.pathname`)
	return p
}

func (d *rodDocument) SidebarHrefs() []string {
	var hrefs []string
	d.eval(&hrefs, `(sel) => [...document.querySelectorAll(sel)].map((a) => a.getAttribute('href') || '')`,
		navigator.SidebarLinkSelector)
	return hrefs
}

func (d *rodDocument) MarkLink(i int, anchor string) {
	d.eval(nil, `(sel, i, id) => { document.querySelectorAll(sel)[i].dataset.anchor = id; }`,
		navigator.SidebarLinkSelector, i, anchor)
}

func (d *rodDocument) Anchors(ids []string) []string {
	var found []string
	d.eval(&found, `(ids) => {
		const want = new Set(ids);
		return [...document.querySelectorAll('[id]')].map((e) => e.id).filter((id) => want.has(id));
	}`, ids)
	return found
}

func (d *rodDocument) Top(id string) float64 {
	var top float64
	d.eval(&top, `(id) => {
		const e = document.getElementById(id);
		return e ? e.getBoundingClientRect().top : 0;
	}`, id)
	return top
}

func (d *rodDocument) ViewportHeight() float64 {
	var h float64
	d.eval(&h, `() => window.innerHeight`)
	return h
}

func (d *rodDocument) SetCurrent(i int, on bool) {
	d.eval(nil, `(sel, i, cls, on) => { document.querySelectorAll(sel)[i].classList.toggle(cls, on); }`,
		navigator.SidebarLinkSelector, i, navigator.CurrentClass, on)
}

func (d *rodDocument) CenterLink(i int) {
	d.eval(nil, `(sel, i) => { document.querySelectorAll(sel)[i].scrollIntoView({block: 'center'}); }`,
		navigator.SidebarLinkSelector, i)
}

func (d *rodDocument) ReplaceURL(url string) {
	d.eval(nil, `(url) => { history.replaceState(history.state, '', url); }`, url)
}

// ScrollTo brings the element with id to the top of the viewport.
func (d *rodDocument) ScrollTo(id string) {
	d.eval(nil, `(id) => {
		const e = document.getElementById(id);
		if (e) e.scrollIntoView({block: 'start'});
	}`, id)
}

// pageState is what the shipped script shows: the anchor of the
// highlighted link and the decoded address fragment.
type pageState struct {
	Anchor   string `json:"anchor"`
	Fragment string `json:"fragment"`
}

func (d *rodDocument) State() pageState {
	var s pageState
	d.eval(&s, `(sel, cls) => {
		const a = document.querySelector(sel + '.' + cls);
		return {
			anchor: a ? (a.dataset.anchor || '') : '',
			fragment: decodeURIComponent(location.hash.slice(1)),
		};
	}`, navigator.SidebarLinkSelector, navigator.CurrentClass)
	return s
}
