package booksite

// Notes:
// - The static pass runs on a site produced by Builder from writeBook; the
//   browser pass needs Chrome and lives in checker_integration_test.go.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/bookforge/go-booksite/internal/navigator"
)

func buildSite(t *testing.T) string {
	t.Helper()

	b, _ := newTestBuilder(t)
	out := filepath.Join(t.TempDir(), "dist")
	if _, err := b.Build(context.Background(), Input{SourceDir: writeBook(t), OutputDir: out}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestChecker_Static - Sidebar links against page anchors
// ---------------------------------------------------------------------------

func TestChecker_Static(t *testing.T) {
	t.Parallel()

	site := buildSite(t)
	// A page no sidebar link points into.
	extra := strings.Replace(readFile(t, filepath.Join(site, "ch02.xhtml")), `id="s2"`, `id="a1"`, 1)
	if err := os.WriteFile(filepath.Join(site, "appendix.xhtml"), []byte(extra), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := NewChecker(WithLogger(zaptest.NewLogger(t))).Check(context.Background(), CheckInput{Dir: site})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if report.Pages != 3 {
		t.Errorf("Pages = %d, want 3 (index excluded)", report.Pages)
	}
	if len(report.Missing) != 1 || report.Missing[0] != (MissingAnchor{Page: "ch02.xhtml", Anchor: "s2.9"}) {
		t.Errorf("Missing = %v, want ch02.xhtml#s2.9 only", report.Missing)
	}
	if len(report.Disabled) != 1 || report.Disabled[0] != "appendix.xhtml" {
		t.Errorf("Disabled = %v, want [appendix.xhtml]", report.Disabled)
	}
	if len(report.Mismatches) != 0 {
		t.Errorf("Mismatches = %v without a browser pass", report.Mismatches)
	}
	if report.Defects() != 1 {
		t.Errorf("Defects() = %d, want 1", report.Defects())
	}
}

func TestChecker_CleanSite(t *testing.T) {
	t.Parallel()

	site := buildSite(t)
	fixed := strings.Replace(readFile(t, filepath.Join(site, "ch02.xhtml")), "</main>", `<h3 id="s2.9">2.9</h3></main>`, 1)
	if err := os.WriteFile(filepath.Join(site, "ch02.xhtml"), []byte(fixed), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := NewChecker().Check(context.Background(), CheckInput{Dir: site})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Defects() != 0 {
		t.Errorf("Defects() = %d, want 0: %+v", report.Defects(), report)
	}
}

func TestChecker_Errors(t *testing.T) {
	t.Parallel()

	c := NewChecker()
	if _, err := c.Check(context.Background(), CheckInput{}); !errors.Is(err, ErrNoOutputDir) {
		t.Errorf("empty dir: error = %v, want ErrNoOutputDir", err)
	}
	if _, err := c.Check(context.Background(), CheckInput{Dir: t.TempDir()}); !errors.Is(err, ErrNoPages) {
		t.Errorf("empty site: error = %v, want ErrNoPages", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers of the browser pass
// ---------------------------------------------------------------------------

// ---------------------------------------------------------------------------
// TestSettle - Waiting for both navigators before comparing
// ---------------------------------------------------------------------------

func TestSettleInitial(t *testing.T) {
	t.Parallel()

	loop := navigator.NewLoop()
	scrolls := 0
	loop.Handle(navigator.EventScroll, func() { scrolls++ })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	var waits []time.Duration
	var scrollsAtWait []int
	wait := func(ctx context.Context, d time.Duration) error {
		// Runs on this goroutine, so the count is read through the loop.
		var n int
		if err := loop.Do(ctx, func() { n = scrolls }); err != nil {
			return err
		}
		waits = append(waits, d)
		scrollsAtWait = append(scrollsAtWait, n)
		return nil
	}

	if err := settleInitial(ctx, loop, wait); err != nil {
		t.Fatalf("settleInitial() error = %v", err)
	}

	// Wait first, then show the model a scroll, then wait for both sides.
	if len(waits) != 2 || waits[0] != settleDelay || waits[1] != settleDelay {
		t.Errorf("waits = %v, want two of %v", waits, settleDelay)
	}
	if len(scrollsAtWait) == 2 && (scrollsAtWait[0] != 0 || scrollsAtWait[1] != 1) {
		t.Errorf("scrolls seen at each wait = %v, want [0 1]", scrollsAtWait)
	}
}

func TestSettleInitial_WaitCanceled(t *testing.T) {
	t.Parallel()

	loop := navigator.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := settleInitial(ctx, loop, sleep)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("settleInitial() error = %v, want context.Canceled", err)
	}
}

func TestSampleAnchors(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e", "f"}
	tests := []struct {
		n    int
		want string
	}{
		{0, "a,b,c,d,e,f"},
		{6, "a,b,c,d,e,f"},
		{10, "a,b,c,d,e,f"},
		{3, "a,c,e"},
		{2, "a,d"},
		{1, "a"},
	}
	for _, tt := range tests {
		if got := strings.Join(sampleAnchors(ids, tt.n), ","); got != tt.want {
			t.Errorf("sampleAnchors(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestURLFragment(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/book/ch01.xhtml#s1.1": "s1.1",
		"/book/ch01.xhtml":      "",
		"":                      "",
		"/a#b#c":                "c",
	}
	for in, want := range tests {
		if got := urlFragment(in); got != want {
			t.Errorf("urlFragment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsBrowserError(t *testing.T) {
	t.Parallel()

	if !IsBrowserError(errors.Join(errors.New("x"), ErrPageLoad)) {
		t.Error("ErrPageLoad not recognized")
	}
	if IsBrowserError(ErrNoPages) {
		t.Error("ErrNoPages recognized as a browser error")
	}
}
