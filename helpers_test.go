package booksite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/bookforge/go-booksite/internal/fonts"
)

const testIndex = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
<title>Book</title>
<script src="js/jquery.min.js" type="text/javascript"></script>
</head>
<body>
<nav class="header"><a href="ch01.xhtml">Next</a></nav>
<div class="contents">
<ul>
<li><a href="ch01.xhtml#s1">1 Building Abstractions</a></li>
<li><a href="ch01.xhtml#s1.1">1.1 The Elements</a></li>
<li><a href="ch02.xhtml#s2">2 Data</a></li>
<li><a href="ch02.xhtml#s2.9">2.9 Lost Section</a></li>
</ul>
</div>
</body>
</html>`

const testChapter1 = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
<title>1 Building Abstractions</title>
<script src="js/footnotes.js" type="text/javascript"></script>
</head>
<body>
<h2 id="s1">1 Building Abstractions</h2>
<p>Inline <math><mi>x</mi></math> and again <math><mi>x</mi></math>.</p>
<pre class="prettyprint"><code>(define (square x) (* x x))</code></pre>
<h3 id="s1.1">1.1 The Elements</h3>
</body>
</html>`

const testChapter2 = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>2 Data</title></head>
<body>
<h2 id="s2">2 Data</h2>
<math display="block"><mi>y</mi></math>
</body>
</html>`

// writeBook lays out a three-page book with a font and an image directory.
func writeBook(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"index.xhtml":         testIndex,
		"ch01.xhtml":          testChapter1,
		"ch02.xhtml":          testChapter2,
		"notes.txt":           "not a page",
		"fonts/Serif.ttf":     "font bytes",
		"images/fig1.svg":     "<svg/>",
		"images/sub/fig2.png": "png",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func parseFile(t *testing.T, path string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(readFile(t, path)))
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return doc
}

// fakeSubsetter writes the requested glyphs instead of a font.
type fakeSubsetter struct {
	mu       sync.Mutex
	requests []fonts.Request
	err      error
}

func (f *fakeSubsetter) Subset(_ context.Context, req fonts.Request) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(req.Output, []byte("subset:"+req.Text), 0o644)
}

// newTestBuilder returns a builder with a fake subsetter.
func newTestBuilder(t *testing.T, opts ...Option) (*Builder, *fakeSubsetter) {
	t.Helper()

	b, err := NewBuilder(opts...)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	sub := &fakeSubsetter{}
	b.subsetter = sub
	return b, sub
}
