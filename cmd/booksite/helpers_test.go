package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const bookIndex = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Book</title></head>
<body>
<div class="contents"><ul>
<li><a href="ch01.xhtml#s1">1 Start</a></li>
<li><a href="ch01.xhtml#s1.1">1.1 Then</a></li>
<li><a href="ch01.xhtml#gone">1.2 Gone</a></li>
</ul></div>
</body>
</html>`

const bookChapter = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>1 Start</title></head>
<body>
<h2 id="s1">1 Start</h2>
<p>Text <math><mi>x</mi></math>.</p>
<h3 id="s1.1">1.1 Then</h3>
</body>
</html>`

// setupTestDir creates a temp directory with the given files.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return dir
}

// setupBook writes a two-page book with one broken sidebar link and a config
// pointing at it. It returns the config path and the output directory.
func setupBook(t *testing.T) (cfgPath, outDir string) {
	t.Helper()
	root := setupTestDir(t, map[string]string{
		"book/index.xhtml": bookIndex,
		"book/ch01.xhtml":  bookChapter,
	})
	outDir = filepath.Join(root, "dist")
	cfgPath = filepath.Join(root, "booksite.yaml")
	cfg := "source:\n  dir: " + filepath.Join(root, "book") + "\noutput:\n  dir: " + outDir + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, outDir
}

// testEnv returns an Environment writing to buffers, with tool lookups that
// find nothing.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Stdout:      &stdout,
		Stderr:      &stderr,
		LookPath:    func(string) (string, bool) { return "", false },
		BrowserPath: func() (string, bool) { return "", false },
	}, &stdout, &stderr
}
