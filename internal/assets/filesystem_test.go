package assets

// Notes:
// - Symlink escape is only tested on systems where os.Symlink succeeds;
//   the test skips otherwise (e.g., unprivileged Windows runners).
// - The ErrAssetRead branch needs an unreadable file and is not covered.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeAsset(t *testing.T, base, rel, content string) {
	t.Helper()

	p := filepath.Join(base, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// TestNewFilesystemLoader - Base path validation
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid directory", dir, nil},
		{"empty path", "", ErrInvalidBasePath},
		{"missing directory", filepath.Join(dir, "missing"), ErrInvalidBasePath},
		{"regular file", file, ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFilesystemLoader(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewFilesystemLoader(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_Load - Styles and scripts from disk
// ---------------------------------------------------------------------------

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "styles/book.css", "main{color:red}")
	writeAsset(t, dir, "scripts/toc.js", "console.log('custom')")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatal(err)
	}

	if got, err := loader.LoadStyle("book"); err != nil || got != "main{color:red}" {
		t.Errorf("LoadStyle(book) = (%q, %v)", got, err)
	}
	if got, err := loader.LoadScript("toc"); err != nil || got != "console.log('custom')" {
		t.Errorf("LoadScript(toc) = (%q, %v)", got, err)
	}
	if _, err := loader.LoadStyle("other"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(other) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadScript("other"); !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("LoadScript(other) error = %v, want ErrScriptNotFound", err)
	}
	if _, err := loader.LoadScript("../../etc/passwd"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadScript(traversal) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeAsset(t, outside, "secret.css", "secret")

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(base, "styles", "leak.css")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadStyle("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(leak) error = %v, want ErrPathTraversal", err)
	}
}
