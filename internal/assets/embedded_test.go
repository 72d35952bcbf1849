package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{"loads book style", DefaultStyleName, nil, "aside a.current"},
		{"unknown style", "nonexistent-style-xyz", ErrStyleNotFound, ""},
		{"empty name", "", ErrInvalidAssetName, ""},
		{"path traversal", "../secret", ErrInvalidAssetName, ""},
		{"name with extension", "book.css", ErrInvalidAssetName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) does not contain %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_LoadScript(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	got, err := loader.LoadScript(NavigatorScript)
	if err != nil {
		t.Fatalf("LoadScript(%q) error = %v", NavigatorScript, err)
	}
	// The script and the Go navigator share these names.
	for _, want := range []string{"dataset.anchor", "'current'", "replaceState", "0.3", "200"} {
		if !strings.Contains(got, want) {
			t.Errorf("navigator script does not contain %q", want)
		}
	}

	if _, err := loader.LoadScript("missing"); !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("LoadScript(missing) error = %v, want ErrScriptNotFound", err)
	}
	if _, err := loader.LoadScript("../toc"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadScript(../toc) error = %v, want ErrInvalidAssetName", err)
	}
}
