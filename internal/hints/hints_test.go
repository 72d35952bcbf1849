package hints

// Notes:
// - ForBrowserConnect and InCI tests cannot use t.Parallel() because they
//   use t.Setenv and replace the package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

func stubContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(k, "")
	}
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-dependent browser hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect_InCI(t *testing.T) {
	stubContainer(t, false)
	clearCI(t)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	for _, want := range []string{"hint:", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "--browser"} {
		if !strings.Contains(hint, want) {
			t.Errorf("hint %q does not contain %q", hint, want)
		}
	}
}

func TestForBrowserConnect_InDocker(t *testing.T) {
	stubContainer(t, true)
	clearCI(t)
	t.Setenv("ROD_NO_SANDBOX", "")

	if hint := ForBrowserConnect(); !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Errorf("hint %q: expected ROD_NO_SANDBOX suggestion in a container", hint)
	}
}

func TestForBrowserConnect_Configured(t *testing.T) {
	stubContainer(t, true)
	clearCI(t)
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_NO_SANDBOX") || strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Errorf("hint %q suggests variables that are already set", hint)
	}
	if !strings.Contains(hint, "--browser") {
		t.Errorf("hint %q: expected the fallback suggestion", hint)
	}
}

func TestInCI(t *testing.T) {
	clearCI(t)
	if InCI() {
		t.Error("InCI() = true with no CI variables")
	}
	t.Setenv("GITLAB_CI", "1")
	if !InCI() {
		t.Error("InCI() = false with GITLAB_CI set")
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{"empty paths", nil, "--config"},
		{"suggests init", nil, "booksite init"},
		{"user path", []string{"booksite.yaml", "/home/u/.config/go-booksite/booksite.yaml"}, "create /home/u/.config/go-booksite/booksite.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if hint := ForConfigNotFound(tt.paths); !strings.Contains(hint, tt.contains) {
				t.Errorf("ForConfigNotFound() = %q, want it to contain %q", hint, tt.contains)
			}
		})
	}
}

func TestForMissingTool(t *testing.T) {
	t.Parallel()

	if hint := ForMissingTool("pyftsubset"); !strings.Contains(hint, "fonttools") {
		t.Errorf("ForMissingTool(pyftsubset) = %q, want fonttools advice", hint)
	}
	if hint := ForMissingTool("mjx"); !strings.Contains(hint, "mjx") {
		t.Errorf("ForMissingTool(mjx) = %q, want the tool name", hint)
	}
	if hint := ForMissingTool(""); hint != "" {
		t.Errorf("ForMissingTool(\"\") = %q, want empty", hint)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	for _, h := range []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForMissingTool("pyftsubset"),
		ForDefects(),
		ForConfigNotFound(nil),
	} {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
	if formatHints(nil) != "" {
		t.Error("formatHints(nil) should be empty")
	}
}
