// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/bookforge/go-booksite/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a known CI environment variable is set.
func InCI() bool {
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for browser connection errors.
func ForBrowserConnect() string {
	var hints []string

	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or run check without --browser")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the timeout for slow builds.
func ForTimeout() string {
	return format("for large books, raise --timeout")
}

// ForConfigNotFound suggests --config, or creating the file in the user
// config directory when it was among the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or run 'booksite init'"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-booksite") {
			hint += "; or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForMissingTool returns install advice for an external command.
func ForMissingTool(name string) string {
	switch name {
	case "pyftsubset":
		return format("install fonttools: pip install fonttools brotli")
	case "":
		return ""
	default:
		return format("install " + name + " or make sure it is on PATH")
	}
}

// ForDefects points at the check report when a built site has defects.
func ForDefects() string {
	return format("rerun with --verbose to list every defect")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
