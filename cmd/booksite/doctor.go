package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bookforge/go-booksite/internal/config"
	"github.com/bookforge/go-booksite/internal/fonts"
	"github.com/bookforge/go-booksite/internal/hints"
)

// ErrNotReady is returned by doctor when a check failed.
var ErrNotReady = errors.New("environment not ready")

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Tools    []toolInfo `json:"tools,omitempty"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results. Chrome is only needed
// by check --browser, so a missing browser is a warning.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// toolInfo describes an external command the configuration needs.
type toolInfo struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command.
func runDoctorCmd(args []string, env *Environment) error {
	f, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.common.config, loadEnvConfig())
	if err != nil {
		return err
	}

	result := runDoctor(cfg, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else if !f.common.quiet {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return fmt.Errorf("%w: %d errors", ErrNotReady, len(result.Errors))
	}
	return nil
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result, env.BrowserPath)
	checkTools(result, cfg, env.LookPath)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, lookPath func() (string, bool)) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = lookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; check --browser needs it. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path from rod lookup or ROD_BROWSER_BIN
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// requiredTools lists the external commands cfg delegates to.
func requiredTools(cfg *config.Config) []toolInfo {
	var tools []toolInfo
	for _, c := range cfg.Copies {
		if c.Subset != nil {
			tools = append(tools, toolInfo{Name: fonts.DefaultCommand, Purpose: "font subsetting"})
			break
		}
	}
	if cfg.Math.Renderer == config.MathCommand && cfg.Math.Command != "" {
		tools = append(tools, toolInfo{Name: cfg.Math.Command, Purpose: "math typesetting"})
	}
	return tools
}

// checkTools resolves every required tool. A missing tool fails the build,
// so it is an error.
func checkTools(result *doctorResult, cfg *config.Config, lookPath func(string) (string, bool)) {
	for _, tool := range requiredTools(cfg) {
		tool.Path, tool.Found = lookPath(tool.Name)
		if !tool.Found {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s not found (needed for %s)%s", tool.Name, tool.Purpose, hints.ForMissingTool(tool.Name)))
		}
		result.Tools = append(result.Tools, tool)
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = hints.InCI() || os.Getenv("CIRCLECI") != ""

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 for check --browser")
	}
}

// isContainer detects a container environment and names the signal.
func isContainer() (bool, string) {
	if os.Getenv("BOOKSITE_CONTAINER") == "1" {
		return true, "BOOKSITE_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable; external tools write
// their output there.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "booksite-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "booksite doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium (check --browser)")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	if len(r.Tools) > 0 {
		fmt.Fprintln(w, "External tools")
		for _, t := range r.Tools {
			if t.Found {
				fmt.Fprintf(w, "  [OK] %s: %s\n", t.Name, t.Path)
			} else {
				fmt.Fprintf(w, "  [ERROR] %s: not found\n", t.Name)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
