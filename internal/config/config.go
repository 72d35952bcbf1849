package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookforge/go-booksite/internal/fileutil"
	"github.com/bookforge/go-booksite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxSelectorLength = 200
	MaxNameLength     = 100 // Lexer, style, command names
	MaxArgLength      = 1024
	MaxURLLength      = 2048
	MaxSubsetLength   = 10000 // Glyph text for a font subset
	MaxCopies         = 500
	MaxSamples        = 1000
	MaxWorkers        = 64
)

// Math renderer kinds.
const (
	MathNative  = "native"
	MathCommand = "command"
)

// Default name looked up when no --config is given.
const DefaultName = "booksite"

// Config is the booksite.yaml document.
type Config struct {
	Source        SourceConfig    `yaml:"source"`
	Output        OutputConfig    `yaml:"output"`
	RemoveScripts []string        `yaml:"removeScripts,omitempty"`
	Copies        []CopyConfig    `yaml:"copies,omitempty"`
	Math          MathConfig      `yaml:"math"`
	Highlight     HighlightConfig `yaml:"highlight"`
	Assets        AssetsConfig    `yaml:"assets"`
	Build         BuildConfig     `yaml:"build"`
	Check         CheckConfig     `yaml:"check"`

	// Dir is the directory of the loaded file. Copy sources are relative
	// to it. Empty for DefaultConfig.
	Dir string `yaml:"-"`
}

// SourceConfig locates the XHTML book.
type SourceConfig struct {
	Dir       string `yaml:"dir"`
	IndexPage string `yaml:"indexPage,omitempty"`
	Contents  string `yaml:"contents,omitempty"` // Selector of the table of contents on the index page
}

// OutputConfig locates the generated site.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// CopyConfig is one asset copied into the output tree.
type CopyConfig struct {
	From     string        `yaml:"from"`
	To       string        `yaml:"to"`
	Optional bool          `yaml:"optional,omitempty"`
	Subset   *SubsetConfig `yaml:"subset,omitempty"`
}

// SubsetConfig turns a copy into a font subset.
type SubsetConfig struct {
	Text   string `yaml:"text"`
	Format string `yaml:"format,omitempty"`
}

// MathConfig selects how <math> elements are rendered.
type MathConfig struct {
	Renderer       string   `yaml:"renderer,omitempty"`
	Command        string   `yaml:"command,omitempty"`
	Args           []string `yaml:"args,omitempty"`
	FontURL        string   `yaml:"fontURL,omitempty"`
	ContainerWidth int      `yaml:"containerWidth,omitempty"`
}

// HighlightConfig configures code block highlighting.
type HighlightConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Selector string `yaml:"selector,omitempty"`
	Language string `yaml:"language,omitempty"`
	Style    string `yaml:"style,omitempty"`
}

// AssetsConfig points at a directory overriding the embedded assets.
type AssetsConfig struct {
	BasePath string `yaml:"basePath,omitempty"`
}

// BuildConfig bounds the page workers.
type BuildConfig struct {
	Workers int    `yaml:"workers,omitempty"` // 0 = auto
	Timeout string `yaml:"timeout,omitempty"` // Go duration, e.g. "2m"
}

// CheckConfig configures the checker.
type CheckConfig struct {
	Browser bool `yaml:"browser"`
	Samples int  `yaml:"samples,omitempty"` // Anchors scrolled to per page, 0 = all
}

// TimeoutDuration parses Build.Timeout. Empty means no timeout.
func (b BuildConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: build.timeout: %v", ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: build.timeout must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// Validate checks field lengths and enumerated values.
func (c *Config) Validate() error {
	if err := validateFieldLength("source.dir", c.Source.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("source.indexPage", c.Source.IndexPage, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("source.contents", c.Source.Contents, MaxSelectorLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	for i, s := range c.RemoveScripts {
		if err := validateFieldLength(fmt.Sprintf("removeScripts[%d]", i), s, MaxPathLength); err != nil {
			return err
		}
	}

	if len(c.Copies) > MaxCopies {
		return fmt.Errorf("%w: copies (%d entries, max %d)", ErrInvalidConfig, len(c.Copies), MaxCopies)
	}
	for i, cp := range c.Copies {
		if err := cp.validate(i); err != nil {
			return err
		}
	}

	if err := c.Math.validate(); err != nil {
		return err
	}

	if err := validateFieldLength("highlight.selector", c.Highlight.Selector, MaxSelectorLength); err != nil {
		return err
	}
	if err := validateFieldLength("highlight.language", c.Highlight.Language, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("highlight.style", c.Highlight.Style, MaxNameLength); err != nil {
		return err
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if c.Build.Workers < 0 || c.Build.Workers > MaxWorkers {
		return fmt.Errorf("%w: build.workers must be between 0 and %d, got %d", ErrInvalidConfig, MaxWorkers, c.Build.Workers)
	}
	if _, err := c.Build.TimeoutDuration(); err != nil {
		return err
	}

	if c.Check.Samples < 0 || c.Check.Samples > MaxSamples {
		return fmt.Errorf("%w: check.samples must be between 0 and %d, got %d", ErrInvalidConfig, MaxSamples, c.Check.Samples)
	}

	return nil
}

func (cp CopyConfig) validate(i int) error {
	field := fmt.Sprintf("copies[%d]", i)
	if cp.From == "" || cp.To == "" {
		return fmt.Errorf("%w: %s needs both from and to", ErrInvalidConfig, field)
	}
	if err := validateFieldLength(field+".from", cp.From, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".to", cp.To, MaxPathLength); err != nil {
		return err
	}
	if cp.Subset == nil {
		return nil
	}
	if cp.Subset.Text == "" {
		return fmt.Errorf("%w: %s.subset.text is empty", ErrInvalidConfig, field)
	}
	if err := validateFieldLength(field+".subset.text", cp.Subset.Text, MaxSubsetLength); err != nil {
		return err
	}
	switch cp.Subset.Format {
	case "", "woff2", "woff", "ttf":
	default:
		return fmt.Errorf("%w: %s.subset.format %q (want woff2, woff or ttf)", ErrInvalidConfig, field, cp.Subset.Format)
	}
	return nil
}

func (m MathConfig) validate() error {
	switch m.Renderer {
	case "", MathNative:
	case MathCommand:
		if m.Command == "" {
			return fmt.Errorf("%w: math.command is required with the command renderer", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: math.renderer %q (want %s or %s)", ErrInvalidConfig, m.Renderer, MathNative, MathCommand)
	}
	if err := validateFieldLength("math.command", m.Command, MaxPathLength); err != nil {
		return err
	}
	for i, a := range m.Args {
		if err := validateFieldLength(fmt.Sprintf("math.args[%d]", i), a, MaxArgLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("math.fontURL", m.FontURL, MaxURLLength); err != nil {
		return err
	}
	if m.ContainerWidth < 0 {
		return fmt.Errorf("%w: math.containerWidth must not be negative", ErrInvalidConfig)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is loaded.
// Directories are left empty; callers fill them from flags or environment.
func DefaultConfig() *Config {
	return &Config{
		Math:      MathConfig{Renderer: MathNative},
		Highlight: HighlightConfig{Enabled: false},
		Check:     CheckConfig{Browser: false},
	}
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read as a file path; anything else
// is a name searched in standard locations. A missing file is an error.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Dir = filepath.Dir(configPath)
	return cfg, nil
}

// UserDir returns the per-user config directory for booksite.
func UserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "go-booksite"), nil
}

// resolveConfigPath searches for name.yaml then name.yml in the current
// directory, then in UserDir.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	dirs := []string{"."}
	if userDir, err := UserDir(); err == nil {
		dirs = append(dirs, userDir)
	}

	tried := make([]string, 0, len(extensions)*len(dirs))
	for _, dir := range dirs {
		for _, ext := range extensions {
			p := filepath.Join(dir, name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
