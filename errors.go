package booksite

import "errors"

// Sentinel errors for library operations.
var (
	// Input validation errors.
	ErrNoSourceDir       = errors.New("source directory is required")
	ErrNoOutputDir       = errors.New("output directory is required")
	ErrSameDir           = errors.New("output directory must differ from source directory")
	ErrInvalidCopy       = errors.New("invalid copy entry")
	ErrInvalidFontFormat = errors.New("invalid font format")

	// Build errors.
	ErrNoPages          = errors.New("no .xhtml pages found")
	ErrNoIndexPage      = errors.New("index page not found")
	ErrCopy             = errors.New("copying asset failed")
	ErrPageBuild        = errors.New("page build failed")
	ErrAssetLoad        = errors.New("loading site asset failed")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrHighlight        = errors.New("invalid highlight settings")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPageEval       = errors.New("page script evaluation failed")
)
