package pipeline

import "errors"

var (
	ErrParse           = errors.New("pipeline: cannot parse page")
	ErrRender          = errors.New("pipeline: cannot render page")
	ErrNoContents      = errors.New("pipeline: contents list not found")
	ErrMath            = errors.New("pipeline: math rendering failed")
	ErrUnknownLanguage = errors.New("pipeline: unknown highlight language")
	ErrUnknownStyle    = errors.New("pipeline: unknown highlight style")
)
