package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("assets: style not found")
	ErrScriptNotFound   = errors.New("assets: script not found")
	ErrInvalidAssetName = errors.New("assets: invalid asset name") // separators, dots, empty
	ErrInvalidBasePath  = errors.New("assets: base path is not a directory")
	ErrAssetRead        = errors.New("assets: read failed")
	ErrPathTraversal    = errors.New("assets: path escapes the base directory")
)
