package assets

// Built-in asset names.
const (
	DefaultStyleName = "book"
	NavigatorScript  = "toc"
)

// AssetLoader loads site stylesheets and client scripts by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadScript loads a script by name (without .js extension).
	// Returns ErrScriptNotFound if the script doesn't exist.
	LoadScript(name string) (string, error)
}
