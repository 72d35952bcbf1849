package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that could leave the asset directory or
// change the extension: empty names and any containing '/', '\' or '.'.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
