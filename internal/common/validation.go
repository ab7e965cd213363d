package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat checks format against the configured allow-list. An
// empty list means every format the registry knows is acceptable.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format %q (supported: %s)",
		format, strings.Join(supportedFormats, ", "))
}

// GetSupportedFormats returns a copy of the configured format allow-list,
// used for shell completion.
func GetSupportedFormats(supportedFormats []string) []string {
	return slices.Clone(supportedFormats)
}
