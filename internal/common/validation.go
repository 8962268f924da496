package common

import (
	"fmt"
	"slices"

	"applytrack/internal/formatters"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the configured formats, or every registered
// format when none are configured.
func GetSupportedFormats(configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return formatters.GlobalRegistry.GetSupportedFormats()
}
