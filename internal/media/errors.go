package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolMissing indicates an external binary is not installed.
	ErrToolMissing = errors.New("external tool missing")
	// ErrToolError indicates an external tool ran and failed.
	ErrToolError = errors.New("external tool error")
	// ErrUnavailable indicates remote content is private, deleted, or
	// region-locked.
	ErrUnavailable = errors.New("content unavailable")
	// ErrAuthRequired indicates the remote source demands authentication.
	ErrAuthRequired = errors.New("authentication required")
	// ErrFetch is the generic remote fetch/download failure.
	ErrFetch = errors.New("fetch failed")
	// ErrTooLarge indicates the remote source refused or produced an
	// artifact above the configured ceiling.
	ErrTooLarge = errors.New("result too large")
)

// Wrap tags an error with one of the sentinel markers above while keeping
// operation context in the message chain.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrToolError
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "media operation failure"
	}
	return strings.Join(parts, ": ")
}
