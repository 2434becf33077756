// Package logging configures slog output for the daemon and CLI.
//
// Two formats are supported: a compact console format for interactive use
// and JSON for log shipping. Component loggers carry a "component" attr
// that the console handler promotes into the message prefix.
package logging
