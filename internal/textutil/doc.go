// Package textutil provides string helpers shared across the gateway:
// filename sanitization, user-facing error truncation, and human-readable
// formatting of sizes, durations, and counts.
package textutil
