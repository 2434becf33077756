// Package main hosts the mediagate CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into control
// socket calls against the daemon, storage inspection, and configuration
// scaffolding. It centralizes configuration resolution and socket discovery
// so subcommands can focus on presentation.
package main
