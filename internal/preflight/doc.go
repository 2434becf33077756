// Package preflight verifies the runtime environment before the daemon
// accepts traffic: working directories, external binaries, cookies file,
// and free disk space in the temp workspace.
package preflight
