// Package ipc exposes daemon control via JSON-RPC over a Unix domain
// socket. The CLI is the only intended client; the chat transport has its
// own socket and protocol.
package ipc
