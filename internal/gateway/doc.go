// Package gateway routes inbound chat events through the upload and
// download flows. Each event runs on its own goroutine; per-user ordering
// is protected by the session store's slot locking, so a user's cancel is
// never stuck behind their own slow conversion.
package gateway
