// Package history persists a ledger of completed and failed jobs in
// SQLite. Session state stays in memory; the ledger exists for operators,
// surfaced through the control socket and CLI.
package history
