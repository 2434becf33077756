// Package session tracks each user's in-flight flow state: at most one
// pending upload or pending download per user. The store is the single
// writer for a user's slot; flows hold copies plus an ownership token and
// commit transitions back through the store, which rejects commits against
// state that was cleared or superseded in the meantime.
package session
