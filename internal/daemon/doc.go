// Package daemon assembles the running service: single-instance lock,
// artifact store, session store, chat transport, gateway, sweeper, and
// the control surface the CLI talks to.
package daemon
