// Package socket implements the chat transport as newline-delimited JSON
// over a Unix domain socket. A connector process (the piece that speaks
// the actual chat protocol) dials in, pushes user events, and services
// outbound sends and file retrievals. The daemon stays free of any chat
// SDK dependency.
package socket
