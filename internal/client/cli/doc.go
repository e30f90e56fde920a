// Package cli provides the interactive gallery terminal client.
//
// It wires configuration, the local SQLite state, the HTTP API client and an
// editing REPL. An image opened with "open <id>" gets a fresh overlay editor
// session; overlays are added, edited, duplicated and removed with undo/redo,
// then exported either locally ("export") with the same compositor the
// server uses, or by the server ("export-server").
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
