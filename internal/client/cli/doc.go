// Package cli provides the interactive photo library command-line client.
//
// It wires configuration, the local session database, API services and a
// REPL. A session saved by a previous run is restored on start, so the user
// only logs in once per token lifetime.
//
// Commands:
//   - signup / login / logout
//   - upload <path>: send a local image straight to object storage
//   - list [page] [limit], show <id>, edit <id>, delete <id>
//   - view <id>: print a temporary download link
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
