// Package cli provides the interactive terminal client for the book
// platform's account system.
//
// It wires configuration, the local credential store, the HTTP gateway, the
// auth service and the session controller, then runs a REPL. The session is
// restored from local storage at start-up and, when configured, verified
// against the backend in the background.
//
// Commands:
//   - register: the three-step registration wizard
//   - login / logout / forgot
//   - whoami / profile / refresh
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
