// Package cli provides the journal command-line client.
//
// It wires configuration, the local session database and the auth API
// service. A command given on the command line runs once; with no command
// the interactive REPL starts and runs until the user exits.
//
// Commands:
//   - register / login     create an account or sign in (password read without echo)
//   - github               print the GitHub login URL
//   - whoami               show the signed-in principal, refreshing tokens if needed
//   - refresh              rotate the stored refresh token
//   - logout               end the session on the server and locally
package cli
