// Package cmd implements the command-line interface for the taxreg taxpayer
// registry. It provides a hierarchical command structure with operations for
// running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the taxreg server
//   - user: Commands for driving the registry as a client (login, register, save, find, retrieve)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See taxreg -help for a list of all commands.
package cmd
