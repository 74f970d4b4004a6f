// Package cmd provides CLI commands for the gatekeeper tool.
//
// This package implements the command-line interface for gatekeeper,
// providing commands for provisioning least-privilege MySQL users,
// auditing their grants, and running a disposable local MySQL server
// for development.
//
// # Available Commands
//
// The cmd package currently provides:
//   - init: Create a starter gatekeeper.yaml
//   - plan: Show the SQL statements provisioning would execute
//   - provision: Create a least-privilege user for the configured database
//   - verify: Audit the provisioned user's grants
//   - status: Show configuration, dev server, and connection status
//   - dev up / dev down: Manage a local MySQL development server
//
// # Command Structure
//
// Each command is implemented as a constructor function that returns a
// *cli.Command, following the urfave/cli/v3 pattern. Constructors receive
// their dependencies (primarily the loaded *config.Config) through fx
// parameter structs and are registered into the CLI application via the
// package's fx module.
//
// # Global Options
//
// All commands support global flags:
//   - --dir, -d: Specify project directory (defaults to current directory)
//   - --help, -h: Display command help
//   - --version: Display version information
//
// # Example Usage
//
// Commands are registered in the main application and can be invoked
// from the command line:
//
//	gatekeeper init --database ghost_dev     # Create gatekeeper.yaml
//	gatekeeper dev up                        # Start a local MySQL server
//	gatekeeper plan                          # Preview the provisioning SQL
//	gatekeeper provision                     # Create the application user
//	gatekeeper verify                        # Audit the user's grants
//	gatekeeper status                        # Show project state
//
// A typical workflow runs the commands in exactly that order: the config
// starts out holding administrative credentials, provision swaps them for
// the generated application user, and verify confirms the user can reach
// the configured database and nothing else.
package cmd
