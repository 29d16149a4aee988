// Package commands defines the lifestuff CLI and wires dependencies for subcommands.
//
// Commands
//
//   - create           Create an account for --keyword, --pin and --password
//   - login            Log in, print the account summary and log out
//   - exists           Report whether an account exists for --keyword and --pin
//   - change-keyword   Move the account to --new-keyword
//   - change-pin       Move the account to --new-pin
//   - change-password  Re-encrypt the account under --new-password
//   - remove           Delete the account from the network
//   - mount            Mount the drive until interrupted
//   - contact          Add, list and search contacts
//   - share            Create a share, or sync and list received shares
//
// # Implementation
//
// The root command builds the dependency graph (network store, worker pool,
// client facade) before any subcommand runs. Secrets given as flags are fed
// through the same input editing calls an interactive front end would use.
package commands
