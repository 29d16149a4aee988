// Package app wires application dependencies for the CLI.
//
// It builds the relay or local network store, the asynchronous network
// client, the messaging service and the client facade from Config, exposing
// them via the Wire struct for commands to use. SetupLogging routes every
// subsystem logger to one backend.
package app
