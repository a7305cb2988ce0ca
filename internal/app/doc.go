// Package app loads configuration and wires application dependencies
// for the CLI.
//
// Config is layered from defaults, an optional YAML file and BLAH_*
// environment variables. NewWire builds the key store, identity service
// and metrics from it; OpenRooms adds the SQLite room store and the
// room service on demand.
package app
