// Package commands defines the blah CLI and wires dependencies for subcommands.
//
// Commands
//
//   - keygen         Create the local signing identity
//   - whoami         Print the identity and its fingerprint
//   - sign           Sign a chat, create-room, add-member or auth payload
//   - verify         Check an envelope's freshness and signature
//   - apply          Verify an envelope and apply it to the room database
//   - grant          Set a user's server permissions
//   - rooms          List rooms, members and archived items
//   - serve          Run the relay HTTP server
//   - push           Submit an envelope to a relay
//
// # Implementation
//
// The root command loads the layered configuration (defaults, YAML file,
// BLAH_* environment, then flags) and builds the dependency graph before
// any subcommand runs. Commands that touch the room database open it
// through the shared Wire, and the root closes it afterwards.
package commands
