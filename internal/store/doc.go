// Package store provides persistence for blah.
//
// It contains:
//   - Column adapters mapping identities to BLOBs and permission sets to
//     INTEGERs (UserKeyToColumn, PermissionToColumn and friends)
//   - A SQLite connection pool (Pool)
//   - The room store: server grants, rooms, members and archived
//     envelopes (RoomStore)
//   - The passphrase-sealed signing key file (KeyFileStore)
//
// All stores are safe for concurrent use.
package store
