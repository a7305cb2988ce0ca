// Package room applies signed envelopes to the room store.
//
// Accept decodes and verifies an envelope against the service clock,
// then checks the signer's permissions for the payload:
//
//   - create_room needs the CreateRoom server permission and a roster
//     that makes the signer a member with every permission
//   - add_member needs AddMember in the room, and the granted bits must
//     be a subset of the signer's own
//   - chat needs PostChat in the room
//   - auth needs nothing; a valid envelope proves the key is held
//
// Every stored envelope is archived under its room, and the archive's
// digest key rejects replays that are still inside the freshness window.
package room
