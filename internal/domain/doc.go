// Package domain defines the protocol's data model and the contracts
// between its layers. It contains plain types and interfaces only.
//
// Contents
//
//   - types: identities, permission sets, rosters, payloads and rooms
//   - interfaces: store and service contracts
//   - exports.go: aliases and error kinds for compact imports
package domain
