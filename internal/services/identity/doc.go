// Package identity manages creation, sealing and loading of the local
// signing identity.
//
// It enforces passphrase policy, generates Ed25519 keys, and persists
// them via the domain.KeyStore.
package identity
