// Package crypto exposes the Ed25519 primitives used by blah.
//
// Contents
//
//   - Key generation and derivation from a seed (GenerateEd25519,
//     KeyFromSeed)
//   - Signing and strict verification (Sign, VerifyStrict)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe, WipeKey)
//
// # Notes
//
// VerifyStrict is stricter than crypto/ed25519.Verify: it also rejects
// small-order public keys and small-order R components, so a signature
// cannot be made to verify under more than one key or message. Keys are
// returned as domain types so callers do not juggle raw slices.
package crypto
