// Package envelope signs and verifies payloads.
//
// Contents
//
//   - Signee and Envelope, the signed wire structures
//   - Sign, SignAt and Signer for producing envelopes
//   - Verify and VerifyAt for checking freshness and signature
//   - Decode and DecodeAs for strict wire decoding
//
// # Notes
//
// The bytes that are signed are the canonical JSON encoding of the
// Signee. Decode only accepts envelopes already in canonical form, so
// the re-encoded Signee a verifier checks is byte-for-byte the text that
// arrived on the wire.
//
// Verification checks the timestamp first. An envelope whose timestamp
// lies TimestampTolerance or more away from the verifier's clock fails
// with ErrTimestampOutOfRange without touching the signature. Replays
// inside the window are not detected here; Envelope.Digest gives callers
// a stable key to deduplicate on.
package envelope
