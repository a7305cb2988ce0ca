package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"blah/internal/domain/types"
)

// Fingerprint returns a short hex fingerprint of a user key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(user types.UserKey) string {
	sum := sha256.Sum256(user[:])
	return hex.EncodeToString(sum[:10])
}
