package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"filippo.io/edwards25519"

	"blah/internal/domain/types"
)

// GenerateEd25519 returns a new Ed25519 signing key and its identity.
// A nil random source means crypto/rand.
func GenerateEd25519(random io.Reader) (ed25519.PrivateKey, types.UserKey, error) {
	if random == nil {
		random = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return nil, types.UserKey{}, fmt.Errorf("generating Ed25519 key: %w", err)
	}
	var user types.UserKey
	copy(user[:], pub)
	return priv, user, nil
}

// KeyFromSeed derives the signing key for a 32-byte seed.
func KeyFromSeed(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed has %d bytes, want %d", types.ErrSigning, len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Sign signs msg with priv. The key must be a well-formed
// crypto/ed25519 private key whose public half matches its seed.
func Sign(priv ed25519.PrivateKey, msg []byte) (types.Signature, error) {
	var sig types.Signature
	if len(priv) != ed25519.PrivateKeySize {
		return sig, fmt.Errorf("%w: private key has %d bytes, want %d", types.ErrSigning, len(priv), ed25519.PrivateKeySize)
	}
	derived := ed25519.NewKeyFromSeed(priv.Seed())
	if !derived.Equal(priv) {
		return sig, fmt.Errorf("%w: public half does not match seed", types.ErrSigning)
	}
	copy(sig[:], ed25519.Sign(priv, msg))
	return sig, nil
}

// VerifyStrict verifies sig over msg under user. It returns
// ErrInvalidIdentity if user is not a curve point and
// ErrInvalidSignature for any other failure.
func VerifyStrict(user types.UserKey, msg []byte, sig types.Signature) error {
	a, err := new(edwards25519.Point).SetBytes(user[:])
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidIdentity, err)
	}
	if isSmallOrder(a) {
		return fmt.Errorf("%w: weak public key", types.ErrInvalidSignature)
	}

	r, err := new(edwards25519.Point).SetBytes(sig[:32])
	if err != nil {
		return fmt.Errorf("%w: R is not a curve point", types.ErrInvalidSignature)
	}
	if isSmallOrder(r) {
		return fmt.Errorf("%w: small-order R", types.ErrInvalidSignature)
	}
	if _, err := new(edwards25519.Scalar).SetCanonicalBytes(sig[32:]); err != nil {
		return fmt.Errorf("%w: non-canonical S", types.ErrInvalidSignature)
	}

	if !ed25519.Verify(user.PublicKey(), msg, sig[:]) {
		return types.ErrInvalidSignature
	}
	return nil
}

func isSmallOrder(p *edwards25519.Point) bool {
	return new(edwards25519.Point).MultByCofactor(p).Equal(edwards25519.NewIdentityPoint()) == 1
}
