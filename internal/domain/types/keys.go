package types

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// UserKeySize is the length of an Ed25519 public key.
	UserKeySize = ed25519.PublicKeySize

	// SignatureSize is the length of an Ed25519 signature.
	SignatureSize = ed25519.SignatureSize
)

// UserKey is a user's identity: a raw Ed25519 public key. Its text form
// is lowercase hex.
type UserKey [UserKeySize]byte

// UserKeyFromBytes copies b into a UserKey and checks that it decodes to
// a point on the curve.
func UserKeyFromBytes(b []byte) (UserKey, error) {
	var k UserKey
	if len(b) != UserKeySize {
		return k, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidIdentity, UserKeySize, len(b))
	}
	copy(k[:], b)
	if err := k.Validate(); err != nil {
		return UserKey{}, err
	}
	return k, nil
}

// ParseUserKey parses the hex text form of a key and validates it.
func ParseUserKey(s string) (UserKey, error) {
	var k UserKey
	if err := k.UnmarshalText([]byte(s)); err != nil {
		return UserKey{}, err
	}
	if err := k.Validate(); err != nil {
		return UserKey{}, err
	}
	return k, nil
}

// UserKeyOf returns the identity of a signing key.
func UserKeyOf(priv ed25519.PrivateKey) UserKey {
	var k UserKey
	copy(k[:], priv.Public().(ed25519.PublicKey))
	return k
}

// Validate reports ErrInvalidIdentity if k is not the encoding of a
// point on edwards25519.
func (k UserKey) Validate() error {
	if _, err := new(edwards25519.Point).SetBytes(k[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return nil
}

// Slice returns the key as a []byte.
func (k UserKey) Slice() []byte { return k[:] }

// PublicKey returns the key in crypto/ed25519 form.
func (k UserKey) PublicKey() ed25519.PublicKey { return ed25519.PublicKey(k.Slice()) }

func (k UserKey) String() string {
	var buf [UserKeySize * 2]byte
	hex.Encode(buf[:], k[:])
	return string(buf[:])
}

// MarshalText encodes the key as lowercase hex.
func (k UserKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes hex text. Only the length is checked here; use
// Validate for the curve check.
func (k *UserKey) UnmarshalText(text []byte) error {
	return decodeFixedHex(k[:], text, ErrInvalidIdentity)
}

// Signature is a raw Ed25519 signature. Its text form is lowercase hex.
type Signature [SignatureSize]byte

// Slice returns the signature as a []byte.
func (s Signature) Slice() []byte { return s[:] }

func (s Signature) String() string { return hex.EncodeToString(s[:]) }

// MarshalText encodes the signature as lowercase hex.
func (s Signature) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes hex text of exactly SignatureSize bytes.
func (s *Signature) UnmarshalText(text []byte) error {
	return decodeFixedHex(s[:], text, ErrInvalidSignature)
}

func decodeFixedHex(dst, text []byte, kind error) error {
	if len(text) != 2*len(dst) {
		return fmt.Errorf("%w: want %d hex chars, got %d", kind, 2*len(dst), len(text))
	}
	if _, err := hex.Decode(dst, text); err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	return nil
}
