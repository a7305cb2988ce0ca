package identity

import (
	"crypto/ed25519"
	"fmt"
	"io"
	"unicode"

	"blah/internal/crypto"
	"blah/internal/domain"
	domaintypes "blah/internal/domain/types"
)

// minPassphraseLength is the minimum number of characters in a passphrase.
const minPassphraseLength = 12

// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
var ErrWeakPassphrase = fmt.Errorf(
	"passphrase is too weak (must be at least %d characters and include upper, lower, "+
		"number, and symbol)",
	minPassphraseLength,
)

// Service creates and unlocks the local Ed25519 signing identity.
type Service struct {
	store  domain.KeyStore
	random io.Reader
}

// New returns an identity service backed by the given key store.
// Keys are generated from crypto/rand.
func New(s domain.KeyStore) *Service { return &Service{store: s} }

// NewWithRand is New with an explicit randomness source for key
// generation.
func NewWithRand(s domain.KeyStore, random io.Reader) *Service {
	return &Service{store: s, random: random}
}

// GenerateIdentity creates a signing key, saves it sealed with the
// passphrase, and returns the public identity and its fingerprint.
func (s *Service) GenerateIdentity(passphrase string) (domain.UserKey, string, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.UserKey{}, "", ErrWeakPassphrase
	}
	priv, user, err := crypto.GenerateEd25519(s.random)
	if err != nil {
		return domain.UserKey{}, "", err
	}
	defer crypto.WipeKey(priv)

	if err := s.store.SaveSigningKey(passphrase, priv); err != nil {
		return domain.UserKey{}, "", err
	}
	return user, crypto.Fingerprint(user), nil
}

// LoadIdentity unseals and returns the signing key. Callers should
// crypto.WipeKey it when done.
func (s *Service) LoadIdentity(passphrase string) (ed25519.PrivateKey, error) {
	return s.store.LoadSigningKey(passphrase)
}

// FingerprintIdentity returns the fingerprint of the local identity.
func (s *Service) FingerprintIdentity(passphrase string) (string, error) {
	priv, err := s.store.LoadSigningKey(passphrase)
	if err != nil {
		return "", err
	}
	defer crypto.WipeKey(priv)
	return crypto.Fingerprint(domaintypes.UserKeyOf(priv)), nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
