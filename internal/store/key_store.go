package store

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"blah/internal/crypto"
	"blah/internal/domain"
)

const signingKeyFilename = "signing.key.enc"

// ErrNoSigningKey is returned by LoadSigningKey before a key is saved.
var ErrNoSigningKey = errors.New("no signing key; run keygen first")

// KeyFileStore keeps the signing key's seed in a passphrase-sealed file.
type KeyFileStore struct {
	dir    string
	params scryptParams
	mu     sync.Mutex
}

// KeyFileOption configures a KeyFileStore.
type KeyFileOption func(*KeyFileStore)

// WithScryptCost sets the scrypt CPU/memory cost N for newly sealed
// files. N must be a power of two greater than 1. Files sealed with
// any cost remain readable.
func WithScryptCost(n int) KeyFileOption {
	return func(s *KeyFileStore) { s.params.N = n }
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string, opts ...KeyFileOption) *KeyFileStore {
	s := &KeyFileStore{dir: dir, params: defaultScrypt}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file the key is stored in.
func (s *KeyFileStore) Path() string { return filepath.Join(s.dir, signingKeyFilename) }

// SaveSigningKey seals key's seed under passphrase, replacing any
// previous key.
func (s *KeyFileStore) SaveSigningKey(passphrase string, key ed25519.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("signing key has %d bytes", len(key))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := key.Seed()
	defer crypto.Wipe(seed)
	sealed, err := seal(passphrase, seed, s.params)
	if err != nil {
		return fmt.Errorf("sealing signing key: %w", err)
	}
	return writeFile(s.Path(), sealed, 0o600)
}

// LoadSigningKey opens the key file with passphrase.
func (s *KeyFileStore) LoadSigningKey(passphrase string) (ed25519.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := readFile(s.Path())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s: %w", s.Path(), ErrNoSigningKey)
	}
	seed, err := open(passphrase, data)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(seed)
	return crypto.KeyFromSeed(seed)
}

// Exists reports whether a key file is present.
func (s *KeyFileStore) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
