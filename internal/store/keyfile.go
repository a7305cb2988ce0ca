package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// keyFileVersion is the current on-disk format of sealed key files.
const keyFileVersion = 1

// ErrWrongPassphrase is returned when a sealed file does not open,
// either because the passphrase is wrong or the file was modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key file")

// sealedFile is the JSON structure of a passphrase-protected file.
type sealedFile struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// scryptParams are the key-derivation costs for newly sealed files.
type scryptParams struct{ N, r, p int }

var defaultScrypt = scryptParams{N: 1 << 15, r: 8, p: 1}

// seal derives a key from passphrase with a fresh salt and encrypts raw.
// The zero nonce is safe because every salt yields a new key.
func seal(passphrase string, raw []byte, params scryptParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	aead, err := deriveAEAD(passphrase, salt[:], params)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	return json.Marshal(sealedFile{
		V:      keyFileVersion,
		Salt:   salt[:],
		N:      params.N,
		R:      params.r,
		P:      params.p,
		Cipher: aead.Seal(nil, nonce[:], raw, salt[:]),
	})
}

// open reverses seal.
func open(passphrase string, data []byte) ([]byte, error) {
	var f sealedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing key file: %w", err)
	}
	if f.V != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version %d", f.V)
	}
	aead, err := deriveAEAD(passphrase, f.Salt, scryptParams{N: f.N, r: f.R, p: f.P})
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	raw, err := aead.Open(nil, nonce[:], f.Cipher, f.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return raw, nil
}

func deriveAEAD(passphrase string, salt []byte, params scryptParams) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, params.N, params.r, params.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return chacha20poly1305.New(key)
}
