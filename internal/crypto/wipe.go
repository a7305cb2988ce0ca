package crypto

import (
	"crypto/ed25519"
	"runtime"
)

// Wipe zeroes b in place. Best-effort: Go may already have copied the
// bytes elsewhere.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(&b)
}

// WipeKey zeroes a signing key, seed and public half alike.
func WipeKey(priv ed25519.PrivateKey) { Wipe(priv) }
