package identity_test

import (
	"bytes"
	"errors"
	"testing"

	"blah/internal/crypto"
	"blah/internal/domain/types"
	"blah/internal/services/identity"
	"blah/internal/store"
)

const strongPass = "Correct-Horse-9"

func newService(t *testing.T) *identity.Service {
	t.Helper()
	ks := store.NewKeyFileStore(t.TempDir(), store.WithScryptCost(1<<10))
	return identity.NewWithRand(ks, bytes.NewReader(bytes.Repeat([]byte{3}, 64)))
}

func TestGenerateLoadFingerprint(t *testing.T) {
	svc := newService(t)

	user, fp, err := svc.GenerateIdentity(strongPass)
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	if fp != crypto.Fingerprint(user) {
		t.Fatalf("fingerprint %q does not match identity", fp)
	}

	priv, err := svc.LoadIdentity(strongPass)
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if types.UserKeyOf(priv) != user {
		t.Fatal("loaded key does not match generated identity")
	}

	got, err := svc.FingerprintIdentity(strongPass)
	if err != nil {
		t.Fatalf("FingerprintIdentity: %v", err)
	}
	if got != fp {
		t.Fatalf("FingerprintIdentity = %q, want %q", got, fp)
	}
}

func TestGenerate_WeakPassphrase(t *testing.T) {
	svc := newService(t)
	for _, pass := range []string{"short1!A", "alllowercase-123", "NoDigitsHere!!", "NoSymbols12345"} {
		if _, _, err := svc.GenerateIdentity(pass); !errors.Is(err, identity.ErrWeakPassphrase) {
			t.Fatalf("%q: want ErrWeakPassphrase, got %v", pass, err)
		}
	}
}

func TestLoad_WrongPassphrase(t *testing.T) {
	svc := newService(t)
	if _, _, err := svc.GenerateIdentity(strongPass); err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	if _, err := svc.LoadIdentity("Wrong-Horse-99"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}
