package types_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"blah/internal/domain/types"
)

func TestUserKey_TextRoundTrip(t *testing.T) {
	_, k := testKey(t, 7)
	s := k.String()
	if len(s) != 64 || strings.ToLower(s) != s {
		t.Fatalf("String() = %q, want 64 lowercase hex chars", s)
	}
	parsed, err := types.ParseUserKey(s)
	if err != nil {
		t.Fatalf("ParseUserKey: %v", err)
	}
	if parsed != k {
		t.Fatal("round trip changed the key")
	}

	b, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"`+s+`"` {
		t.Fatalf("JSON form = %s", b)
	}
}

func TestUserKey_RejectsBadInput(t *testing.T) {
	if _, err := types.ParseUserKey("abcd"); !errors.Is(err, types.ErrInvalidIdentity) {
		t.Fatalf("short key: want ErrInvalidIdentity, got %v", err)
	}
	if _, err := types.UserKeyFromBytes(make([]byte, 31)); !errors.Is(err, types.ErrInvalidIdentity) {
		t.Fatalf("31 bytes: want ErrInvalidIdentity, got %v", err)
	}

	// y = 2 is not the y-coordinate of any curve point.
	notOnCurve := make([]byte, types.UserKeySize)
	notOnCurve[0] = 2
	if _, err := types.UserKeyFromBytes(notOnCurve); !errors.Is(err, types.ErrInvalidIdentity) {
		t.Fatalf("off-curve key: want ErrInvalidIdentity, got %v", err)
	}
}

func TestSignature_TextForm(t *testing.T) {
	var sig types.Signature
	sig[0], sig[63] = 0xab, 0x01
	text, err := sig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if len(text) != 128 || !strings.HasPrefix(string(text), "ab") || !strings.HasSuffix(string(text), "01") {
		t.Fatalf("MarshalText = %s", text)
	}

	var back types.Signature
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != sig {
		t.Fatal("round trip changed the signature")
	}
	if err := back.UnmarshalText(text[:126]); !errors.Is(err, types.ErrInvalidSignature) {
		t.Fatalf("short signature: want ErrInvalidSignature, got %v", err)
	}
}
