package interfaces

import (
	"context"
	"crypto/ed25519"

	domaintypes "blah/internal/domain/types"
	"blah/internal/envelope"
)

// IdentityService creates, retrieves, and inspects your signing identity.
type IdentityService interface {
	GenerateIdentity(passphrase string) (domaintypes.UserKey, string, error)
	LoadIdentity(passphrase string) (ed25519.PrivateKey, error)
	FingerprintIdentity(passphrase string) (string, error)
}

// RoomService verifies envelopes and applies them to the room store.
type RoomService interface {
	Accept(ctx context.Context, data []byte) (envelope.Envelope[domaintypes.Payload], error)
}
