package interfaces

import (
	"context"
	"crypto/ed25519"

	"github.com/google/uuid"

	domaintypes "blah/internal/domain/types"
)

// KeyStore persists your signing key, encrypted under a passphrase.
type KeyStore interface {
	SaveSigningKey(passphrase string, key ed25519.PrivateKey) error
	LoadSigningKey(passphrase string) (ed25519.PrivateKey, error)
}

// RoomStore persists server grants, rooms, their members and accepted items.
type RoomStore interface {
	// Server-wide grants. Unknown users have no permissions.
	SetServerPermission(ctx context.Context, user domaintypes.UserKey, perm domaintypes.ServerPermission) error
	ServerPermission(ctx context.Context, user domaintypes.UserKey) (domaintypes.ServerPermission, error)

	// Rooms. CreateRoom archives item, the create_room envelope, in the
	// same transaction.
	CreateRoom(ctx context.Context, room domaintypes.Room, members domaintypes.RoomMemberList, item domaintypes.Item) error
	Room(ctx context.Context, rid uuid.UUID) (domaintypes.Room, error)
	Rooms(ctx context.Context) ([]domaintypes.Room, error)

	// Members. AddMember archives item, the add_member envelope, in the
	// same transaction.
	AddMember(ctx context.Context, rid uuid.UUID, member domaintypes.RoomMember, item domaintypes.Item) error
	Member(ctx context.Context, rid uuid.UUID, user domaintypes.UserKey) (domaintypes.MemberPermission, bool, error)
	Members(ctx context.Context, rid uuid.UUID) (domaintypes.RoomMemberList, error)

	// Items
	AppendItem(ctx context.Context, item domaintypes.Item) error
	Items(ctx context.Context, rid uuid.UUID, limit int) ([]domaintypes.Item, error)
}
