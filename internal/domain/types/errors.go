package types

import (
	"errors"

	"blah/internal/canonical"
)

var (
	// ErrSerialization is returned when a value has no canonical encoding.
	ErrSerialization = canonical.ErrSerialization

	// ErrSigning is returned when a key or the random source fails during signing.
	ErrSigning = errors.New("signing failed")

	// ErrTimestampOutOfRange is returned when an envelope's timestamp is
	// outside the verifier's tolerance window.
	ErrTimestampOutOfRange = errors.New("timestamp out of range")

	// ErrInvalidSignature is returned when a signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidIdentity is returned when public-key bytes are not a valid Ed25519 key.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrInvalidRoster is returned for unsorted or duplicated room members.
	ErrInvalidRoster = errors.New("unsorted or duplicated users")

	// ErrUnknownPayloadTag is returned for a missing or unrecognized "typ".
	ErrUnknownPayloadTag = errors.New("unknown payload tag")

	// ErrInvalidPermission is returned when permission text is malformed.
	ErrInvalidPermission = errors.New("invalid permission")

	// ErrCreatorNotAdmin is returned when a room's initial members do not
	// include the creator with every permission bit.
	ErrCreatorNotAdmin = errors.New("room creator must be a member with all permissions")
)

var (
	// ErrNotFound is returned when a room or member does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMember is returned when adding a user who is already in the room.
	ErrAlreadyMember = errors.New("already a member")

	// ErrRoomExists is returned when creating a room whose id is taken.
	ErrRoomExists = errors.New("room already exists")

	// ErrDuplicateEnvelope is returned when an envelope was already accepted.
	ErrDuplicateEnvelope = errors.New("duplicate envelope")

	// ErrPermissionDenied is returned when the signer lacks a required permission.
	ErrPermissionDenied = errors.New("permission denied")
)
