package domain

import (
	interfaces "blah/internal/domain/interfaces"
	types "blah/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserKey           = types.UserKey
	Signature         = types.Signature
	ServerPermission  = types.ServerPermission
	MemberPermission  = types.MemberPermission
	RoomAttrs         = types.RoomAttrs
	RoomMember        = types.RoomMember
	RoomMemberList    = types.RoomMemberList
	Room              = types.Room
	Item              = types.Item
	Payload           = types.Payload
	PayloadType       = types.PayloadType
	ChatPayload       = types.ChatPayload
	CreateRoomPayload = types.CreateRoomPayload
	AuthPayload       = types.AuthPayload
	AddMemberPayload  = types.AddMemberPayload
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	RoomService     = interfaces.RoomService
	KeyStore        = interfaces.KeyStore
	RoomStore       = interfaces.RoomStore
)

// Error kinds, re-exported so callers can match with errors.Is without
// importing the types subpackage.
var (
	ErrSerialization       = types.ErrSerialization
	ErrSigning             = types.ErrSigning
	ErrTimestampOutOfRange = types.ErrTimestampOutOfRange
	ErrInvalidSignature    = types.ErrInvalidSignature
	ErrInvalidIdentity     = types.ErrInvalidIdentity
	ErrInvalidRoster       = types.ErrInvalidRoster
	ErrUnknownPayloadTag   = types.ErrUnknownPayloadTag
	ErrInvalidPermission   = types.ErrInvalidPermission
	ErrCreatorNotAdmin     = types.ErrCreatorNotAdmin
	ErrNotFound            = types.ErrNotFound
	ErrAlreadyMember       = types.ErrAlreadyMember
	ErrRoomExists          = types.ErrRoomExists
	ErrDuplicateEnvelope   = types.ErrDuplicateEnvelope
	ErrPermissionDenied    = types.ErrPermissionDenied
)
