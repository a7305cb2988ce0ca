package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"blah/internal/canonical"
)

// PayloadType is the "typ" discriminant carried by every payload.
type PayloadType string

const (
	PayloadChat       PayloadType = "chat"
	PayloadCreateRoom PayloadType = "create_room"
	PayloadAuth       PayloadType = "auth"
	PayloadAddMember  PayloadType = "add_member"
)

// Payload is implemented by ChatPayload, CreateRoomPayload, AuthPayload
// and AddMemberPayload only.
type Payload interface {
	Type() PayloadType
	isPayload()
}

// ChatPayload is a chat message posted to a room.
type ChatPayload struct {
	Room uuid.UUID
	Text string
}

type chatWire struct {
	Room uuid.UUID   `json:"room"`
	Text string      `json:"text"`
	Typ  PayloadType `json:"typ"`
}

func (ChatPayload) Type() PayloadType { return PayloadChat }
func (ChatPayload) isPayload()        {}

func (p ChatPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(chatWire{Room: p.Room, Text: p.Text, Typ: PayloadChat})
}

func (p *ChatPayload) UnmarshalJSON(data []byte) error {
	var w chatWire
	if err := decodeVariant(data, PayloadChat, &w, &w.Typ); err != nil {
		return err
	}
	*p = ChatPayload{Room: w.Room, Text: w.Text}
	return nil
}

// CreateRoomPayload creates a room with an initial member list. The
// list must contain the creator with MemberAll; use
// NewCreateRoomPayload to build one and CheckCreator when the creator
// is only known from the envelope.
type CreateRoomPayload struct {
	Attrs   RoomAttrs
	Members RoomMemberList
	Title   string
}

type createRoomWire struct {
	Attrs   RoomAttrs      `json:"attrs"`
	Members RoomMemberList `json:"members"`
	Title   string         `json:"title"`
	Typ     PayloadType    `json:"typ"`
}

// NewCreateRoomPayload builds a create_room payload for creator.
func NewCreateRoomPayload(creator UserKey, attrs RoomAttrs, members RoomMemberList, title string) (CreateRoomPayload, error) {
	p := CreateRoomPayload{Attrs: attrs, Members: members, Title: title}
	if err := p.CheckCreator(creator); err != nil {
		return CreateRoomPayload{}, err
	}
	return p, nil
}

// CheckCreator returns ErrCreatorNotAdmin unless creator is a member
// holding every permission bit.
func (p CreateRoomPayload) CheckCreator(creator UserKey) error {
	perm, ok := p.Members.Lookup(creator)
	if !ok || perm != MemberAll {
		return fmt.Errorf("%w: %s", ErrCreatorNotAdmin, creator)
	}
	return nil
}

func (CreateRoomPayload) Type() PayloadType { return PayloadCreateRoom }
func (CreateRoomPayload) isPayload()        {}

func (p CreateRoomPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(createRoomWire{Attrs: p.Attrs, Members: p.Members, Title: p.Title, Typ: PayloadCreateRoom})
}

func (p *CreateRoomPayload) UnmarshalJSON(data []byte) error {
	var w createRoomWire
	if err := decodeVariant(data, PayloadCreateRoom, &w, &w.Typ); err != nil {
		return err
	}
	*p = CreateRoomPayload{Attrs: w.Attrs, Members: w.Members, Title: w.Title}
	return nil
}

// AuthPayload proves room membership for read access. It has no fields.
type AuthPayload struct{}

type authWire struct {
	Typ PayloadType `json:"typ"`
}

func (AuthPayload) Type() PayloadType { return PayloadAuth }
func (AuthPayload) isPayload()        {}

func (AuthPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(authWire{Typ: PayloadAuth})
}

func (p *AuthPayload) UnmarshalJSON(data []byte) error {
	var w authWire
	return decodeVariant(data, PayloadAuth, &w, &w.Typ)
}

// AddMemberPayload is the room administration command that adds User
// to Room with Permission.
type AddMemberPayload struct {
	Permission MemberPermission
	Room       uuid.UUID
	User       UserKey
}

type addMemberWire struct {
	Permission MemberPermission `json:"permission"`
	Room       uuid.UUID        `json:"room"`
	Typ        PayloadType      `json:"typ"`
	User       UserKey          `json:"user"`
}

func (AddMemberPayload) Type() PayloadType { return PayloadAddMember }
func (AddMemberPayload) isPayload()        {}

func (p AddMemberPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(addMemberWire{Permission: p.Permission, Room: p.Room, Typ: PayloadAddMember, User: p.User})
}

func (p *AddMemberPayload) UnmarshalJSON(data []byte) error {
	var w addMemberWire
	if err := decodeVariant(data, PayloadAddMember, &w, &w.Typ); err != nil {
		return err
	}
	if err := w.User.Validate(); err != nil {
		return err
	}
	*p = AddMemberPayload{Permission: w.Permission, Room: w.Room, User: w.User}
	return nil
}

// DecodePayload decodes any payload variant, dispatching on "typ".
// Unknown fields are rejected for every variant.
func DecodePayload(data []byte) (Payload, error) {
	var head struct {
		Typ *PayloadType `json:"typ"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	if head.Typ == nil {
		return nil, fmt.Errorf("%w: missing typ", ErrUnknownPayloadTag)
	}

	switch *head.Typ {
	case PayloadChat:
		return decodeAs[ChatPayload](data)
	case PayloadCreateRoom:
		return decodeAs[CreateRoomPayload](data)
	case PayloadAuth:
		return decodeAs[AuthPayload](data)
	case PayloadAddMember:
		return decodeAs[AddMemberPayload](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayloadTag, *head.Typ)
	}
}

func decodeAs[P Payload, PP interface {
	*P
	json.Unmarshaler
}](data []byte) (Payload, error) {
	var p P
	if err := PP(&p).UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeVariant strictly decodes data into wire and checks that the
// decoded tag equals want.
func decodeVariant(data []byte, want PayloadType, wire any, typ *PayloadType) error {
	if err := canonical.DecodeStrict(data, wire); err != nil {
		return err
	}
	if *typ != want {
		return fmt.Errorf("%w: got %q, want %q", ErrUnknownPayloadTag, *typ, want)
	}
	return nil
}
