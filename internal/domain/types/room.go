package types

import "github.com/google/uuid"

// Room is a stored room as created by a create_room payload.
type Room struct {
	ID        uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Attrs     RoomAttrs `json:"attrs"`
	CreatedAt uint64    `json:"created_at"`
}

// Item is an accepted envelope archived under a room. Signee holds the
// canonical JSON that Sig covers, so the envelope can be rebuilt and
// verified again.
type Item struct {
	Digest    [32]byte
	Room      uuid.UUID
	User      UserKey
	Timestamp uint64
	Sig       Signature
	Signee    []byte
}
