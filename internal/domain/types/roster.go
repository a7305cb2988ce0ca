package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"blah/internal/canonical"
)

// RoomMember is one entry of a room's member list.
type RoomMember struct {
	Permission MemberPermission `json:"permission"`
	User       UserKey          `json:"user"`
}

// RoomMemberList is a room's members sorted strictly by user key. The
// ordering makes the list's canonical bytes independent of how it was
// assembled and rules out duplicates.
//
// The zero value is an empty list.
type RoomMemberList struct {
	members []RoomMember
}

// NewRoomMemberList checks that every user key is a curve point
// (ErrInvalidIdentity) and that members are strictly increasing by user
// key (ErrInvalidRoster). Input is never sorted or deduplicated on the
// caller's behalf.
func NewRoomMemberList(members []RoomMember) (RoomMemberList, error) {
	for i, m := range members {
		if err := m.User.Validate(); err != nil {
			return RoomMemberList{}, fmt.Errorf("member %d: %w", i, err)
		}
	}
	for i := 1; i < len(members); i++ {
		if bytes.Compare(members[i-1].User[:], members[i].User[:]) >= 0 {
			return RoomMemberList{}, fmt.Errorf("%w: at index %d", ErrInvalidRoster, i)
		}
	}
	return RoomMemberList{members: slices.Clone(members)}, nil
}

// Members returns a copy of the entries.
func (l RoomMemberList) Members() []RoomMember { return slices.Clone(l.members) }

// Len returns the number of members.
func (l RoomMemberList) Len() int { return len(l.members) }

// Lookup returns the permission of user, if present.
func (l RoomMemberList) Lookup(user UserKey) (MemberPermission, bool) {
	i, ok := slices.BinarySearchFunc(l.members, user, func(m RoomMember, k UserKey) int {
		return bytes.Compare(m.User[:], k[:])
	})
	if !ok {
		return 0, false
	}
	return l.members[i].Permission, true
}

func (l RoomMemberList) MarshalJSON() ([]byte, error) {
	if l.members == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.members)
}

func (l *RoomMemberList) UnmarshalJSON(data []byte) error {
	var members []RoomMember
	if err := canonical.DecodeStrict(data, &members); err != nil {
		return err
	}
	list, err := NewRoomMemberList(members)
	if err != nil {
		return err
	}
	*l = list
	return nil
}
