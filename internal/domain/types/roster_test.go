package types_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"blah/internal/domain/types"
)

// offCurveKey is 32 bytes of valid hex that is not a point encoding.
var offCurveKey = types.UserKey{2}

// sortedKeys returns n distinct identities in roster order.
func sortedKeys(t *testing.T, n int) []types.UserKey {
	t.Helper()
	keys := make([]types.UserKey, n)
	for i := range keys {
		_, keys[i] = testKey(t, byte(i+1))
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && bytes.Compare(keys[j-1][:], keys[j][:]) > 0; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func TestNewRoomMemberList(t *testing.T) {
	keys := sortedKeys(t, 2)
	userA, userB := keys[0], keys[1]

	cases := []struct {
		name    string
		members []types.RoomMember
		wantErr bool
	}{
		{"empty", nil, false},
		{"single", []types.RoomMember{{Permission: types.PostChat, User: userA}}, false},
		{"sorted", []types.RoomMember{{Permission: types.MemberAll, User: userA}, {Permission: types.PostChat, User: userB}}, false},
		{"unsorted", []types.RoomMember{{Permission: types.PostChat, User: userB}, {Permission: types.MemberAll, User: userA}}, true},
		{"duplicate", []types.RoomMember{{Permission: types.PostChat, User: userA}, {Permission: types.MemberAll, User: userA}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			list, err := types.NewRoomMemberList(c.members)
			if c.wantErr {
				if !errors.Is(err, types.ErrInvalidRoster) {
					t.Fatalf("want ErrInvalidRoster, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRoomMemberList: %v", err)
			}
			if list.Len() != len(c.members) {
				t.Fatalf("Len = %d, want %d", list.Len(), len(c.members))
			}
		})
	}
}

func TestNewRoomMemberList_RejectsOffCurveKey(t *testing.T) {
	_, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.PostChat, User: offCurveKey}})
	if !errors.Is(err, types.ErrInvalidIdentity) {
		t.Fatalf("want ErrInvalidIdentity, got %v", err)
	}

	var list types.RoomMemberList
	data := `[{"permission":"0000000000000001","user":"` + offCurveKey.String() + `"}]`
	if err := json.Unmarshal([]byte(data), &list); !errors.Is(err, types.ErrInvalidIdentity) {
		t.Fatalf("Unmarshal: want ErrInvalidIdentity, got %v", err)
	}
}

func TestRoomMemberList_IsImmutable(t *testing.T) {
	keys := sortedKeys(t, 2)
	members := []types.RoomMember{{Permission: types.PostChat, User: keys[0]}}
	list, err := types.NewRoomMemberList(members)
	if err != nil {
		t.Fatalf("NewRoomMemberList: %v", err)
	}
	members[0].Permission = types.MemberAll
	got := list.Members()
	got[0].User = keys[1]

	perm, ok := list.Lookup(keys[0])
	if !ok || perm != types.PostChat {
		t.Fatalf("Lookup = %v, %v; list was mutated through an alias", perm, ok)
	}
}

func TestRoomMemberList_JSONGoesThroughValidator(t *testing.T) {
	keys := sortedKeys(t, 2)
	a := keys[0].String()
	b := keys[1].String()

	var list types.RoomMemberList
	sorted := `[{"permission":"0000000000000001","user":"` + a + `"},{"permission":"ffffffffffffffff","user":"` + b + `"}]`
	if err := json.Unmarshal([]byte(sorted), &list); err != nil {
		t.Fatalf("Unmarshal sorted: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("Len = %d, want 2", list.Len())
	}

	unsorted := `[{"permission":"0000000000000001","user":"` + b + `"},{"permission":"ffffffffffffffff","user":"` + a + `"}]`
	if err := json.Unmarshal([]byte(unsorted), &list); !errors.Is(err, types.ErrInvalidRoster) {
		t.Fatalf("want ErrInvalidRoster, got %v", err)
	}

	extra := `[{"permission":"0000000000000001","user":"` + a + `","admin":true}]`
	if err := json.Unmarshal([]byte(extra), &list); err == nil {
		t.Fatal("unknown member field was accepted")
	}

	out, err := json.Marshal(types.RoomMemberList{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "[]" {
		t.Fatalf("empty list = %s, want []", out)
	}
}
