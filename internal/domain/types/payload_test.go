package types_test

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"blah/internal/canonical"
	"blah/internal/domain/types"
)

var testRoom = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func testKey(t *testing.T, seed byte) (ed25519.PrivateKey, types.UserKey) {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	priv := ed25519.NewKeyFromSeed(s)
	return priv, types.UserKeyOf(priv)
}

func TestDecodePayload_DispatchesOnTag(t *testing.T) {
	_, user := testKey(t, 1)
	members, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.MemberAll, User: user}})
	if err != nil {
		t.Fatalf("NewRoomMemberList: %v", err)
	}

	payloads := []types.Payload{
		types.ChatPayload{Room: testRoom, Text: "hi"},
		types.CreateRoomPayload{Attrs: types.PublicReadable, Members: members, Title: "lobby"},
		types.AuthPayload{},
		types.AddMemberPayload{Permission: types.PostChat, Room: testRoom, User: user},
	}
	for _, p := range payloads {
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("Marshal %s: %v", p.Type(), err)
		}
		got, err := types.DecodePayload(data)
		if err != nil {
			t.Fatalf("DecodePayload %s: %v", p.Type(), err)
		}
		if got.Type() != p.Type() {
			t.Fatalf("decoded %s as %s", p.Type(), got.Type())
		}
		again, err := json.Marshal(got)
		if err != nil {
			t.Fatalf("Marshal again: %v", err)
		}
		if string(again) != string(data) {
			t.Fatalf("re-encoding differs:\n got %s\nwant %s", again, data)
		}
	}
}

func TestDecodePayload_UnknownTag(t *testing.T) {
	for _, data := range []string{`{"typ":"delete_room","room":"x"}`, `{"room":"x"}`} {
		_, err := types.DecodePayload([]byte(data))
		if !errors.Is(err, types.ErrUnknownPayloadTag) {
			t.Fatalf("DecodePayload(%s): want ErrUnknownPayloadTag, got %v", data, err)
		}
	}
}

func TestDecodePayload_RejectsExtraFieldsForEveryVariant(t *testing.T) {
	_, user := testKey(t, 1)
	u := user.String()
	inputs := []string{
		`{"room":"11111111-1111-1111-1111-111111111111","text":"hi","typ":"chat","x":1}`,
		`{"attrs":"0000000000000000","members":[],"title":"t","typ":"create_room","x":1}`,
		`{"typ":"auth","x":1}`,
		`{"permission":"0000000000000001","room":"11111111-1111-1111-1111-111111111111","typ":"add_member","user":"` + u + `","x":1}`,
	}
	for _, in := range inputs {
		if _, err := types.DecodePayload([]byte(in)); err == nil {
			t.Fatalf("DecodePayload accepted unknown field: %s", in)
		}
	}
}

func TestDecodePayload_RejectsOffCurveUsers(t *testing.T) {
	bad := offCurveKey.String()
	inputs := []string{
		`{"permission":"0000000000000001","room":"11111111-1111-1111-1111-111111111111","typ":"add_member","user":"` + bad + `"}`,
		`{"attrs":"0000000000000000","members":[{"permission":"ffffffffffffffff","user":"` + bad + `"}],"title":"t","typ":"create_room"}`,
	}
	for _, in := range inputs {
		if _, err := types.DecodePayload([]byte(in)); !errors.Is(err, types.ErrInvalidIdentity) {
			t.Fatalf("DecodePayload(%s): want ErrInvalidIdentity, got %v", in, err)
		}
	}
}

func TestChatPayload_WrongTagForVariant(t *testing.T) {
	var p types.ChatPayload
	err := json.Unmarshal([]byte(`{"typ":"auth"}`), &p)
	if err == nil {
		t.Fatal("chat payload accepted an auth body")
	}
}

func TestChatPayload_CanonicalBytes(t *testing.T) {
	out, err := canonical.Marshal(types.ChatPayload{Text: "hi", Room: testRoom})
	if err != nil {
		t.Fatalf("canonical.Marshal: %v", err)
	}
	want := `{"room":"11111111-1111-1111-1111-111111111111","text":"hi","typ":"chat"}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestNewCreateRoomPayload_RequiresCreatorWithAll(t *testing.T) {
	_, creator := testKey(t, 1)
	_, other := testKey(t, 2)

	sortedPair := func(a, b types.RoomMember) []types.RoomMember {
		if string(a.User[:]) < string(b.User[:]) {
			return []types.RoomMember{a, b}
		}
		return []types.RoomMember{b, a}
	}

	ok, err := types.NewRoomMemberList(sortedPair(
		types.RoomMember{Permission: types.MemberAll, User: creator},
		types.RoomMember{Permission: types.PostChat, User: other},
	))
	if err != nil {
		t.Fatalf("NewRoomMemberList: %v", err)
	}
	if _, err := types.NewCreateRoomPayload(creator, 0, ok, "room"); err != nil {
		t.Fatalf("NewCreateRoomPayload: %v", err)
	}

	weak, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.PostChat, User: creator}})
	if err != nil {
		t.Fatalf("NewRoomMemberList: %v", err)
	}
	if _, err := types.NewCreateRoomPayload(creator, 0, weak, "room"); !errors.Is(err, types.ErrCreatorNotAdmin) {
		t.Fatalf("want ErrCreatorNotAdmin for weak creator, got %v", err)
	}

	absent, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.MemberAll, User: other}})
	if err != nil {
		t.Fatalf("NewRoomMemberList: %v", err)
	}
	if _, err := types.NewCreateRoomPayload(creator, 0, absent, "room"); !errors.Is(err, types.ErrCreatorNotAdmin) {
		t.Fatalf("want ErrCreatorNotAdmin for absent creator, got %v", err)
	}
}
