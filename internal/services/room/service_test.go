package room_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blah/internal/clock"
	"blah/internal/domain/types"
	"blah/internal/envelope"
	"blah/internal/metrics"
	"blah/internal/services/room"
	"blah/internal/store"
)

var epoch = time.Unix(1_700_000_000, 0)

type harness struct {
	t       *testing.T
	store   *store.RoomStore
	clock   *clock.FakeClock
	metrics *metrics.Metrics
	svc     *room.Service
	nonce   byte
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s, err := store.OpenRoomStore(store.RoomStoreConfig{Path: filepath.Join(t.TempDir(), "blah.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	h := &harness{t: t, store: s, clock: clock.Fake(epoch), metrics: metrics.New(prometheus.NewRegistry())}
	h.svc = room.New(room.Config{Store: s, Clock: h.clock, Metrics: h.metrics})
	return h
}

func key(seed byte) ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
}

// sign returns the wire bytes of payload signed by priv at the fake
// clock's time. Each call uses a new nonce.
func (h *harness) sign(priv ed25519.PrivateKey, payload types.Payload) []byte {
	h.t.Helper()
	h.nonce++
	signer := envelope.Signer{Clock: h.clock, Rand: bytes.NewReader([]byte{h.nonce, 0, 0, 0})}
	env, err := signer.Sign(priv, payload)
	require.NoError(h.t, err)
	data, err := envelope.Encode(env)
	require.NoError(h.t, err)
	return data
}

func (h *harness) accept(data []byte) (envelope.Envelope[types.Payload], error) {
	return h.svc.Accept(context.Background(), data)
}

// createRoom grants owner CreateRoom and has them create a room.
func (h *harness) createRoom(owner ed25519.PrivateKey) uuid.UUID {
	h.t.Helper()
	user := types.UserKeyOf(owner)
	require.NoError(h.t, h.store.SetServerPermission(context.Background(), user, types.CreateRoom))

	members, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.MemberAll, User: user}})
	require.NoError(h.t, err)
	payload, err := types.NewCreateRoomPayload(user, types.PublicReadable, members, "lobby")
	require.NoError(h.t, err)

	env, err := h.accept(h.sign(owner, payload))
	require.NoError(h.t, err)
	return room.CreatedRoomID(env.Digest())
}

func TestCreateRoom(t *testing.T) {
	h := newHarness(t)
	alice := key(1)
	rid := h.createRoom(alice)

	got, err := h.store.Room(context.Background(), rid)
	require.NoError(t, err)
	assert.Equal(t, "lobby", got.Title)
	assert.Equal(t, types.PublicReadable, got.Attrs)
	assert.Equal(t, uint64(epoch.Unix()), got.CreatedAt)

	perm, ok, err := h.store.Member(context.Background(), rid, types.UserKeyOf(alice))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.MemberAll, perm)

	items, err := h.store.Items(context.Background(), rid, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	archived, err := envelope.FromItem(items[0])
	require.NoError(t, err)
	require.NoError(t, envelope.VerifyAt(archived, epoch))
}

func TestCreateRoom_Denied(t *testing.T) {
	h := newHarness(t)
	bob := key(2)
	user := types.UserKeyOf(bob)
	members, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.MemberAll, User: user}})
	require.NoError(t, err)
	payload, err := types.NewCreateRoomPayload(user, 0, members, "nope")
	require.NoError(t, err)

	_, err = h.accept(h.sign(bob, payload))
	require.ErrorIs(t, err, types.ErrPermissionDenied)

	// Granted, but the roster does not make bob an admin.
	require.NoError(t, h.store.SetServerPermission(context.Background(), user, types.ServerAll))
	weak, err := types.NewRoomMemberList([]types.RoomMember{{Permission: types.PostChat, User: user}})
	require.NoError(t, err)
	_, err = h.accept(h.sign(bob, types.CreateRoomPayload{Members: weak, Title: "weak"}))
	require.ErrorIs(t, err, types.ErrCreatorNotAdmin)

	rooms, err := h.store.Rooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestChatAndMembership(t *testing.T) {
	h := newHarness(t)
	alice, bob, carol := key(1), key(2), key(3)
	rid := h.createRoom(alice)

	_, err := h.accept(h.sign(alice, types.ChatPayload{Room: rid, Text: "hi"}))
	require.NoError(t, err)

	_, err = h.accept(h.sign(bob, types.ChatPayload{Room: rid, Text: "let me in"}))
	require.ErrorIs(t, err, types.ErrPermissionDenied)

	_, err = h.accept(h.sign(alice, types.AddMemberPayload{Permission: types.PostChat, Room: rid, User: types.UserKeyOf(bob)}))
	require.NoError(t, err)

	_, err = h.accept(h.sign(bob, types.ChatPayload{Room: rid, Text: "thanks"}))
	require.NoError(t, err)

	// Bob lacks AddMember.
	_, err = h.accept(h.sign(bob, types.AddMemberPayload{Permission: types.PostChat, Room: rid, User: types.UserKeyOf(carol)}))
	require.ErrorIs(t, err, types.ErrPermissionDenied)

	items, err := h.store.Items(context.Background(), rid, 0)
	require.NoError(t, err)
	require.Len(t, items, 4)
	last, err := envelope.FromItem(items[3])
	require.NoError(t, err)
	assert.Equal(t, types.ChatPayload{Room: rid, Text: "thanks"}, last.Signee.Payload)
}

func TestAddMember_CannotEscalate(t *testing.T) {
	h := newHarness(t)
	alice, bob, carol := key(1), key(2), key(3)
	rid := h.createRoom(alice)

	grant := types.AddMember | types.PostChat
	_, err := h.accept(h.sign(alice, types.AddMemberPayload{Permission: grant, Room: rid, User: types.UserKeyOf(bob)}))
	require.NoError(t, err)

	_, err = h.accept(h.sign(bob, types.AddMemberPayload{Permission: types.MemberAll, Room: rid, User: types.UserKeyOf(carol)}))
	require.ErrorIs(t, err, types.ErrPermissionDenied)

	_, err = h.accept(h.sign(bob, types.AddMemberPayload{Permission: types.PostChat, Room: rid, User: types.UserKeyOf(carol)}))
	require.NoError(t, err)
}

func TestChat_UnknownRoom(t *testing.T) {
	h := newHarness(t)
	_, err := h.accept(h.sign(key(1), types.ChatPayload{Room: uuid.New(), Text: "?"}))
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestReplayAndFreshness(t *testing.T) {
	h := newHarness(t)
	alice := key(1)
	rid := h.createRoom(alice)

	chat := h.sign(alice, types.ChatPayload{Room: rid, Text: "once"})
	_, err := h.accept(chat)
	require.NoError(t, err)

	_, err = h.accept(chat)
	require.ErrorIs(t, err, types.ErrDuplicateEnvelope)

	h.clock.Advance(2 * time.Minute)
	_, err = h.accept(chat)
	require.ErrorIs(t, err, types.ErrTimestampOutOfRange)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Verified.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Applied.WithLabelValues("chat", "duplicate")))
}

func TestAuth(t *testing.T) {
	h := newHarness(t)
	env, err := h.accept(h.sign(key(4), types.AuthPayload{}))
	require.NoError(t, err)
	assert.Equal(t, types.UserKeyOf(key(4)), env.Signee.User)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Applied.WithLabelValues("auth", "ok")))
}

func TestAccept_Tampered(t *testing.T) {
	h := newHarness(t)
	data := h.sign(key(1), types.AuthPayload{})
	data = bytes.Replace(data, []byte(`"nonce":1`), []byte(`"nonce":2`), 1)

	_, err := h.accept(data)
	require.ErrorIs(t, err, types.ErrInvalidSignature)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Verified.WithLabelValues("bad_signature")))
}

func TestAccept_NonCanonicalSpelling(t *testing.T) {
	h := newHarness(t)
	data := h.sign(key(1), types.ChatPayload{Room: uuid.New(), Text: "hi"})
	data = bytes.Replace(data, []byte(`"room"`), []byte(`"Room"`), 1)

	_, err := h.accept(data)
	require.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestAddMember_OffCurveUserKeepsRosterReadable(t *testing.T) {
	h := newHarness(t)
	alice := key(1)
	rid := h.createRoom(alice)

	offCurve := types.UserKey{2}
	_, err := h.accept(h.sign(alice, types.AddMemberPayload{Permission: types.PostChat, Room: rid, User: offCurve}))
	require.ErrorIs(t, err, types.ErrInvalidIdentity)

	members, err := h.store.Members(context.Background(), rid)
	require.NoError(t, err)
	assert.Equal(t, []types.RoomMember{{Permission: types.MemberAll, User: types.UserKeyOf(alice)}}, members.Members())

	items, err := h.store.Items(context.Background(), rid, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
