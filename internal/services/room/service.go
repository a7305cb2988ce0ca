package room

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"blah/internal/clock"
	"blah/internal/domain"
	"blah/internal/domain/types"
	"blah/internal/envelope"
	"blah/internal/metrics"
)

// roomNamespace seeds room ids derived from create_room envelopes.
var roomNamespace = uuid.MustParse("6f0e4a52-8c1b-4d0a-9a57-0c5b1e3f2d71")

// CreatedRoomID returns the id of the room created by the create_room
// envelope with the given digest.
func CreatedRoomID(digest [32]byte) uuid.UUID {
	return uuid.NewSHA1(roomNamespace, digest[:])
}

// Config holds the dependencies of a Service.
type Config struct {
	Store   domain.RoomStore
	Clock   clock.Clock
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Service verifies envelopes and applies them to a RoomStore.
type Service struct {
	store   domain.RoomStore
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns a Service. A nil Clock means the system clock; nil
// Metrics and Logger disable them.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:   cfg.Store,
		clock:   clock.Or(cfg.Clock),
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Accept decodes, verifies and applies one envelope. The decoded
// envelope is returned even when applying it fails.
func (s *Service) Accept(ctx context.Context, data []byte) (envelope.Envelope[types.Payload], error) {
	env, err := envelope.Decode(data)
	if err == nil {
		err = envelope.VerifyAt(env, s.clock.Now())
	}
	s.metrics.ObserveVerify(err)
	if err != nil {
		s.logger.Debug("envelope rejected", "error", err)
		return env, err
	}

	user := env.Signee.User
	typ := env.Signee.Payload.Type()
	err = s.apply(ctx, env)
	s.metrics.ObserveApply(typ, err)
	if err != nil {
		s.logger.Info("envelope not applied", "user", user.String(), "typ", typ, "error", err)
		return env, err
	}
	s.logger.Info("envelope applied", "user", user.String(), "typ", typ)
	return env, nil
}

func (s *Service) apply(ctx context.Context, env envelope.Envelope[types.Payload]) error {
	user := env.Signee.User
	switch p := env.Signee.Payload.(type) {
	case types.CreateRoomPayload:
		return s.createRoom(ctx, env, p)
	case types.AddMemberPayload:
		perm, err := s.memberPermission(ctx, p.Room, user)
		if err != nil {
			return err
		}
		if !perm.Contains(types.AddMember) {
			return fmt.Errorf("%w: %s may not add members to %s", types.ErrPermissionDenied, user, p.Room)
		}
		if !p.Permission.IsSubsetOf(perm) {
			return fmt.Errorf("%w: cannot grant %s holding only %s", types.ErrPermissionDenied, p.Permission, perm)
		}
		item, err := env.Item(p.Room)
		if err != nil {
			return err
		}
		return s.store.AddMember(ctx, p.Room, types.RoomMember{Permission: p.Permission, User: p.User}, item)
	case types.ChatPayload:
		perm, err := s.memberPermission(ctx, p.Room, user)
		if err != nil {
			return err
		}
		if !perm.Contains(types.PostChat) {
			return fmt.Errorf("%w: %s may not post in %s", types.ErrPermissionDenied, user, p.Room)
		}
		return s.archive(ctx, env, p.Room)
	case types.AuthPayload:
		return nil
	default:
		return fmt.Errorf("%w: %T", types.ErrUnknownPayloadTag, p)
	}
}

func (s *Service) createRoom(ctx context.Context, env envelope.Envelope[types.Payload], p types.CreateRoomPayload) error {
	user := env.Signee.User
	perm, err := s.store.ServerPermission(ctx, user)
	if err != nil {
		return err
	}
	if !perm.Contains(types.CreateRoom) {
		return fmt.Errorf("%w: %s may not create rooms", types.ErrPermissionDenied, user)
	}
	if err := p.CheckCreator(user); err != nil {
		return err
	}

	room := types.Room{
		ID:        CreatedRoomID(env.Digest()),
		Title:     p.Title,
		Attrs:     p.Attrs,
		CreatedAt: env.Signee.Timestamp,
	}
	item, err := env.Item(room.ID)
	if err != nil {
		return err
	}
	return s.store.CreateRoom(ctx, room, p.Members, item)
}

// memberPermission returns the signer's permission in rid. Non-members
// are denied; a missing room is ErrNotFound.
func (s *Service) memberPermission(ctx context.Context, rid uuid.UUID, user types.UserKey) (types.MemberPermission, error) {
	perm, ok, err := s.store.Member(ctx, rid, user)
	if err != nil {
		return 0, err
	}
	if ok {
		return perm, nil
	}
	if _, err := s.store.Room(ctx, rid); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: %s is not a member of %s", types.ErrPermissionDenied, user, rid)
}

func (s *Service) archive(ctx context.Context, env envelope.Envelope[types.Payload], rid uuid.UUID) error {
	item, err := env.Item(rid)
	if err != nil {
		return err
	}
	return s.store.AppendItem(ctx, item)
}

// Compile-time assertion that Service implements domain.RoomService.
var _ domain.RoomService = (*Service)(nil)
