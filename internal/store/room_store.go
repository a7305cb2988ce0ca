package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"blah/internal/domain"
	"blah/internal/domain/types"
)

const roomSchema = `
	CREATE TABLE IF NOT EXISTS users (
		userkey    BLOB PRIMARY KEY NOT NULL,
		permission INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rooms (
		rid        TEXT PRIMARY KEY NOT NULL,
		title      TEXT NOT NULL,
		attrs      INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS room_members (
		rid        TEXT NOT NULL REFERENCES rooms(rid),
		userkey    BLOB NOT NULL,
		permission INTEGER NOT NULL,
		PRIMARY KEY (rid, userkey)
	);

	CREATE TABLE IF NOT EXISTS items (
		digest    BLOB PRIMARY KEY NOT NULL,
		rid       TEXT NOT NULL REFERENCES rooms(rid),
		userkey   BLOB NOT NULL,
		timestamp INTEGER NOT NULL,
		envelope  BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_rid ON items(rid);
`

// RoomStoreConfig holds the parameters for opening a RoomStore.
type RoomStoreConfig struct {
	// Path is the SQLite database file. The parent directory must exist.
	Path string

	// PoolSize defaults to 4 if zero or negative.
	PoolSize int

	// Logger receives operational messages. Nil discards them.
	Logger *slog.Logger
}

// RoomStore keeps server grants, rooms, memberships and accepted
// envelopes in SQLite. Multi-row writes run in IMMEDIATE transactions.
type RoomStore struct {
	pool   *Pool
	logger *slog.Logger
}

// OpenRoomStore opens the database at cfg.Path and applies the schema.
func OpenRoomStore(cfg RoomStoreConfig) (*RoomStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := OpenPool(PoolConfig{
		Path:     cfg.Path,
		PoolSize: poolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, roomSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("room store: %w", err)
	}
	return &RoomStore{pool: pool, logger: logger}, nil
}

// Close closes the underlying pool.
func (s *RoomStore) Close() error { return s.pool.Close() }

// SetServerPermission replaces the server-wide grant of user.
func (s *RoomStore) SetServerPermission(ctx context.Context, user types.UserKey, perm types.ServerPermission) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO users (userkey, permission) VALUES (?, ?)
		ON CONFLICT (userkey) DO UPDATE SET permission = excluded.permission`,
		&sqlitex.ExecOptions{Args: []any{UserKeyToColumn(user), PermissionToColumn(perm)}})
	if err != nil {
		return fmt.Errorf("room store: set server permission: %w", err)
	}
	s.logger.Info("server permission set", "user", user.String(), "permission", perm.String())
	return nil
}

// ServerPermission returns the grant of user, or no permissions if the
// user has never been granted any.
func (s *RoomStore) ServerPermission(ctx context.Context, user types.UserKey) (types.ServerPermission, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	var perm types.ServerPermission
	err = sqlitex.Execute(conn, `SELECT permission FROM users WHERE userkey = ?`, &sqlitex.ExecOptions{
		Args: []any{UserKeyToColumn(user)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			perm = ColumnPermission[types.ServerPermission](stmt, 0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("room store: server permission: %w", err)
	}
	return perm, nil
}

// CreateRoom inserts room, its initial members and the archived
// create_room envelope item in one transaction. It fails with
// ErrRoomExists if the id is taken.
func (s *RoomStore) CreateRoom(ctx context.Context, room types.Room, members types.RoomMemberList, item types.Item) (err error) {
	if item.Room != room.ID {
		return fmt.Errorf("room store: item belongs to %s, not %s", item.Room, room.ID)
	}
	archived, err := encodeArchive(item)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("room store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, `
		INSERT INTO rooms (rid, title, attrs, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (rid) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{
			room.ID.String(), room.Title, PermissionToColumn(room.Attrs), int64(room.CreatedAt),
		}})
	if err != nil {
		return fmt.Errorf("room store: insert room: %w", err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("room store: %s: %w", room.ID, types.ErrRoomExists)
	}

	for _, m := range members.Members() {
		if err = insertMember(conn, room.ID, m); err != nil {
			return err
		}
	}
	if err = insertItem(conn, item, archived); err != nil {
		return err
	}
	s.logger.Info("room created", "rid", room.ID.String(), "members", members.Len())
	return nil
}

func insertMember(conn *sqlite.Conn, rid uuid.UUID, m types.RoomMember) error {
	// Members reads every key back through ColumnUserKey.
	if err := m.User.Validate(); err != nil {
		return fmt.Errorf("room store: insert member: %w", err)
	}
	stmt := conn.Prep(`
		INSERT INTO room_members (rid, userkey, permission) VALUES (?, ?, ?)
		ON CONFLICT (rid, userkey) DO NOTHING`)
	stmt.BindText(1, rid.String())
	BindUserKey(stmt, 2, m.User)
	BindPermission(stmt, 3, m.Permission)
	if _, err := stmt.Step(); err != nil {
		_ = stmt.Reset()
		return fmt.Errorf("room store: insert member: %w", err)
	}
	if err := stmt.Reset(); err != nil {
		return fmt.Errorf("room store: insert member: %w", err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("room store: %s in %s: %w", m.User, rid, types.ErrAlreadyMember)
	}
	return nil
}

// Room returns the room with id rid, or ErrNotFound.
func (s *RoomStore) Room(ctx context.Context, rid uuid.UUID) (types.Room, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return types.Room{}, fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	rooms, err := queryRooms(conn, `WHERE rid = ?`, rid.String())
	if err != nil {
		return types.Room{}, err
	}
	if len(rooms) == 0 {
		return types.Room{}, fmt.Errorf("room store: room %s: %w", rid, types.ErrNotFound)
	}
	return rooms[0], nil
}

// Rooms returns every room, oldest first.
func (s *RoomStore) Rooms(ctx context.Context) ([]types.Room, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	return queryRooms(conn, `ORDER BY created_at, rid`)
}

func queryRooms(conn *sqlite.Conn, clause string, args ...any) ([]types.Room, error) {
	var rooms []types.Room
	err := sqlitex.Execute(conn, `SELECT rid, title, attrs, created_at FROM rooms `+clause, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id, err := uuid.Parse(stmt.ColumnText(0))
			if err != nil {
				return fmt.Errorf("stored room id: %w", err)
			}
			rooms = append(rooms, types.Room{
				ID:        id,
				Title:     stmt.ColumnText(1),
				Attrs:     ColumnPermission[types.RoomAttrs](stmt, 2),
				CreatedAt: uint64(stmt.ColumnInt64(3)),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("room store: query rooms: %w", err)
	}
	return rooms, nil
}

func roomExists(conn *sqlite.Conn, rid uuid.UUID) (bool, error) {
	var found bool
	err := sqlitex.Execute(conn, `SELECT 1 FROM rooms WHERE rid = ?`, &sqlitex.ExecOptions{
		Args: []any{rid.String()},
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("room store: lookup room: %w", err)
	}
	return found, nil
}

// AddMember adds member to room rid and archives the add_member item in
// the same transaction. It fails with ErrNotFound for an unknown room,
// ErrAlreadyMember if the user is already present and
// ErrDuplicateEnvelope if the item is already archived; nothing is
// written in those cases.
func (s *RoomStore) AddMember(ctx context.Context, rid uuid.UUID, member types.RoomMember, item types.Item) (err error) {
	if item.Room != rid {
		return fmt.Errorf("room store: item belongs to %s, not %s", item.Room, rid)
	}
	archived, err := encodeArchive(item)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("room store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	ok, err := roomExists(conn, rid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("room store: room %s: %w", rid, types.ErrNotFound)
	}
	if err = insertMember(conn, rid, member); err != nil {
		return err
	}
	if err = insertItem(conn, item, archived); err != nil {
		return err
	}
	s.logger.Info("member added", "rid", rid.String(), "user", member.User.String())
	return nil
}

// Member returns the permission of user in room rid. The boolean is
// false if the user is not a member or the room does not exist.
func (s *RoomStore) Member(ctx context.Context, rid uuid.UUID, user types.UserKey) (types.MemberPermission, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	stmt := conn.Prep(`SELECT permission FROM room_members WHERE rid = ? AND userkey = ?`)
	defer func() { _ = stmt.Reset() }()
	stmt.BindText(1, rid.String())
	BindUserKey(stmt, 2, user)

	hasRow, err := stmt.Step()
	if err != nil {
		return 0, false, fmt.Errorf("room store: lookup member: %w", err)
	}
	if !hasRow {
		return 0, false, nil
	}
	return ColumnPermission[types.MemberPermission](stmt, 0), true, nil
}

// Members returns the roster of room rid, or ErrNotFound.
func (s *RoomStore) Members(ctx context.Context, rid uuid.UUID) (types.RoomMemberList, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return types.RoomMemberList{}, fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	ok, err := roomExists(conn, rid)
	if err != nil {
		return types.RoomMemberList{}, err
	}
	if !ok {
		return types.RoomMemberList{}, fmt.Errorf("room store: room %s: %w", rid, types.ErrNotFound)
	}

	// BLOBs compare with memcmp, which is the roster order.
	var members []types.RoomMember
	err = sqlitex.Execute(conn, `
		SELECT userkey, permission FROM room_members WHERE rid = ? ORDER BY userkey`,
		&sqlitex.ExecOptions{
			Args: []any{rid.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user, err := ColumnUserKey(stmt, 0)
				if err != nil {
					return err
				}
				members = append(members, types.RoomMember{
					Permission: ColumnPermission[types.MemberPermission](stmt, 1),
					User:       user,
				})
				return nil
			},
		})
	if err != nil {
		return types.RoomMemberList{}, fmt.Errorf("room store: members: %w", err)
	}
	return types.NewRoomMemberList(members)
}

// AppendItem archives an accepted envelope. It fails with
// ErrDuplicateEnvelope if an envelope with the same digest is stored
// and ErrNotFound if the room does not exist.
func (s *RoomStore) AppendItem(ctx context.Context, item types.Item) (err error) {
	archived, err := encodeArchive(item)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("room store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	ok, err := roomExists(conn, item.Room)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("room store: room %s: %w", item.Room, types.ErrNotFound)
	}

	return insertItem(conn, item, archived)
}

func insertItem(conn *sqlite.Conn, item types.Item, archived []byte) error {
	err := sqlitex.Execute(conn, `
		INSERT INTO items (digest, rid, userkey, timestamp, envelope) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (digest) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{
			item.Digest[:], item.Room.String(), UserKeyToColumn(item.User), int64(item.Timestamp), archived,
		}})
	if err != nil {
		return fmt.Errorf("room store: insert item: %w", err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("room store: %x: %w", item.Digest[:8], types.ErrDuplicateEnvelope)
	}
	return nil
}

// Items returns the most recent limit items of room rid in the order
// they were appended. A limit of zero or less returns every item.
func (s *RoomStore) Items(ctx context.Context, rid uuid.UUID, limit int) ([]types.Item, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("room store: %w", err)
	}
	defer s.pool.Put(conn)

	if limit <= 0 {
		limit = -1
	}
	var items []types.Item
	err = sqlitex.Execute(conn, `
		SELECT digest, userkey, timestamp, envelope FROM items
		WHERE rid = ? ORDER BY rowid DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{rid.String(), limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				item := types.Item{Room: rid, Timestamp: uint64(stmt.ColumnInt64(2))}
				if n := stmt.ColumnLen(0); n != len(item.Digest) {
					return fmt.Errorf("stored digest has %d bytes", n)
				}
				stmt.ColumnBytes(0, item.Digest[:])
				user, err := ColumnUserKey(stmt, 1)
				if err != nil {
					return err
				}
				item.User = user
				archived := make([]byte, stmt.ColumnLen(3))
				stmt.ColumnBytes(3, archived)
				if err := decodeArchive(archived, &item); err != nil {
					return err
				}
				items = append(items, item)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("room store: items: %w", err)
	}
	slices.Reverse(items)
	return items, nil
}

// Compile-time assertion that RoomStore implements domain.RoomStore.
var _ domain.RoomStore = (*RoomStore)(nil)
