package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"blah/internal/clock"
	"blah/internal/domain"
	"blah/internal/metrics"
	identitysvc "blah/internal/services/identity"
	roomsvc "blah/internal/services/room"
	"blah/internal/store"
)

// Wire bundles the stores and services used by the CLI. The room
// database is opened on first use by OpenRooms.
type Wire struct {
	Config   Config
	Logger   *slog.Logger
	Clock    clock.Clock
	Keys     *store.KeyFileStore
	Identity domain.IdentityService
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	RoomStore *store.RoomStore
	Rooms     domain.RoomService
}

// NewWire constructs the dependency graph from cfg. A nil logger
// discards log output.
func NewWire(cfg Config, logger *slog.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("creating home %s: %w", cfg.Home, err)
	}

	var keyOpts []store.KeyFileOption
	if cfg.ScryptCost > 0 {
		keyOpts = append(keyOpts, store.WithScryptCost(cfg.ScryptCost))
	}
	keys := store.NewKeyFileStore(cfg.Home, keyOpts...)

	registry := prometheus.NewRegistry()
	return &Wire{
		Config:   cfg,
		Logger:   logger,
		Clock:    clock.Real(),
		Keys:     keys,
		Identity: identitysvc.New(keys),
		Registry: registry,
		Metrics:  metrics.New(registry),
	}, nil
}

// OpenRooms opens the room database and builds the room service. It is
// a no-op once the database is open.
func (w *Wire) OpenRooms() error {
	if w.RoomStore != nil {
		return nil
	}
	rooms, err := store.OpenRoomStore(store.RoomStoreConfig{
		Path:   w.Config.DatabasePath(),
		Logger: w.Logger,
	})
	if err != nil {
		return err
	}
	w.RoomStore = rooms
	w.Rooms = roomsvc.New(roomsvc.Config{
		Store:   rooms,
		Clock:   w.Clock,
		Metrics: w.Metrics,
		Logger:  w.Logger,
	})
	return nil
}

// Close releases the room database if it was opened.
func (w *Wire) Close() error {
	if w.RoomStore == nil {
		return nil
	}
	err := w.RoomStore.Close()
	w.RoomStore, w.Rooms = nil, nil
	return err
}
