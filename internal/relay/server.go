package relay

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blah/internal/domain"
	"blah/internal/domain/types"
	"blah/internal/envelope"
	roomsvc "blah/internal/services/room"
)

// maxEnvelopeBytes bounds POST /envelopes bodies.
const maxEnvelopeBytes = 1 << 20

// Receipt describes an applied envelope.
type Receipt struct {
	Typ    types.PayloadType `json:"typ"`
	User   types.UserKey     `json:"user"`
	Digest string            `json:"digest"`
	Room   *uuid.UUID        `json:"room,omitempty"`
}

// ServerConfig holds the dependencies of the HTTP handler.
type ServerConfig struct {
	Service  domain.RoomService
	Store    domain.RoomStore
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type server struct {
	service domain.RoomService
	store   domain.RoomStore
	logger  *slog.Logger
}

// NewHandler returns the relay's HTTP handler. A nil Gatherer disables
// /metrics.
func NewHandler(cfg ServerConfig) http.Handler {
	s := &server{service: cfg.Service, store: cfg.Store, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /envelopes", s.postEnvelope)
	mux.HandleFunc("GET /rooms", s.listRooms)
	mux.HandleFunc("GET /rooms/{rid}/members", s.listMembers)
	mux.HandleFunc("GET /rooms/{rid}/items", s.listItems)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return s.accessLog(mux)
}

func (s *server) postEnvelope(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	env, err := s.service.Accept(r.Context(), data)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	digest := env.Digest()
	receipt := Receipt{
		Typ:    env.Signee.Payload.Type(),
		User:   env.Signee.User,
		Digest: hex.EncodeToString(digest[:]),
	}
	switch p := env.Signee.Payload.(type) {
	case types.CreateRoomPayload:
		rid := roomsvc.CreatedRoomID(digest)
		receipt.Room = &rid
	case types.ChatPayload:
		receipt.Room = &p.Room
	case types.AddMemberPayload:
		receipt.Room = &p.Room
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *server) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.Rooms(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if rooms == nil {
		rooms = []types.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *server) listMembers(w http.ResponseWriter, r *http.Request) {
	rid, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	members, err := s.store.Members(r.Context(), rid)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *server) listItems(w http.ResponseWriter, r *http.Request) {
	rid, err := uuid.Parse(r.PathValue("rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
	}
	if _, err := s.store.Room(r.Context(), rid); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	items, err := s.store.Items(r.Context(), rid, limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		env, err := envelope.FromItem(item)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		data, err := envelope.Encode(env)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		out = append(out, data)
	}
	writeJSON(w, http.StatusOK, out)
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrTimestampOutOfRange),
		errors.Is(err, types.ErrInvalidSignature),
		errors.Is(err, types.ErrInvalidIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrPermissionDenied), errors.Is(err, types.ErrCreatorNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrDuplicateEnvelope),
		errors.Is(err, types.ErrRoomExists),
		errors.Is(err, types.ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, types.ErrUnknownPayloadTag),
		errors.Is(err, types.ErrInvalidRoster),
		errors.Is(err, types.ErrInvalidPermission),
		errors.Is(err, types.ErrSerialization),
		errors.Is(err, envelope.ErrMalformed):
		return http.StatusBadRequest
	}
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntax) || errors.As(err, &typeErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Archived envelopes are embedded verbatim and must stay canonical.
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusRecorder captures the status and size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}
