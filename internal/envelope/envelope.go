package envelope

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"blah/internal/canonical"
	"blah/internal/clock"
	"blah/internal/crypto"
	"blah/internal/domain/types"
)

// TimestampTolerance is the largest allowed distance between an
// envelope's timestamp and the verifier's clock, exclusive.
const TimestampTolerance = 90 * time.Second

// ErrMalformed is returned when envelope JSON is missing a field or has
// one it should not.
var ErrMalformed = errors.New("malformed envelope")

// Signee is the signed part of an envelope.
type Signee[P any] struct {
	Nonce     uint32        `json:"nonce"`
	Payload   P             `json:"payload"`
	Timestamp uint64        `json:"timestamp"`
	User      types.UserKey `json:"user"`
}

// Envelope is a payload together with the signer's identity, a
// timestamp, a nonce and the signature over all of them.
type Envelope[P any] struct {
	Sig    types.Signature `json:"sig"`
	Signee Signee[P]       `json:"signee"`
}

// Signer produces envelopes using an injected clock and random source.
// The zero value uses the system clock and crypto/rand.
type Signer struct {
	Clock clock.Clock
	Rand  io.Reader
}

// Sign wraps payload in a fresh envelope signed by key.
func (s Signer) Sign(key ed25519.PrivateKey, payload types.Payload) (Envelope[types.Payload], error) {
	return SignAt(key, s.Rand, payload, clock.Or(s.Clock).Now())
}

// Sign wraps payload in an envelope signed by key with the current time
// and a nonce read from random. A nil random means crypto/rand.
func Sign[P any](key ed25519.PrivateKey, random io.Reader, payload P) (Envelope[P], error) {
	return SignAt(key, random, payload, time.Now())
}

// SignAt is Sign with an explicit signing time.
func SignAt[P any](key ed25519.PrivateKey, random io.Reader, payload P, now time.Time) (Envelope[P], error) {
	var env Envelope[P]
	if len(key) != ed25519.PrivateKeySize {
		return env, fmt.Errorf("%w: private key has %d bytes", types.ErrSigning, len(key))
	}
	if any(payload) == nil {
		return env, fmt.Errorf("%w: nil payload", types.ErrSerialization)
	}
	unix := now.Unix()
	if unix < 0 {
		return env, fmt.Errorf("%w: clock is before the Unix epoch", types.ErrSigning)
	}
	if random == nil {
		random = rand.Reader
	}
	var nonce [4]byte
	if _, err := io.ReadFull(random, nonce[:]); err != nil {
		return env, fmt.Errorf("%w: reading nonce: %v", types.ErrSigning, err)
	}

	env.Signee = Signee[P]{
		Nonce:     binary.LittleEndian.Uint32(nonce[:]),
		Payload:   payload,
		Timestamp: uint64(unix),
		User:      types.UserKeyOf(key),
	}
	msg, err := env.Signee.CanonicalBytes()
	if err != nil {
		return Envelope[P]{}, err
	}
	env.Sig, err = crypto.Sign(key, msg)
	if err != nil {
		return Envelope[P]{}, err
	}
	return env, nil
}

// CanonicalBytes returns the bytes a signature over s covers.
func (s Signee[P]) CanonicalBytes() ([]byte, error) {
	if any(s.Payload) == nil {
		return nil, fmt.Errorf("%w: nil payload", types.ErrSerialization)
	}
	return canonical.Marshal(s)
}

// Verify checks env against the system clock.
func Verify[P any](env Envelope[P]) error {
	return VerifyAt(env, time.Now())
}

// VerifyAt checks that env's timestamp is within TimestampTolerance of
// now and that its signature is valid for the signee's user.
func VerifyAt[P any](env Envelope[P], now time.Time) error {
	if !withinTolerance(env.Signee.Timestamp, now) {
		return fmt.Errorf("%w: timestamp %d, now %d", types.ErrTimestampOutOfRange, env.Signee.Timestamp, now.Unix())
	}
	msg, err := env.Signee.CanonicalBytes()
	if err != nil {
		return err
	}
	return crypto.VerifyStrict(env.Signee.User, msg, env.Sig)
}

func withinTolerance(timestamp uint64, now time.Time) bool {
	var current uint64
	if unix := now.Unix(); unix > 0 {
		current = uint64(unix)
	}
	diff := timestamp - current
	if timestamp < current {
		diff = current - timestamp
	}
	return diff < uint64(TimestampTolerance/time.Second)
}

// Digest returns the BLAKE3 hash of the signature. Two envelopes share
// a digest only if they carry the same signature, which makes it a
// deduplication key for replays.
func (e Envelope[P]) Digest() [32]byte {
	return blake3.Sum256(e.Sig[:])
}

// Encode returns the canonical JSON form of env.
func Encode[P any](env Envelope[P]) ([]byte, error) {
	if any(env.Signee.Payload) == nil {
		return nil, fmt.Errorf("%w: nil payload", types.ErrSerialization)
	}
	return canonical.Marshal(env)
}

// Decode parses an envelope whose payload may be any variant. The input
// must be the canonical encoding produced by Encode; any other spelling
// of the same value fails with ErrInvalidSignature.
func Decode(data []byte) (Envelope[types.Payload], error) {
	return DecodeAs[types.Payload](data)
}

// DecodeAs parses an envelope whose payload must decode as P.
func DecodeAs[P any](data []byte) (Envelope[P], error) {
	var env Envelope[P]
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope[P]{}, err
	}
	return env, nil
}

type envelopeWire struct {
	Sig    *types.Signature `json:"sig"`
	Signee json.RawMessage  `json:"signee"`
}

func (e *Envelope[P]) UnmarshalJSON(data []byte) error {
	var w envelopeWire
	if err := canonical.DecodeStrict(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if w.Sig == nil || w.Signee == nil {
		return fmt.Errorf("%w: want sig and signee", ErrMalformed)
	}
	var signee Signee[P]
	if err := signee.UnmarshalJSON(w.Signee); err != nil {
		return err
	}
	env := Envelope[P]{Sig: *w.Sig, Signee: signee}

	// Decoding tolerates key case, hex case and uuid layouts that the
	// signature never covered, so only the canonical text is accepted.
	canon, err := canonical.Marshal(env)
	if err != nil {
		return err
	}
	if !bytes.Equal(canon, data) {
		return fmt.Errorf("%w: envelope is not in canonical form", types.ErrInvalidSignature)
	}
	*e = env
	return nil
}

type signeeWire struct {
	Nonce     *uint32         `json:"nonce"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp *uint64         `json:"timestamp"`
	User      *types.UserKey  `json:"user"`
}

func (s *Signee[P]) UnmarshalJSON(data []byte) error {
	var w signeeWire
	if err := canonical.DecodeStrict(data, &w); err != nil {
		return fmt.Errorf("%w: signee: %w", ErrMalformed, err)
	}
	if w.Nonce == nil || w.Payload == nil || w.Timestamp == nil || w.User == nil {
		return fmt.Errorf("%w: signee wants nonce, payload, timestamp and user", ErrMalformed)
	}

	var payload P
	if union, ok := any(&payload).(*types.Payload); ok {
		p, err := types.DecodePayload(w.Payload)
		if err != nil {
			return err
		}
		*union = p
	} else if err := canonical.DecodeStrict(w.Payload, &payload); err != nil {
		return err
	}

	*s = Signee[P]{Nonce: *w.Nonce, Payload: payload, Timestamp: *w.Timestamp, User: *w.User}
	return nil
}

// Item returns env as an archive record for room rid.
func (e Envelope[P]) Item(rid uuid.UUID) (types.Item, error) {
	signee, err := e.Signee.CanonicalBytes()
	if err != nil {
		return types.Item{}, err
	}
	return types.Item{
		Digest:    e.Digest(),
		Room:      rid,
		User:      e.Signee.User,
		Timestamp: e.Signee.Timestamp,
		Sig:       e.Sig,
		Signee:    signee,
	}, nil
}

// FromItem rebuilds the envelope an archived item was made from.
func FromItem(item types.Item) (Envelope[types.Payload], error) {
	data, err := canonical.Marshal(struct {
		Sig    types.Signature `json:"sig"`
		Signee json.RawMessage `json:"signee"`
	}{item.Sig, item.Signee})
	if err != nil {
		return Envelope[types.Payload]{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Decode(data)
}
