// Package metrics defines the Prometheus counters for envelope
// verification and application.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"blah/internal/domain/types"
)

// Metrics holds the counters. The zero value is not usable; call New.
type Metrics struct {
	// Verified counts verification attempts by result.
	Verified *prometheus.CounterVec
	// Applied counts envelopes handed to the room service by payload
	// type and result.
	Applied *prometheus.CounterVec
}

// New creates the counters and registers them on reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Verified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blah",
			Name:      "envelopes_verified_total",
			Help:      "Envelope verifications by result.",
		}, []string{"result"}),
		Applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blah",
			Name:      "envelopes_applied_total",
			Help:      "Envelopes applied to the room store by payload type and result.",
		}, []string{"typ", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Verified, m.Applied)
	}
	return m
}

// ObserveVerify records the outcome of a verification.
func (m *Metrics) ObserveVerify(err error) {
	if m == nil {
		return
	}
	m.Verified.WithLabelValues(Result(err)).Inc()
}

// ObserveApply records the outcome of applying a payload of type typ.
func (m *Metrics) ObserveApply(typ types.PayloadType, err error) {
	if m == nil {
		return
	}
	m.Applied.WithLabelValues(string(typ), Result(err)).Inc()
}

// Result maps an error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrTimestampOutOfRange):
		return "stale"
	case errors.Is(err, types.ErrInvalidSignature), errors.Is(err, types.ErrInvalidIdentity):
		return "bad_signature"
	case errors.Is(err, types.ErrPermissionDenied), errors.Is(err, types.ErrCreatorNotAdmin):
		return "denied"
	case errors.Is(err, types.ErrDuplicateEnvelope):
		return "duplicate"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
