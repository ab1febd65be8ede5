package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FlightRegistry tracks the in-flight generation job per user. Submitting a
// new job supersedes the previous one: its delivery context is cancelled so
// that subscribers stop receiving updates for it. The superseded job itself
// keeps running to completion; every storage key it writes is namespaced by
// its own story ID, so letting it finish is harmless.
type FlightRegistry struct {
	mu      sync.Mutex
	flights map[uuid.UUID]*flight
}

type flight struct {
	requestID uuid.UUID
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewFlightRegistry creates a new per-user single-flight registry.
func NewFlightRegistry() *FlightRegistry {
	return &FlightRegistry{
		flights: make(map[uuid.UUID]*flight),
	}
}

// Supersede registers a new in-flight job for the user, cancelling the
// delivery handle of any existing one. It returns a context that is cancelled
// when the job is itself superseded or completed.
func (r *FlightRegistry) Supersede(userID, requestID uuid.UUID) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.flights[userID]; ok {
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.flights[userID] = &flight{
		requestID: requestID,
		ctx:       ctx,
		cancel:    cancel,
	}
	return ctx
}

// Active returns the request ID of the user's current in-flight job.
func (r *FlightRegistry) Active(userID uuid.UUID) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flights[userID]
	if !ok {
		return uuid.Nil, false
	}
	return f.requestID, true
}

// Finish releases the user's registration if it still belongs to the given
// request. A job that was already superseded leaves the newer entry intact.
func (r *FlightRegistry) Finish(userID, requestID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flights[userID]
	if !ok || f.requestID != requestID {
		return
	}
	f.cancel()
	delete(r.flights, userID)
}
