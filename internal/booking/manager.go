// Package booking implements the commit path for reservations: each
// attempt walks VALIDATING -> CHECKING -> COMMITTING and ends either
// COMMITTED or REJECTED. The store's conditional insert is the single
// authoritative point; everything before it is advisory.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
	"deskmate-backend/internal/registry"
	"deskmate-backend/internal/store"
)

// ErrConflict is returned when the requested interval is no longer
// available, whether caught at the advisory check or at commit time.
var ErrConflict = errors.New("interval no longer available")

// EventType labels reservation lifecycle events handed to the notifier.
type EventType string

const (
	EventCommitted EventType = "committed"
	EventCancelled EventType = "cancelled"
)

// Event describes a committed state change for external collaborators.
type Event struct {
	Type          EventType
	ReservationID uint
	ResourceID    uint
}

// Notifier consumes reservation events fire-and-forget; its failures
// never affect the booking result.
type Notifier interface {
	Dispatch(ev Event)
}

// Request carries one booking attempt.
type Request struct {
	ResourceID uint              `json:"resourceId"`
	Interval   interval.Interval `json:"interval"`

	BookerName  string `json:"bookerName"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`

	ForDelegate   bool   `json:"forDelegate"`
	DelegateName  string `json:"delegateName"`
	DelegateEmail string `json:"delegateEmail"`
}

// Manager runs booking and cancellation transactions.
type Manager struct {
	registry  registry.Registry
	store     store.Store
	evaluator *availability.Evaluator
	notifier  Notifier
	now       func() time.Time
}

// NewManager wires the booking transaction manager. notifier may be
// nil when no dispatcher is configured; now defaults to time.Now.
func NewManager(reg registry.Registry, s store.Store, e *availability.Evaluator, notifier Notifier, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		registry:  reg,
		store:     s,
		evaluator: e,
		notifier:  notifier,
		now:       now,
	}
}

// Submit runs one booking attempt to a terminal state and returns the
// committed reservation, or the rejection reason as a typed error.
func (m *Manager) Submit(ctx context.Context, req Request) (model.Reservation, error) {
	// VALIDATING: structural checks only, no store access.
	vErr := &ValidationError{}
	validateIdentity(req, vErr)
	if vErr.hasErrors() {
		return model.Reservation{}, vErr
	}

	res, err := m.registry.Get(ctx, req.ResourceID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := interval.Validate(req.Interval, registry.Granularity(res.Kind), m.now()); err != nil {
		return model.Reservation{}, err
	}

	// CHECKING: advisory availability probe. A FREE answer here can
	// still lose the race to a concurrent committer.
	avail, err := m.evaluator.CheckAvailability(ctx, req.ResourceID, req.Interval)
	if err != nil {
		return model.Reservation{}, err
	}
	if avail == availability.Conflict {
		return model.Reservation{}, ErrConflict
	}

	// COMMITTING: the store re-validates under the per-resource lock,
	// so a lost-update race surfaces as a conflict, never as a
	// double-booked store.
	reservation := model.Reservation{
		ResourceID:    req.ResourceID,
		Date:          req.Interval.Date,
		StartMinute:   req.Interval.StartMinute,
		EndMinute:     req.Interval.EndMinute,
		WholeDay:      req.Interval.WholeDay,
		BookerName:    req.BookerName,
		Designation:   req.Designation,
		Department:    req.Department,
		Contact:       req.Contact,
		Email:         req.Email,
		ForDelegate:   req.ForDelegate,
		DelegateName:  req.DelegateName,
		DelegateEmail: req.DelegateEmail,
	}
	id, err := m.store.Insert(ctx, &reservation)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Reservation{}, fmt.Errorf("%w: lost commit race", ErrConflict)
		}
		return model.Reservation{}, err
	}

	// COMMITTED.
	log.Printf("reservation %d committed for resource %d on %s", id, res.ID, req.Interval.Date)
	if m.notifier != nil {
		m.notifier.Dispatch(Event{Type: EventCommitted, ReservationID: id, ResourceID: res.ID})
	}
	return reservation, nil
}

// Cancel removes a committed reservation. Cancelling an unknown or
// already-cancelled id returns store.ErrNotFound; no availability
// re-check is needed since removal only frees an interval.
func (m *Manager) Cancel(ctx context.Context, reservationID uint) error {
	existing, err := m.store.Get(ctx, reservationID)
	if err != nil {
		return err
	}
	if err := m.store.Remove(ctx, reservationID); err != nil {
		return err
	}

	log.Printf("reservation %d cancelled for resource %d", reservationID, existing.ResourceID)
	if m.notifier != nil {
		m.notifier.Dispatch(Event{Type: EventCancelled, ReservationID: reservationID, ResourceID: existing.ResourceID})
	}
	return nil
}
