// Package availability derives free/conflicting answers and status
// labels from the reservation store. Everything here is read-only and
// advisory: only the booking manager's conditional insert is
// authoritative.
package availability

import (
	"context"

	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
	"deskmate-backend/internal/store"
)

// Availability is the answer for a candidate interval.
type Availability string

const (
	Free     Availability = "FREE"
	Conflict Availability = "CONFLICT"
)

// Status labels a resource in list views, always relative to an
// explicit reference interval.
type Status string

const (
	Vacant Status = "VACANT"
	Booked Status = "BOOKED"
)

// Evaluator answers availability questions against the store.
type Evaluator struct {
	store store.Store
}

// NewEvaluator creates an evaluator over the given store.
func NewEvaluator(s store.Store) *Evaluator {
	return &Evaluator{store: s}
}

// CheckAvailability reports whether the candidate interval is free on
// the resource. Safe to call speculatively; a FREE answer can be
// outdated by a concurrent commit.
func (e *Evaluator) CheckAvailability(ctx context.Context, resourceID uint, iv interval.Interval) (Availability, error) {
	existing, err := e.store.ReservationsFor(ctx, resourceID, iv.Date)
	if err != nil {
		return "", err
	}
	for _, r := range existing {
		if interval.Overlaps(iv, r.Interval()) {
			return Conflict, nil
		}
	}
	return Free, nil
}

// StatusAt labels the resource for the reference interval. BOOKED iff
// CheckAvailability reports CONFLICT for the same interval; two
// different reference intervals can legitimately yield different
// answers for the same resource.
func (e *Evaluator) StatusAt(ctx context.Context, resourceID uint, reference interval.Interval) (Status, error) {
	avail, err := e.CheckAvailability(ctx, resourceID, reference)
	if err != nil {
		return "", err
	}
	if avail == Conflict {
		return Booked, nil
	}
	return Vacant, nil
}

// BookingsOn returns every reservation touching the calendar day, even
// ones outside a narrower reference interval, so callers can show
// full-day context.
func (e *Evaluator) BookingsOn(ctx context.Context, resourceID uint, date string) ([]model.Reservation, error) {
	return e.store.ReservationsFor(ctx, resourceID, date)
}
