package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
)

var (
	// ErrConflict is returned when an insert would overlap a committed
	// reservation for the same resource.
	ErrConflict = errors.New("interval conflicts with an existing reservation")
	// ErrNotFound is returned for unknown reservation ids.
	ErrNotFound = errors.New("reservation not found")
	// ErrStoreUnavailable wraps backing-store failures. Reads are
	// retried before surfacing it; writes are never retried.
	ErrStoreUnavailable = errors.New("reservation store unavailable")
)

const (
	readAttempts  = 3
	readRetryWait = 50 * time.Millisecond
)

// Store is the ordered, queryable collection of committed reservations.
type Store interface {
	ReservationsFor(ctx context.Context, resourceID uint, date string) ([]model.Reservation, error)
	ReservationsOn(ctx context.Context, date string) ([]model.Reservation, error)
	ReservationsByEmail(ctx context.Context, email string) ([]model.Reservation, error)
	Get(ctx context.Context, id uint) (model.Reservation, error)
	Insert(ctx context.Context, r *model.Reservation) (uint, error)
	Remove(ctx context.Context, id uint) error
	DB() *gorm.DB
}

// resourceLocks hands out one mutex per resource so that writes to the
// same resource serialize while writes to different resources never
// block each other.
type resourceLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (rl *resourceLocks) forResource(id uint) *sync.Mutex {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.locks[id]
	if !ok {
		l = &sync.Mutex{}
		rl.locks[id] = l
	}
	return l
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db    *gorm.DB
	locks *resourceLocks
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{
		db:    db,
		locks: &resourceLocks{locks: make(map[uint]*sync.Mutex)},
	}
}

// DB exposes the underlying connection for collaborators that query
// directly, such as the notification worker pool.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ReservationsFor returns all reservations touching the given calendar
// day for one resource, ordered by start time.
func (s *gormStore) ReservationsFor(ctx context.Context, resourceID uint, date string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.withReadRetry(ctx, func() error {
		out = out[:0]
		return s.db.WithContext(ctx).
			Where("resource_id = ? AND date = ?", resourceID, date).
			Order("whole_day DESC, start_minute ASC").
			Find(&out).Error
	})
	return out, err
}

// ReservationsOn returns all reservations on a calendar day across
// resources.
func (s *gormStore) ReservationsOn(ctx context.Context, date string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.withReadRetry(ctx, func() error {
		out = out[:0]
		return s.db.WithContext(ctx).
			Where("date = ?", date).
			Order("resource_id ASC, start_minute ASC").
			Find(&out).Error
	})
	return out, err
}

// ReservationsByEmail returns a requester's reservations, newest first.
func (s *gormStore) ReservationsByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.withReadRetry(ctx, func() error {
		out = out[:0]
		return s.db.WithContext(ctx).
			Where("email = ?", email).
			Order("date DESC, start_minute ASC").
			Find(&out).Error
	})
	return out, err
}

// Get returns a single reservation by id.
func (s *gormStore) Get(ctx context.Context, id uint) (model.Reservation, error) {
	var r model.Reservation
	err := s.withReadRetry(ctx, func() error {
		res := s.db.WithContext(ctx).First(&r, id)
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return res.Error
	})
	if err != nil {
		return model.Reservation{}, err
	}
	return r, nil
}

// Insert commits a reservation if and only if it overlaps nothing
// already stored for the same resource. The per-resource lock plus the
// transactional re-read make the overlap check and the create a single
// atomic conditional insert with respect to other writers.
func (s *gormStore) Insert(ctx context.Context, r *model.Reservation) (uint, error) {
	lock := s.locks.forResource(r.ResourceID)
	lock.Lock()
	defer lock.Unlock()

	candidate := r.Interval()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.Reservation
		if err := tx.Where("resource_id = ? AND date = ?", r.ResourceID, r.Date).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		for _, e := range existing {
			if interval.Overlaps(candidate, e.Interval()) {
				return ErrConflict
			}
		}
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}

// Remove deletes a reservation, freeing its interval. Removing an id
// that no longer exists reports ErrNotFound, so repeated cancellation
// never double-counts.
func (s *gormStore) Remove(ctx context.Context, id uint) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	lock := s.locks.forResource(existing.ResourceID)
	lock.Lock()
	defer lock.Unlock()

	res := s.db.WithContext(ctx).Delete(&model.Reservation{}, id)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// withReadRetry retries transient backend failures a bounded number of
// times before surfacing ErrStoreUnavailable.
func (s *gormStore) withReadRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < readAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(readRetryWait):
			}
		}
		err = op()
		if err == nil || errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
