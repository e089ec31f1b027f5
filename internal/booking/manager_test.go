package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
	"deskmate-backend/internal/registry"
	"deskmate-backend/internal/store"
)

// captureNotifier records dispatched events.
type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *captureNotifier) Dispatch(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *captureNotifier) all() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

type fixture struct {
	manager  *Manager
	store    store.Store
	notifier *captureNotifier
	room     model.Resource
	desk     model.Resource
}

func testNow() time.Time {
	return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Resource{}, &model.Reservation{}))

	room := model.Resource{Kind: model.KindRoom, Number: "MR-101", Name: "Board Room", Seats: 14}
	desk := model.Resource{Kind: model.KindDesk, Number: "D-105", Name: "Desk 105", Department: "Engineering"}
	require.NoError(t, db.Create(&room).Error)
	require.NoError(t, db.Create(&desk).Error)

	s := store.NewGormStore(db)
	notifier := &captureNotifier{}
	m := NewManager(registry.NewGormRegistry(db), s, availability.NewEvaluator(s), notifier, testNow)
	return &fixture{manager: m, store: s, notifier: notifier, room: room, desk: desk}
}

func validRequest(resourceID uint, iv interval.Interval) Request {
	return Request{
		ResourceID:  resourceID,
		Interval:    iv,
		BookerName:  "Priya Nair",
		Designation: "Engineer",
		Department:  "Engineering",
		Contact:     "98765-43210",
		Email:       "priya@example.com",
	}
}

func TestSubmitCommits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60)))
	require.NoError(t, err)
	assert.NotZero(t, r.ID)

	events := f.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventCommitted, events[0].Type)
	assert.Equal(t, f.room.ID, events[0].ResourceID)

	// Re-booking the same interval is rejected.
	_, err = f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60)))
	assert.ErrorIs(t, err, ErrConflict)

	// Adjacent interval commits.
	_, err = f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 10*60, 11*60)))
	assert.NoError(t, err)
}

func TestSubmitValidationRejectsBeforeStoreAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"Missing name", func(r *Request) { r.BookerName = " " }, "bookerName"},
		{"Missing designation", func(r *Request) { r.Designation = "" }, "designation"},
		{"Missing department", func(r *Request) { r.Department = "" }, "department"},
		{"Malformed email", func(r *Request) { r.Email = "not-an-email" }, "email"},
		{"Short contact", func(r *Request) { r.Contact = "12345" }, "contact"},
		{"Delegate without name", func(r *Request) { r.ForDelegate = true; r.DelegateEmail = "amit@example.com" }, "delegateName"},
		{"Delegate with bad email", func(r *Request) {
			r.ForDelegate = true
			r.DelegateName = "Amit Shah"
			r.DelegateEmail = "amit@"
		}, "delegateEmail"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60))
			tc.mutate(&req)

			_, err := f.manager.Submit(ctx, req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tc.field)
		})
	}

	// No store access happened: the interval is still free.
	stored, err := f.store.ReservationsFor(ctx, f.room.ID, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSubmitIntervalValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// start >= end for a room.
	_, err := f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 10*60, 9*60)))
	assert.ErrorIs(t, err, interval.ErrInvalidInterval)

	// Sub-day fields for a desk.
	_, err = f.manager.Submit(ctx, validRequest(f.desk.ID, interval.Range("2024-06-01", 9*60, 10*60)))
	assert.ErrorIs(t, err, interval.ErrInvalidInterval)

	// Past date.
	_, err = f.manager.Submit(ctx, validRequest(f.desk.ID, interval.Day("2024-05-31")))
	assert.ErrorIs(t, err, interval.ErrInvalidInterval)

	// Unknown resource.
	_, err = f.manager.Submit(ctx, validRequest(999, interval.Day("2024-06-01")))
	assert.ErrorIs(t, err, registry.ErrResourceNotFound)
}

func TestSubmitDeskWholeDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRequest(f.desk.ID, interval.Day("2024-06-01"))
	req.ForDelegate = true
	req.DelegateName = "Amit Shah"
	req.DelegateEmail = "amit@example.com"

	r, err := f.manager.Submit(ctx, req)
	require.NoError(t, err)
	assert.True(t, r.WholeDay)
	assert.True(t, r.ForDelegate)

	// Same desk, same day: taken.
	_, err = f.manager.Submit(ctx, validRequest(f.desk.ID, interval.Day("2024-06-01")))
	assert.ErrorIs(t, err, ErrConflict)

	// Next day: free.
	_, err = f.manager.Submit(ctx, validRequest(f.desk.ID, interval.Day("2024-06-02")))
	assert.NoError(t, err)
}

func TestConcurrentSubmitsCommitExactlyOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 12
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60)))
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, err := range errs {
		if err == nil {
			committed++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, committed)

	stored, err := f.store.ReservationsFor(ctx, f.room.ID, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestConcurrentSubmitsOnDifferentResourcesAllCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60)))
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.manager.Submit(ctx, validRequest(f.desk.ID, interval.Day("2024-06-01")))
	}()
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60)))
	require.NoError(t, err)

	require.NoError(t, f.manager.Cancel(ctx, r.ID))

	// Idempotent-ish: a second cancel reports NotFound.
	assert.ErrorIs(t, f.manager.Cancel(ctx, r.ID), store.ErrNotFound)

	// The original interval is free again.
	_, err = f.manager.Submit(ctx, validRequest(f.room.ID, interval.Range("2024-06-01", 9*60, 10*60)))
	assert.NoError(t, err)

	events := f.notifier.all()
	require.Len(t, events, 3)
	assert.Equal(t, EventCancelled, events[1].Type)
}
