package availability

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
	"deskmate-backend/internal/store"
)

func newEvaluator(t *testing.T) (*Evaluator, store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Resource{}, &model.Reservation{}))
	s := store.NewGormStore(db)
	return NewEvaluator(s), s
}

func seedRoomBooking(t *testing.T, s store.Store, resourceID uint, date string, start, end int) uint {
	t.Helper()
	id, err := s.Insert(context.Background(), &model.Reservation{
		ResourceID:  resourceID,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
		BookerName:  "Ravi Iyer",
		Designation: "Manager",
		Department:  "Sales",
		Contact:     "9123456780",
		Email:       "ravi@example.com",
	})
	require.NoError(t, err)
	return id
}

func TestCheckAvailability(t *testing.T) {
	e, s := newEvaluator(t)
	ctx := context.Background()

	// Empty store: everything free.
	avail, err := e.CheckAvailability(ctx, 1, interval.Range("2024-06-01", 9*60, 10*60))
	require.NoError(t, err)
	assert.Equal(t, Free, avail)

	seedRoomBooking(t, s, 1, "2024-06-01", 9*60, 10*60)

	avail, err = e.CheckAvailability(ctx, 1, interval.Range("2024-06-01", 9*60, 10*60))
	require.NoError(t, err)
	assert.Equal(t, Conflict, avail)

	// Adjacent window stays free.
	avail, err = e.CheckAvailability(ctx, 1, interval.Range("2024-06-01", 10*60, 11*60))
	require.NoError(t, err)
	assert.Equal(t, Free, avail)

	// Other resources are unaffected.
	avail, err = e.CheckAvailability(ctx, 2, interval.Range("2024-06-01", 9*60, 10*60))
	require.NoError(t, err)
	assert.Equal(t, Free, avail)
}

func TestWholeDayDoesNotLeakAcrossDays(t *testing.T) {
	e, s := newEvaluator(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &model.Reservation{
		ResourceID: 5, Date: "2024-06-01", WholeDay: true,
		BookerName: "Mei Lin", Designation: "Analyst", Department: "Finance",
		Contact: "9988776655", Email: "mei@example.com",
	})
	require.NoError(t, err)

	avail, err := e.CheckAvailability(ctx, 5, interval.Day("2024-06-01"))
	require.NoError(t, err)
	assert.Equal(t, Conflict, avail)

	avail, err = e.CheckAvailability(ctx, 5, interval.Day("2024-06-02"))
	require.NoError(t, err)
	assert.Equal(t, Free, avail)
}

func TestStatusMatchesAvailability(t *testing.T) {
	e, s := newEvaluator(t)
	ctx := context.Background()

	seedRoomBooking(t, s, 1, "2024-06-01", 9*60, 10*60)

	references := []interval.Interval{
		interval.Range("2024-06-01", 9*60, 10*60),
		interval.Range("2024-06-01", 9*60+30, 10*60+30),
		interval.Range("2024-06-01", 10*60, 11*60),
		interval.Day("2024-06-01"),
		interval.Day("2024-06-02"),
	}
	for _, ref := range references {
		avail, err := e.CheckAvailability(ctx, 1, ref)
		require.NoError(t, err)
		status, err := e.StatusAt(ctx, 1, ref)
		require.NoError(t, err)
		if avail == Conflict {
			assert.Equal(t, Booked, status, "reference %+v", ref)
		} else {
			assert.Equal(t, Vacant, status, "reference %+v", ref)
		}
	}
}

func TestBookingsOnReturnsFullDayContext(t *testing.T) {
	e, s := newEvaluator(t)
	ctx := context.Background()

	seedRoomBooking(t, s, 1, "2024-06-01", 9*60, 10*60)
	seedRoomBooking(t, s, 1, "2024-06-01", 15*60, 16*60)
	seedRoomBooking(t, s, 1, "2024-06-02", 9*60, 10*60)

	bookings, err := e.BookingsOn(ctx, 1, "2024-06-01")
	require.NoError(t, err)
	// Both reservations on the day, even when a caller only asked about
	// the morning.
	assert.Len(t, bookings, 2)
}
