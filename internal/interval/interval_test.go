package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     Interval
		expected bool
	}{
		{
			name:     "Identical ranges",
			a:        Range("2024-06-01", 9*60, 10*60),
			b:        Range("2024-06-01", 9*60, 10*60),
			expected: true,
		},
		{
			name:     "Partial overlap",
			a:        Range("2024-06-01", 9*60, 10*60),
			b:        Range("2024-06-01", 9*60+30, 10*60+30),
			expected: true,
		},
		{
			name:     "Adjacent ranges do not overlap",
			a:        Range("2024-06-01", 9*60, 10*60),
			b:        Range("2024-06-01", 10*60, 11*60),
			expected: false,
		},
		{
			name:     "Contained range",
			a:        Range("2024-06-01", 9*60, 12*60),
			b:        Range("2024-06-01", 10*60, 11*60),
			expected: true,
		},
		{
			name:     "Same range, different days",
			a:        Range("2024-06-01", 9*60, 10*60),
			b:        Range("2024-06-02", 9*60, 10*60),
			expected: false,
		},
		{
			name:     "Whole day overlaps any range that day",
			a:        Day("2024-06-01"),
			b:        Range("2024-06-01", 23*60, 24*60),
			expected: true,
		},
		{
			name:     "Whole day does not leak across days",
			a:        Day("2024-06-01"),
			b:        Day("2024-06-02"),
			expected: false,
		},
		{
			name:     "Two whole days, same day",
			a:        Day("2024-06-01"),
			b:        Day("2024-06-01"),
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.expected, Overlaps(tc.b, tc.a), "overlap must be symmetric")
		})
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		iv          Interval
		granularity Granularity
		expectErr   bool
	}{
		{
			name:        "Valid room range",
			iv:          Range("2024-06-01", 9*60, 10*60),
			granularity: SubDay,
			expectErr:   false,
		},
		{
			name:        "Valid whole-day desk booking",
			iv:          Day("2024-06-02"),
			granularity: WholeDay,
			expectErr:   false,
		},
		{
			name:        "Start equals end",
			iv:          Range("2024-06-01", 10*60, 10*60),
			granularity: SubDay,
			expectErr:   true,
		},
		{
			name:        "Start after end",
			iv:          Range("2024-06-01", 11*60, 10*60),
			granularity: SubDay,
			expectErr:   true,
		},
		{
			name:        "End beyond midnight",
			iv:          Range("2024-06-01", 23*60, 25*60),
			granularity: SubDay,
			expectErr:   true,
		},
		{
			name:        "Sub-day fields on a whole-day resource",
			iv:          Range("2024-06-01", 9*60, 10*60),
			granularity: WholeDay,
			expectErr:   true,
		},
		{
			name:        "Whole-day flag on a sub-day resource",
			iv:          Day("2024-06-01"),
			granularity: SubDay,
			expectErr:   true,
		},
		{
			name:        "Past date",
			iv:          Day("2024-05-31"),
			granularity: WholeDay,
			expectErr:   true,
		},
		{
			name:        "Malformed date",
			iv:          Day("01/06/2024"),
			granularity: WholeDay,
			expectErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.iv, tc.granularity, now)
			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInterval)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	m, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, m)

	_, err = ParseTimeOfDay("9am")
	assert.ErrorIs(t, err, ErrInvalidInterval)

	assert.Equal(t, "09:30", FormatMinute(m))
}

func TestDayOf(t *testing.T) {
	d := DayOf(time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-01", d.Format(DateLayout))
}
