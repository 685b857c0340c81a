package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestInclusiveDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"single day", "2024-03-04", "2024-03-04", 1},
		{"within month", "2024-03-04", "2024-03-06", 3},
		{"across month end", "2024-01-30", "2024-02-02", 4},
		{"leap day", "2024-02-28", "2024-03-01", 3},
		{"non leap february", "2023-02-28", "2023-03-01", 2},
		{"whole leap year", "2024-01-01", "2024-12-31", 366},
		{"end before start", "2024-03-06", "2024-03-04", -1},
		// A full Gregorian cycle is 146097 days, beyond what time.Duration can hold.
		{"four centuries", "1700-01-01", "2100-01-01", 146098},
		{"calendar extremes", "0001-01-01", "9999-12-31", 3652059},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InclusiveDays(mustDate(t, tt.start), mustDate(t, tt.end)))
		})
	}
}

func TestInclusiveDays_IgnoresClockAndZone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	start := time.Date(2024, 3, 4, 23, 30, 0, 0, jakarta)
	end := time.Date(2024, 3, 6, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 3, InclusiveDays(start, end))
}

func TestDaysLeft(t *testing.T) {
	end := mustDate(t, "2024-03-06")

	assert.Equal(t, 2, DaysLeft(mustDate(t, "2024-03-04"), end))
	assert.Equal(t, 0, DaysLeft(end, end), "the as-of day is consumed")
	assert.Equal(t, 0, DaysLeft(mustDate(t, "2024-04-01"), end))
}

func TestOverlaps(t *testing.T) {
	aStart, aEnd := mustDate(t, "2024-03-04"), mustDate(t, "2024-03-06")

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"shares first day", "2024-03-01", "2024-03-04", true},
		{"shares last day", "2024-03-06", "2024-03-10", true},
		{"contained", "2024-03-05", "2024-03-05", true},
		{"day before", "2024-03-01", "2024-03-03", false},
		{"day after", "2024-03-07", "2024-03-08", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bStart, bEnd := mustDate(t, tt.start), mustDate(t, tt.end)
			assert.Equal(t, tt.want, Overlaps(aStart, aEnd, bStart, bEnd))
			assert.Equal(t, tt.want, Overlaps(bStart, bEnd, aStart, aEnd))
		})
	}
}
