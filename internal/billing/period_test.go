package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextPeriod(t *testing.T) {
	lastEnd := date(2024, 1, 31)

	tests := []struct {
		name      string
		lastEnd   *time.Time
		today     time.Time
		duration  int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"fresh start today", nil, time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC), 30, date(2024, 1, 1), date(2024, 1, 31)},
		{"queued after active period", &lastEnd, date(2024, 1, 10), 30, date(2024, 2, 1), date(2024, 3, 2)},
		{"zero length plan", nil, date(2024, 5, 5), 0, date(2024, 5, 5), date(2024, 5, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := NextPeriod(tt.lastEnd, tt.today, tt.duration)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestReanchor(t *testing.T) {
	tests := []struct {
		name        string
		start       time.Time
		paidAt      time.Time
		wantChanged bool
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{"paid on start day", date(2024, 1, 1), time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), true, date(2024, 1, 1), date(2024, 1, 31)},
		{"paid late", date(2024, 1, 1), time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC), true, date(2024, 1, 5), date(2024, 2, 4)},
		{"queued period untouched", date(2024, 2, 1), date(2024, 1, 15), false, time.Time{}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, changed := Reanchor(tt.start, tt.paidAt, 30)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestDayUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	t0 := time.Date(2024, 3, 1, 2, 0, 0, 0, loc) // 2024-02-29 18:00 UTC

	assert.Equal(t, date(2024, 2, 29), Day(t0))
	assert.Equal(t, "2024-02-29", dateOnly(t0))
}
