package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingOverlaps_HalfOpenIntervals(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	b := &Booking{StartAt: base, EndAt: base.Add(time.Hour)}

	// back-to-back bookings share a boundary instant and do not overlap
	assert.False(t, b.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, b.Overlaps(base.Add(-time.Hour), base))

	assert.True(t, b.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, b.Overlaps(base.Add(-30*time.Minute), base.Add(30*time.Minute)))
	assert.True(t, b.Overlaps(base.Add(10*time.Minute), base.Add(20*time.Minute)))
	assert.True(t, b.Overlaps(base.Add(-time.Hour), base.Add(2*time.Hour)))
}

func TestBookingIsActive(t *testing.T) {
	for _, s := range ActiveStatuses {
		assert.True(t, (&Booking{Status: s}).IsActive())
	}
	for _, s := range TerminalStatuses {
		b := &Booking{Status: s}
		assert.False(t, b.IsActive())
		assert.True(t, b.IsTerminal())
	}
}
