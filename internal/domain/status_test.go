package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus_CancelWinsOverEverything(t *testing.T) {
	canceledAt := time.Now()

	tests := []struct {
		name   string
		action BookingAction
		prior  BookingStatus
	}{
		{"racing complete action", ActionComplete, StatusCheckedIn},
		{"racing confirm action", ActionConfirm, StatusPending},
		{"already completed", ActionNone, StatusCompleted},
		{"no action", ActionNone, StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStatus(&canceledAt, false, tt.action, tt.prior)
			assert.Equal(t, StatusCanceled, got)
		})
	}
}

func TestResolveStatus_NoShowWinsOverActions(t *testing.T) {
	assert.Equal(t, StatusNoShow, ResolveStatus(nil, true, ActionConfirm, StatusPending))
	assert.Equal(t, StatusNoShow, ResolveStatus(nil, true, ActionComplete, StatusConfirmed))
	assert.Equal(t, StatusNoShow, ResolveStatus(nil, true, ActionNone, StatusCheckedIn))
}

func TestResolveStatus_CanceledAtBeatsNoShowFlag(t *testing.T) {
	canceledAt := time.Now()
	got := ResolveStatus(&canceledAt, true, ActionNone, StatusConfirmed)
	assert.Equal(t, StatusCanceled, got)
}

func TestResolveStatus_ActionsImplyStatus(t *testing.T) {
	tests := []struct {
		action BookingAction
		prior  BookingStatus
		want   BookingStatus
	}{
		{ActionConfirm, StatusPending, StatusConfirmed},
		{ActionCheckIn, StatusConfirmed, StatusCheckedIn},
		{ActionComplete, StatusCheckedIn, StatusCompleted},
		{ActionNone, StatusPending, StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_"+string(tt.prior), func(t *testing.T) {
			got := ResolveStatus(nil, false, tt.action, tt.prior)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveStatus_TerminalNotReenterable(t *testing.T) {
	for _, terminal := range TerminalStatuses {
		t.Run(string(terminal), func(t *testing.T) {
			got := ResolveStatus(nil, false, ActionConfirm, terminal)
			assert.Equal(t, terminal, got)
		})
	}
}

func TestStatusSets_AreDisjointAndComplete(t *testing.T) {
	for _, s := range ActiveStatuses {
		assert.True(t, IsActiveStatus(s))
		assert.False(t, IsTerminalStatus(s))
	}
	for _, s := range TerminalStatuses {
		assert.True(t, IsTerminalStatus(s))
		assert.False(t, IsActiveStatus(s))
	}
	assert.False(t, IsValidStatus(BookingStatus("draft")))
}
