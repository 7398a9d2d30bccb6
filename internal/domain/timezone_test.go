package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTimezone_ExplicitWins(t *testing.T) {
	resource := &Resource{TZ: "America/New_York"}
	tenant := &Tenant{TZ: "Europe/Berlin"}

	tz, err := ResolveTimezone("Asia/Tokyo", resource, tenant)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", tz)
}

func TestResolveTimezone_FallsBackToResource(t *testing.T) {
	resource := &Resource{TZ: "America/New_York"}
	tenant := &Tenant{TZ: "Europe/Berlin"}

	tz, err := ResolveTimezone("", resource, tenant)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", tz)
}

func TestResolveTimezone_TenantUsedOnlyWhenResourceHasNone(t *testing.T) {
	resource := &Resource{TZ: ""}
	tenant := &Tenant{TZ: "Europe/Berlin"}

	tz, err := ResolveTimezone("", resource, tenant)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", tz)
}

func TestResolveTimezone_UnresolvableIsFatal(t *testing.T) {
	_, err := ResolveTimezone("", &Resource{}, &Tenant{})
	assert.ErrorIs(t, err, ErrTimezoneUnresolved)

	_, err = ResolveTimezone("", nil, nil)
	assert.ErrorIs(t, err, ErrTimezoneUnresolved)
}

func TestResolveTimezone_InvalidNameRejected(t *testing.T) {
	_, err := ResolveTimezone("Not/AZone", nil, nil)
	assert.ErrorIs(t, err, ErrTimezoneUnresolved)
}

func TestWallClock_ReconstructsLocalTime(t *testing.T) {
	// 15:00 UTC on a summer date is 11:00 in New York (EDT)
	instant := time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC)

	local, err := WallClock(instant, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, 11, local.Hour())
	assert.True(t, local.Equal(instant))
}
