package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimezoneUnresolved means neither the request, the resource nor the tenant
// carried a usable timezone. Resource and tenant timezones are mandatory at
// setup time, so this is a tenant misconfiguration and must surface loudly,
// never be defaulted away.
var ErrTimezoneUnresolved = errors.New("domain: booking timezone cannot be resolved")

// ResolveTimezone picks the effective timezone for a new booking.
// Resolution order: explicit request value, then resource.tz, then tenant.tz.
// The winner is validated against the IANA database before use.
//
// The resolved value is stored on the booking row itself so wall-clock
// reconstruction stays stable even if the resource's timezone changes later.
func ResolveTimezone(explicit string, resource *Resource, tenant *Tenant) (string, error) {
	candidates := []string{explicit}
	if resource != nil {
		candidates = append(candidates, resource.TZ)
	}
	if tenant != nil {
		candidates = append(candidates, tenant.TZ)
	}

	for _, tz := range candidates {
		if tz == "" {
			continue
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return "", fmt.Errorf("%w: invalid IANA name %q: %v", ErrTimezoneUnresolved, tz, err)
		}
		return tz, nil
	}

	return "", ErrTimezoneUnresolved
}

// WallClock renders a stored UTC instant back into the local time a user
// would have seen at booking time, using the booking's stored timezone.
func WallClock(instant time.Time, bookingTZ string) (time.Time, error) {
	loc, err := time.LoadLocation(bookingTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: stored timezone %q: %v", ErrTimezoneUnresolved, bookingTZ, err)
	}
	return instant.In(loc), nil
}
