package domain

import "time"

// Default values applied when the configuration omits them
const (
	DefaultMaxNotificationAttempts = 5
	DefaultScheduleHorizon         = 365 * 24 * time.Hour // sanity bound for scheduled_at
	DefaultAttendeeCount           = 1
)

// Business validation constants
const (
	MinBookingDuration = 5 * time.Minute
	MaxBookingDuration = 24 * time.Hour
	MaxAttendeeCount   = 1000

	MaxClientGeneratedIDLength = 128
	MaxPromoCodeLength         = 64
)

// Quota codes checked at the enforcement point before mutating operations
const (
	QuotaBookingsPerMonth      = "bookings_per_month"
	QuotaNotificationsPerMonth = "notifications_per_month"
)
