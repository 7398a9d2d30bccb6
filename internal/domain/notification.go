package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus represents the delivery state of a notification request
type NotificationStatus string

const (
	NotificationQueued NotificationStatus = "queued"
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// NotificationChannel is the outbound transport the delivery worker hands to
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// Event codes published on the booking lifecycle stream
const (
	EventBookingCreated     = "booking_created"
	EventBookingConfirmed   = "booking_confirmed"
	EventBookingCheckedIn   = "booking_checked_in"
	EventBookingCompleted   = "booking_completed"
	EventBookingCanceled    = "booking_canceled"
	EventBookingNoShow      = "booking_no_show"
	EventBookingRescheduled = "booking_rescheduled"
)

// NotificationRequest is the deduplicated, retry-bounded intent to notify.
// Actual channel transport (SMTP/SMS gateway) is external; the engine only
// guarantees each logical notification is handed off effectively once.
type NotificationRequest struct {
	ID          uuid.UUID
	TenantID    int64
	EventCode   string
	Channel     NotificationChannel
	Recipient   string
	DedupeKey   *string // nil = best-effort channel, never deduplicated
	Status      NotificationStatus
	Attempts    int
	MaxAttempts int
	ScheduledAt time.Time
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDue reports whether the request is eligible for a delivery attempt
func (n *NotificationRequest) IsDue(now time.Time) bool {
	return n.Status == NotificationQueued && !n.ScheduledAt.After(now)
}

// AttemptsExhausted reports whether the retry budget is spent
func (n *NotificationRequest) AttemptsExhausted() bool {
	return n.Attempts >= n.MaxAttempts
}
