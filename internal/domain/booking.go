package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking represents a reservation of a resource for a half-open time
// interval [StartAt, EndAt). Instants are stored in UTC; BookingTZ is
// presentation metadata only and never affects interval comparison.
type Booking struct {
	ID                uuid.UUID
	TenantID          int64
	ClientGeneratedID string // caller-supplied idempotency token, unique per tenant
	CustomerID        int64
	ResourceID        int64
	ServiceID         int64

	StartAt   time.Time
	EndAt     time.Time
	BookingTZ string // IANA name resolved at creation time, immutable afterwards

	Status          BookingStatus
	CanceledAt      *time.Time
	NoShowFlag      bool
	RescheduledFrom *uuid.UUID
	AttendeeCount   int

	// Payment boundary: the engine records amounts and the promo codes that
	// produced them, capture/settlement is external.
	AmountCents      int64
	FinalAmountCents int64
	CouponCode       *string
	GiftCardCode     *string

	PayloadFingerprint string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its resource/time slot
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// IsTerminal returns true if the booking reached a terminal status
func (b *Booking) IsTerminal() bool {
	return IsTerminalStatus(b.Status)
}

// Overlaps reports whether the booking's interval intersects [start, end).
// Half-open semantics: back-to-back bookings sharing a boundary do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartAt.Before(end) && b.EndAt.After(start)
}

// TenantBookingsFilter describes an admin-facing booking listing query.
// Optional fields are nil when not constrained.
type TenantBookingsFilter struct {
	TenantID        int64
	ResourceID      *int64
	CustomerID      *int64
	From            *time.Time
	To              *time.Time
	Status          *BookingStatus
	IncludeInactive bool // include terminal bookings in the listing
}
