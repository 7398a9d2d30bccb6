package domain

import (
	"errors"
	"time"
)

var (
	// ErrCouponDiscountShape is returned when a coupon does not carry exactly
	// one of percent_off / amount_off_cents
	ErrCouponDiscountShape = errors.New("domain: coupon must set exactly one of percent_off and amount_off_cents")

	// ErrCouponPercentRange is returned when percent_off is outside [1, 100]
	ErrCouponPercentRange = errors.New("domain: coupon percent_off must be within [1, 100]")

	// ErrCouponAmountRange is returned when amount_off_cents is not positive
	ErrCouponAmountRange = errors.New("domain: coupon amount_off_cents must be positive")

	// ErrGiftCardBalance is returned when a gift card's balances are inconsistent
	ErrGiftCardBalance = errors.New("domain: gift card balance must satisfy 0 <= current <= initial")
)

// Coupon grants either a percentage discount or a fixed-amount discount,
// never both. The XOR shape is validated at creation and before every use.
type Coupon struct {
	ID             int64
	TenantID       int64
	Code           string
	PercentOff     *int64 // [1, 100]
	AmountOffCents *int64 // > 0
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	UsageLimit     *int64 // nil = unlimited
	UsedCount      int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the XOR discount shape and value ranges
func (c *Coupon) Validate() error {
	hasPercent := c.PercentOff != nil
	hasAmount := c.AmountOffCents != nil

	if hasPercent == hasAmount {
		return ErrCouponDiscountShape
	}
	if hasPercent && (*c.PercentOff < 1 || *c.PercentOff > 100) {
		return ErrCouponPercentRange
	}
	if hasAmount && *c.AmountOffCents <= 0 {
		return ErrCouponAmountRange
	}
	return nil
}

// IsUsableAt checks the validity window and usage limit at the given instant
func (c *Coupon) IsUsableAt(now time.Time) bool {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// GiftCard holds a prepaid balance. Deductions never drive the balance
// negative and never exceed the initial balance.
type GiftCard struct {
	ID                  int64
	TenantID            int64
	Code                string
	InitialBalanceCents int64
	CurrentBalanceCents int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the balance invariant
func (g *GiftCard) Validate() error {
	if g.CurrentBalanceCents < 0 || g.InitialBalanceCents < 0 ||
		g.CurrentBalanceCents > g.InitialBalanceCents {
		return ErrGiftCardBalance
	}
	return nil
}
