package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bookline/booking-engine/pkg/ptr"
)

func TestCouponValidate_ExactlyOneDiscountKind(t *testing.T) {
	tests := []struct {
		name    string
		coupon  Coupon
		wantErr error
	}{
		{"percent only", Coupon{PercentOff: ptr.Ptr(int64(50))}, nil},
		{"amount only", Coupon{AmountOffCents: ptr.Ptr(int64(500))}, nil},
		{"both set", Coupon{PercentOff: ptr.Ptr(int64(10)), AmountOffCents: ptr.Ptr(int64(100))}, ErrCouponDiscountShape},
		{"neither set", Coupon{}, ErrCouponDiscountShape},
		{"percent zero", Coupon{PercentOff: ptr.Ptr(int64(0))}, ErrCouponPercentRange},
		{"percent above 100", Coupon{PercentOff: ptr.Ptr(int64(101))}, ErrCouponPercentRange},
		{"amount zero", Coupon{AmountOffCents: ptr.Ptr(int64(0))}, ErrCouponAmountRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coupon.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCouponIsUsableAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	c := Coupon{
		PercentOff: ptr.Ptr(int64(10)),
		ValidFrom:  ptr.Ptr(now.Add(-time.Hour)),
		ValidUntil: ptr.Ptr(now.Add(time.Hour)),
	}
	assert.True(t, c.IsUsableAt(now))
	assert.False(t, c.IsUsableAt(now.Add(-2*time.Hour)))
	assert.False(t, c.IsUsableAt(now.Add(2*time.Hour)))

	limited := Coupon{PercentOff: ptr.Ptr(int64(10)), UsageLimit: ptr.Ptr(int64(3)), UsedCount: 3}
	assert.False(t, limited.IsUsableAt(now))
}

func TestGiftCardValidate(t *testing.T) {
	assert.NoError(t, (&GiftCard{InitialBalanceCents: 5000, CurrentBalanceCents: 3000}).Validate())
	assert.ErrorIs(t, (&GiftCard{InitialBalanceCents: 5000, CurrentBalanceCents: -1}).Validate(), ErrGiftCardBalance)
	assert.ErrorIs(t, (&GiftCard{InitialBalanceCents: 5000, CurrentBalanceCents: 6000}).Validate(), ErrGiftCardBalance)
}
