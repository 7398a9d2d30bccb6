package create_booking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// payloadFingerprint детерминированный отпечаток содержимого запроса.
// Время нормализуется в UTC Unix-секунды, чтобы один и тот же момент,
// присланный с разными offset'ами, давал одинаковый отпечаток.
//
// Отпечаток сравнивается при повторе client_generated_id: совпадение —
// replay (возвращаем существующее бронирование), расхождение — конфликт.
func payloadFingerprint(req *Request) string {
	parts := []string{
		fmt.Sprintf("tenant=%d", req.TenantID),
		fmt.Sprintf("customer=%d", req.CustomerID),
		fmt.Sprintf("resource=%d", req.ResourceID),
		fmt.Sprintf("service=%d", req.ServiceID),
		fmt.Sprintf("start=%d", req.StartAt.UTC().Unix()),
		fmt.Sprintf("end=%d", req.EndAt.UTC().Unix()),
		fmt.Sprintf("attendees=%d", req.AttendeeCount),
		fmt.Sprintf("amount=%d", req.AmountCents),
		fmt.Sprintf("coupon=%s", strDeref(req.CouponCode)),
		fmt.Sprintf("gift_card=%s", strDeref(req.GiftCardCode)),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
