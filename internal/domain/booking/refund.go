package booking

import "time"

// ===============================
// Refund Policy
// ===============================

// RefundPercent maps the time remaining before the anchor session onto
// the refund tier. Cliff boundaries are inclusive on the generous side:
// exactly 48h yields 100, exactly 24h yields 80, exactly 4h yields 50.
func RefundPercent(untilStart time.Duration) int {
	switch {
	case untilStart >= 48*time.Hour:
		return 100
	case untilStart >= 24*time.Hour:
		return 80
	case untilStart >= 4*time.Hour:
		return 50
	default:
		return 0
	}
}
