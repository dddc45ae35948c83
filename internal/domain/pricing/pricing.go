package pricing

import "math"

// ===============================
// Pricing Engine
// ===============================

// Quote is the ephemeral output of the engine; it is never persisted
// as-is, its fields are copied onto the booking row.
type Quote struct {
	PricePerSession float64 `json:"price_per_session"`
	DiscountPercent float64 `json:"discount_percent"`
	Subtotal        float64 `json:"subtotal"`
	DiscountAmount  float64 `json:"discount_amount"`
	Total           float64 `json:"total"`
}

// DiscountPercentFor returns the volume tier for a session count.
// Tiers are flat cliffs, not blended.
func DiscountPercentFor(sessionCount int) float64 {
	switch {
	case sessionCount >= 20:
		return 20
	case sessionCount >= 10:
		return 15
	case sessionCount >= 5:
		return 10
	default:
		return 0
	}
}

// ForSessions computes a quote from a base hourly rate, a per-session
// duration and a session count. Each monetary field is rounded to the
// cent independently; the total is derived from the rounded subtotal
// and discount so that total == subtotal - discount holds exactly.
func ForSessions(baseHourlyRate float64, durationMin, sessionCount int) Quote {
	pricePerSession := round2(baseHourlyRate * float64(durationMin) / 60)
	discountPercent := DiscountPercentFor(sessionCount)

	subtotal := round2(pricePerSession * float64(sessionCount))
	discountAmount := round2(subtotal * discountPercent / 100)
	total := round2(subtotal - discountAmount)

	return Quote{
		PricePerSession: pricePerSession,
		DiscountPercent: discountPercent,
		Subtotal:        subtotal,
		DiscountAmount:  discountAmount,
		Total:           total,
	}
}

// Round2 rounds a monetary amount half away from zero to 2 decimals.
func Round2(v float64) float64 {
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
