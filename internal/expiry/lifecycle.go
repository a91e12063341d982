package expiry

import (
	"time"

	"github.com/shopspring/decimal"

	"freshtrack/internal/domain"
)

// Reconcile derives the lifecycle status after a mutation. Only active items move:
// an empty active item is consumed, a past-date active item is expired.
// consumed, expired and wasted are terminal here; restocking is the caller's job.
func Reconcile(status string, quantity decimal.Decimal, expiryDate *time.Time, today time.Time) string {
	if status != domain.StatusActive {
		return status
	}
	if quantity.IsZero() {
		return domain.StatusConsumed
	}
	if expiryDate != nil && DaysBetween(today, *expiryDate) < 0 {
		return domain.StatusExpired
	}
	return domain.StatusActive
}

// ReconcileItem applies Reconcile to it in place and reports whether the status changed.
func ReconcileItem(it *domain.Item, today time.Time) bool {
	next := Reconcile(it.Status, it.Quantity, it.ExpiryDate.TimePtr(), today)
	if next == it.Status {
		return false
	}
	it.Status = next
	return true
}
