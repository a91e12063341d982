// Package expiry classifies grocery items by expiry date and stock level and folds
// the results into per-owner summaries and notification drafts.
//
// Everything here is pure: no I/O, no shared state. Callers pass "today" explicitly.
package expiry

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the expiry bucket of an item.
type Status string

const (
	StatusConsumed     Status = "consumed"
	StatusNoExpiry     Status = "no_expiry"
	StatusExpired      Status = "expired"
	StatusExpiresToday Status = "expires_today"
	StatusCritical     Status = "critical"
	StatusWarning      Status = "warning"
	StatusAttention    Status = "attention"
	StatusFresh        Status = "fresh"
)

// Urgency is the coarse tier used for alert priority.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

type Classification struct {
	Status        Status  `json:"status"`
	DaysRemaining *int    `json:"daysRemaining"`
	Urgency       Urgency `json:"urgency"`
}

// Classify maps a quantity and optional expiry date to an expiry bucket.
func (p Policy) Classify(quantity decimal.Decimal, expiryDate *time.Time, today time.Time) Classification {
	if quantity.IsZero() {
		return Classification{Status: StatusConsumed, Urgency: UrgencyNone}
	}
	if expiryDate == nil {
		return Classification{Status: StatusNoExpiry, Urgency: UrgencyNone}
	}

	days := DaysBetween(today, *expiryDate)
	c := Classification{DaysRemaining: &days}
	switch {
	case days < 0:
		c.Status, c.Urgency = StatusExpired, UrgencyCritical
	case days == 0:
		c.Status, c.Urgency = StatusExpiresToday, UrgencyCritical
	case days <= p.CriticalDays:
		c.Status, c.Urgency = StatusCritical, UrgencyCritical
	case days <= p.WarningDays:
		c.Status, c.Urgency = StatusWarning, UrgencyWarning
	case days <= p.AttentionDays:
		c.Status, c.Urgency = StatusAttention, UrgencyNormal
	default:
		c.Status, c.Urgency = StatusFresh, UrgencyNone
	}
	return c
}

// IsLowStock reports quantity <= threshold. Equality is low stock.
func IsLowStock(quantity, threshold decimal.Decimal) bool {
	return quantity.LessThanOrEqual(threshold)
}

// LowStockThreshold returns the item-level threshold when set, else the policy default.
func (p Policy) LowStockThreshold(threshold decimal.NullDecimal) decimal.Decimal {
	if threshold.Valid {
		return threshold.Decimal
	}
	return p.DefaultLowStock
}
