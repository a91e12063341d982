package expiry

import (
	"fmt"
	"time"

	"freshtrack/internal/domain"
)

// Draft is an unpersisted notification. The store assigns id and timestamps and
// is responsible for suppressing duplicates.
type Draft struct {
	OwnerID       string         `json:"ownerId"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Priority      string         `json:"priority"`
	RelatedItemID string         `json:"relatedItemId"`
	Metadata      map[string]any `json:"metadata"`
}

// Synthesize produces one expiry alert per counted item that expires today or later and is
// either critical or inside the notify window. Expired items are not alerted here; their
// status change is the signal.
func (p Policy) Synthesize(items []domain.Item, today time.Time) []Draft {
	var out []Draft
	for _, it := range items {
		if !counted(it) || it.ExpiryDate == nil {
			continue
		}
		c := p.Classify(it.Quantity, it.ExpiryDate.TimePtr(), today)
		days := *c.DaysRemaining
		if days < 0 {
			continue
		}
		if c.Urgency != UrgencyCritical && days > p.NotifyWindowDays {
			continue
		}
		out = append(out, expiryDraft(it, days))
	}
	return out
}

func expiryDraft(it domain.Item, days int) Draft {
	d := Draft{
		OwnerID:       it.OwnerID,
		Type:          domain.NotifExpiryAlert,
		RelatedItemID: it.ID,
		Metadata: map[string]any{
			"itemName":      it.Name,
			"expiryDate":    it.ExpiryDate.String(),
			"daysRemaining": days,
		},
	}
	switch days {
	case 0:
		d.Priority = domain.PriorityUrgent
		d.Title = it.Name + " expires today"
		d.Message = fmt.Sprintf("Your %s expires today. Use it before it goes to waste.", it.Name)
	case 1:
		d.Priority = domain.PriorityHigh
		d.Title = it.Name + " expires tomorrow"
		d.Message = fmt.Sprintf("Your %s expires tomorrow.", it.Name)
	default:
		d.Priority = domain.PriorityMedium
		d.Title = it.Name + " expiring soon"
		d.Message = fmt.Sprintf("Your %s expires in %d days.", it.Name, days)
	}
	return d
}

// SynthesizeLowStock produces one low-stock alert per counted item at or below its threshold.
func (p Policy) SynthesizeLowStock(items []domain.Item) []Draft {
	var out []Draft
	for _, it := range items {
		if !counted(it) {
			continue
		}
		threshold := p.LowStockThreshold(it.LowStockThreshold)
		if !IsLowStock(it.Quantity, threshold) {
			continue
		}
		qty := it.Quantity.String()
		if it.Unit != "" {
			qty += " " + it.Unit
		}
		out = append(out, Draft{
			OwnerID:       it.OwnerID,
			Type:          domain.NotifLowStock,
			Title:         "Running low on " + it.Name,
			Message:       fmt.Sprintf("Only %s of %s left.", qty, it.Name),
			Priority:      domain.PriorityMedium,
			RelatedItemID: it.ID,
			Metadata: map[string]any{
				"itemName":  it.Name,
				"quantity":  it.Quantity.String(),
				"threshold": threshold.String(),
			},
		})
	}
	return out
}
