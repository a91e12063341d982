package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Icon      string `db:"icon" json:"icon"`
	Color     string `db:"color" json:"color"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

// Item lifecycle statuses.
const (
	StatusActive   = "active"
	StatusConsumed = "consumed"
	StatusExpired  = "expired"
	StatusWasted   = "wasted"
)

type Item struct {
	ID                string              `db:"id" json:"id"`
	OwnerID           string              `db:"owner_id" json:"ownerId"`
	Name              string              `db:"name" json:"name"`
	CategoryID        string              `db:"category_id" json:"categoryId"`
	Quantity          decimal.Decimal     `db:"quantity" json:"quantity"`
	Unit              string              `db:"unit" json:"unit"`
	LowStockThreshold decimal.NullDecimal `db:"low_stock_threshold" json:"lowStockThreshold"`
	ExpiryDate        *Date               `db:"expiry_date" json:"expiryDate,omitempty"`
	Status            string              `db:"status" json:"status"`
	Notes             string              `db:"notes" json:"notes,omitempty"`
	CreatedAt         string              `db:"created_at" json:"createdAt"`
	UpdatedAt         string              `db:"updated_at" json:"updatedAt,omitempty"`
}

// ValidStatus reports whether s is one of the item lifecycle statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusConsumed, StatusExpired, StatusWasted:
		return true
	}
	return false
}

// Notification types.
const (
	NotifExpiryAlert = "expiry_alert"
	NotifLowStock    = "low_stock"
	NotifSystem      = "system"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Notification struct {
	ID            string  `db:"id" json:"id"`
	OwnerID       string  `db:"owner_id" json:"ownerId"`
	Type          string  `db:"type" json:"type"`
	Title         string  `db:"title" json:"title"`
	Message       string  `db:"message" json:"message"`
	Priority      string  `db:"priority" json:"priority"`
	IsRead        bool    `db:"is_read" json:"isRead"`
	RelatedItemID *string `db:"related_item_id" json:"relatedItemId,omitempty"`
	Metadata      JSONMap `db:"metadata" json:"metadata,omitempty"`
	DedupKey      *string `db:"dedup_key" json:"-"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
	ExpiresAt     *string `db:"expires_at" json:"expiresAt,omitempty"`
}

// ValidPriority reports whether p is a known notification priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
