package expiry

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"freshtrack/internal/domain"
)

// ItemView pairs an item with its classification.
type ItemView struct {
	domain.Item
	Expiry   Classification `json:"expiry"`
	LowStock bool           `json:"lowStock"`
}

// Counts holds one counter per expiry bucket plus the low-stock counter.
type Counts struct {
	Expired      int `json:"expired"`
	ExpiresToday int `json:"expiresToday"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Attention    int `json:"attention"`
	Fresh        int `json:"fresh"`
	NoExpiry     int `json:"noExpiry"`
	LowStock     int `json:"lowStock"`
}

type Summary struct {
	OwnerID            string     `json:"ownerId"`
	Today              string     `json:"today"`
	Counts             Counts     `json:"counts"`
	TotalItems         int        `json:"totalItems"`
	TotalTracked       int        `json:"totalTracked"`
	CriticalPercentage int        `json:"criticalPercentage"`
	ExpiringSoon       []ItemView `json:"expiringSoon"`
	Expired            []ItemView `json:"expired"`
	LowStock           []ItemView `json:"lowStock"`
}

// counted reports whether an item takes part in aggregation: it must have stock left and not be written off.
func counted(it domain.Item) bool {
	return it.Quantity.IsPositive() && it.Status != domain.StatusWasted
}

// View classifies a single item.
func (p Policy) View(it domain.Item, today time.Time) ItemView {
	return ItemView{
		Item:     it,
		Expiry:   p.Classify(it.Quantity, it.ExpiryDate.TimePtr(), today),
		LowStock: IsLowStock(it.Quantity, p.LowStockThreshold(it.LowStockThreshold)),
	}
}

// Summarize folds one owner's items into bucket counts and sorted alert lists.
// Items belonging to other owners are ignored.
func (p Policy) Summarize(ownerID string, items []domain.Item, today time.Time) Summary {
	s := Summary{
		OwnerID:      ownerID,
		Today:        StartOfDay(today).Format(domain.DateLayout),
		ExpiringSoon: []ItemView{},
		Expired:      []ItemView{},
		LowStock:     []ItemView{},
	}

	for _, it := range items {
		if it.OwnerID != ownerID || !counted(it) {
			continue
		}
		v := p.View(it, today)
		s.TotalItems++
		if v.Expiry.DaysRemaining != nil {
			s.TotalTracked++
		}

		switch v.Expiry.Status {
		case StatusExpired:
			s.Counts.Expired++
			s.Expired = append(s.Expired, v)
		case StatusExpiresToday:
			s.Counts.ExpiresToday++
		case StatusCritical:
			s.Counts.Critical++
		case StatusWarning:
			s.Counts.Warning++
		case StatusAttention:
			s.Counts.Attention++
		case StatusFresh:
			s.Counts.Fresh++
		case StatusNoExpiry:
			s.Counts.NoExpiry++
		}
		if v.Expiry.DaysRemaining != nil && *v.Expiry.DaysRemaining >= 0 && *v.Expiry.DaysRemaining <= p.SoonWindowDays {
			s.ExpiringSoon = append(s.ExpiringSoon, v)
		}
		if v.LowStock {
			s.Counts.LowStock++
			s.LowStock = append(s.LowStock, v)
		}
	}

	s.CriticalPercentage = percent(s.Counts.Critical, s.TotalTracked)
	SortByExpiryAsc(s.ExpiringSoon)
	SortByExpiryDesc(s.Expired)
	sortByQuantity(s.LowStock)
	return s
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// SortByExpiryAsc orders earliest expiry first. Items without a date go last.
func SortByExpiryAsc(vs []ItemView) {
	sort.SliceStable(vs, func(i, j int) bool {
		return expiryLess(vs[i], vs[j], false)
	})
}

// SortByExpiryDesc orders the most recent expiry first. Items without a date go last.
func SortByExpiryDesc(vs []ItemView) {
	sort.SliceStable(vs, func(i, j int) bool {
		return expiryLess(vs[i], vs[j], true)
	})
}

func expiryLess(a, b ItemView, desc bool) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
		return a.Name < b.Name
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	}
	at, bt := a.ExpiryDate.Time(), b.ExpiryDate.Time()
	if at.Equal(bt) {
		return a.Name < b.Name
	}
	if desc {
		return at.After(bt)
	}
	return at.Before(bt)
}

func sortByQuantity(vs []ItemView) {
	sort.SliceStable(vs, func(i, j int) bool {
		if c := vs[i].Quantity.Cmp(vs[j].Quantity); c != 0 {
			return c < 0
		}
		return vs[i].Name < vs[j].Name
	})
}

// Filter keeps the counted items of ownerID that satisfy keep, classified and unsorted.
func (p Policy) Filter(ownerID string, items []domain.Item, today time.Time, keep func(ItemView) bool) []ItemView {
	out := []ItemView{}
	for _, it := range items {
		if it.OwnerID != ownerID || !counted(it) {
			continue
		}
		if v := p.View(it, today); keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// TotalQuantity sums quantities, used by the inventory stats endpoint.
func TotalQuantity(items []domain.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Quantity)
	}
	return sum
}
