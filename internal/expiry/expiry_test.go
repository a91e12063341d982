package expiry_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshtrack/internal/domain"
	"freshtrack/internal/expiry"
)

var today = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

func inDays(n int) *time.Time {
	t := expiry.StartOfDay(today).AddDate(0, 0, n)
	return &t
}

func dateIn(n int) *domain.Date {
	d := domain.DateOf(*inDays(n))
	return &d
}

func item(id string, qty int64, expiresIn *int) domain.Item {
	it := domain.Item{
		ID:       id,
		OwnerID:  "owner-1",
		Name:     id,
		Quantity: decimal.NewFromInt(qty),
		Status:   domain.StatusActive,
	}
	if expiresIn != nil {
		it.ExpiryDate = dateIn(*expiresIn)
	}
	return it
}

func days(n int) *int { return &n }

func TestDaysBetween(t *testing.T) {
	morning := time.Date(2025, time.March, 10, 0, 5, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same instant", today, today, 0},
		{"later same day", morning, morning.Add(23 * time.Hour), 0},
		{"23 hours ahead across midnight", today, today.Add(23 * time.Hour), 1},
		{"tomorrow", today, today.AddDate(0, 0, 1), 1},
		{"yesterday", today, today.AddDate(0, 0, -1), -1},
		{"a week back", today, today.AddDate(0, 0, -7), -7},
		{"leap day span", time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expiry.DaysBetween(tt.a, tt.b))
		})
	}
}

func TestDaysBetweenIgnoresZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	lateEvening := time.Date(2025, time.March, 10, 23, 0, 0, 0, loc)
	assert.Equal(t, 0, expiry.DaysBetween(lateEvening, *inDays(0)))
}

func TestClassifyBoundaries(t *testing.T) {
	p := expiry.DefaultPolicy()
	tests := []struct {
		days    int
		status  expiry.Status
		urgency expiry.Urgency
	}{
		{-7, expiry.StatusExpired, expiry.UrgencyCritical},
		{-1, expiry.StatusExpired, expiry.UrgencyCritical},
		{0, expiry.StatusExpiresToday, expiry.UrgencyCritical},
		{1, expiry.StatusCritical, expiry.UrgencyCritical},
		{2, expiry.StatusCritical, expiry.UrgencyCritical},
		{3, expiry.StatusWarning, expiry.UrgencyWarning},
		{5, expiry.StatusWarning, expiry.UrgencyWarning},
		{6, expiry.StatusAttention, expiry.UrgencyNormal},
		{10, expiry.StatusAttention, expiry.UrgencyNormal},
		{11, expiry.StatusFresh, expiry.UrgencyNone},
		{90, expiry.StatusFresh, expiry.UrgencyNone},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%+d days", tt.days), func(t *testing.T) {
			c := p.Classify(decimal.NewFromInt(1), inDays(tt.days), today)
			assert.Equal(t, tt.status, c.Status)
			assert.Equal(t, tt.urgency, c.Urgency)
			require.NotNil(t, c.DaysRemaining)
			assert.Equal(t, tt.days, *c.DaysRemaining)
		})
	}
}

func TestClassifyTodayAnyTimeOfDay(t *testing.T) {
	p := expiry.DefaultPolicy()
	late := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	c := p.Classify(decimal.NewFromInt(2), &late, today)
	require.NotNil(t, c.DaysRemaining)
	assert.Equal(t, 0, *c.DaysRemaining)
	assert.Equal(t, expiry.StatusExpiresToday, c.Status)
}

func TestClassifyZeroQuantityIsConsumed(t *testing.T) {
	p := expiry.DefaultPolicy()
	for _, exp := range []*time.Time{nil, inDays(-3), inDays(0), inDays(30)} {
		c := p.Classify(decimal.Zero, exp, today)
		assert.Equal(t, expiry.StatusConsumed, c.Status)
		assert.Nil(t, c.DaysRemaining)
	}
}

func TestClassifyNoExpiry(t *testing.T) {
	c := expiry.DefaultPolicy().Classify(decimal.NewFromInt(3), nil, today)
	assert.Equal(t, expiry.StatusNoExpiry, c.Status)
	assert.Equal(t, expiry.UrgencyNone, c.Urgency)
	assert.Nil(t, c.DaysRemaining)
}

func TestClassifyCustomPolicy(t *testing.T) {
	p := expiry.DefaultPolicy()
	p.CriticalDays, p.WarningDays, p.AttentionDays = 1, 3, 7
	assert.Equal(t, expiry.StatusWarning, p.Classify(decimal.NewFromInt(1), inDays(2), today).Status)
	assert.Equal(t, expiry.StatusFresh, p.Classify(decimal.NewFromInt(1), inDays(8), today).Status)
}

func TestIsLowStock(t *testing.T) {
	five := decimal.NewFromInt(5)
	assert.True(t, expiry.IsLowStock(decimal.NewFromInt(4), five))
	assert.True(t, expiry.IsLowStock(five, five))
	assert.False(t, expiry.IsLowStock(decimal.RequireFromString("5.01"), five))

	p := expiry.DefaultPolicy()
	assert.True(t, p.LowStockThreshold(decimal.NullDecimal{}).Equal(five))
	custom := decimal.NullDecimal{Decimal: decimal.NewFromInt(1), Valid: true}
	assert.True(t, p.LowStockThreshold(custom).Equal(decimal.NewFromInt(1)))
}

func TestSummarizeNoExpiryDates(t *testing.T) {
	items := []domain.Item{item("rice", 10, nil), item("salt", 20, nil), item("flour", 8, nil)}
	s := expiry.DefaultPolicy().Summarize("owner-1", items, today)
	assert.Equal(t, 3, s.Counts.NoExpiry)
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 0, s.TotalTracked)
	assert.Equal(t, 0, s.CriticalPercentage)
}

func TestSummarizeEmpty(t *testing.T) {
	s := expiry.DefaultPolicy().Summarize("owner-1", nil, today)
	assert.Equal(t, expiry.Counts{}, s.Counts)
	assert.Equal(t, 0, s.CriticalPercentage)
	assert.NotNil(t, s.ExpiringSoon)
	assert.NotNil(t, s.Expired)
}

func TestSummarizeCriticalPercentage(t *testing.T) {
	items := []domain.Item{
		item("milk", 10, days(1)),
		item("bread", 10, days(4)),
		item("cheese", 10, days(8)),
		item("jam", 10, days(40)),
		item("pasta", 10, nil),
	}
	s := expiry.DefaultPolicy().Summarize("owner-1", items, today)
	assert.Equal(t, 4, s.TotalTracked)
	assert.Equal(t, 5, s.TotalItems)
	assert.Equal(t, 1, s.Counts.Critical)
	assert.Equal(t, 25, s.CriticalPercentage)
}

func TestSummarizeExcludesConsumedWastedAndOtherOwners(t *testing.T) {
	empty := item("eggs", 0, days(1))
	wasted := item("fish", 2, days(-1))
	wasted.Status = domain.StatusWasted
	foreign := item("yogurt", 1, days(1))
	foreign.OwnerID = "owner-2"

	s := expiry.DefaultPolicy().Summarize("owner-1", []domain.Item{empty, wasted, foreign}, today)
	assert.Equal(t, 0, s.TotalItems)
	assert.Equal(t, expiry.Counts{}, s.Counts)
}

func TestSummarizeOrdering(t *testing.T) {
	items := []domain.Item{
		item("in5", 10, days(5)),
		item("in1", 10, days(1)),
		item("in3", 10, days(3)),
		item("ago7", 10, days(-7)),
		item("ago2", 10, days(-2)),
	}
	s := expiry.DefaultPolicy().Summarize("owner-1", items, today)

	var soon, expired []string
	for _, v := range s.ExpiringSoon {
		soon = append(soon, v.Name)
	}
	for _, v := range s.Expired {
		expired = append(expired, v.Name)
	}
	assert.Equal(t, []string{"in1", "in3", "in5"}, soon)
	assert.Equal(t, []string{"ago2", "ago7"}, expired)
	assert.Equal(t, 2, s.Counts.Expired)
}

func TestSummarizeLowStock(t *testing.T) {
	lowCustom := item("butter", 2, nil)
	lowCustom.LowStockThreshold = decimal.NullDecimal{Decimal: decimal.NewFromInt(2), Valid: true}
	items := []domain.Item{item("apples", 5, nil), item("pears", 6, nil), lowCustom}
	s := expiry.DefaultPolicy().Summarize("owner-1", items, today)
	assert.Equal(t, 2, s.Counts.LowStock)
	require.Len(t, s.LowStock, 2)
	assert.Equal(t, "butter", s.LowStock[0].Name)
}

func TestSummarizeIdempotent(t *testing.T) {
	items := []domain.Item{item("a", 1, days(0)), item("b", 3, days(-1)), item("c", 9, days(12))}
	p := expiry.DefaultPolicy()
	assert.Equal(t, p.Summarize("owner-1", items, today), p.Summarize("owner-1", items, today))
}

func TestSynthesizeTomorrow(t *testing.T) {
	drafts := expiry.DefaultPolicy().Synthesize([]domain.Item{item("Milk", 1, days(1))}, today)
	require.Len(t, drafts, 1)
	d := drafts[0]
	assert.Equal(t, domain.PriorityHigh, d.Priority)
	assert.Contains(t, d.Title, "tomorrow")
	assert.Contains(t, d.Message, "Milk")
	assert.Equal(t, "Milk", d.RelatedItemID)
	assert.Equal(t, 1, d.Metadata["daysRemaining"])
	assert.Equal(t, "2025-03-11", d.Metadata["expiryDate"])
}

func TestSynthesizeWindow(t *testing.T) {
	items := []domain.Item{
		item("today", 1, days(0)),
		item("in2", 1, days(2)),
		item("in3", 1, days(3)),
		item("in4", 1, days(4)),
		item("gone", 1, days(-1)),
		item("none", 1, nil),
		item("empty", 0, days(1)),
	}
	drafts := expiry.DefaultPolicy().Synthesize(items, today)
	require.Len(t, drafts, 3)

	byItem := map[string]expiry.Draft{}
	for _, d := range drafts {
		byItem[d.RelatedItemID] = d
	}
	assert.Equal(t, domain.PriorityUrgent, byItem["today"].Priority)
	assert.Contains(t, byItem["today"].Title, "today")
	assert.Equal(t, domain.PriorityMedium, byItem["in3"].Priority)
	assert.Contains(t, byItem["in3"].Message, "3 days")
	_, ok := byItem["in4"]
	assert.False(t, ok)
}

func TestSynthesizeCriticalBeyondWindow(t *testing.T) {
	p := expiry.DefaultPolicy()
	p.NotifyWindowDays = 0
	drafts := p.Synthesize([]domain.Item{item("in2", 1, days(2)), item("in3", 1, days(3))}, today)
	require.Len(t, drafts, 1)
	assert.Equal(t, "in2", drafts[0].RelatedItemID)
}

func TestSynthesizeLowStock(t *testing.T) {
	drafts := expiry.DefaultPolicy().SynthesizeLowStock([]domain.Item{item("oil", 1, nil), item("tea", 50, nil)})
	require.Len(t, drafts, 1)
	assert.Equal(t, domain.NotifLowStock, drafts[0].Type)
	assert.Equal(t, "oil", drafts[0].RelatedItemID)
}

func TestReconcile(t *testing.T) {
	one := decimal.NewFromInt(1)
	tests := []struct {
		name   string
		status string
		qty    decimal.Decimal
		exp    *time.Time
		want   string
	}{
		{"active stays active", domain.StatusActive, one, inDays(3), domain.StatusActive},
		{"empty active is consumed", domain.StatusActive, decimal.Zero, inDays(3), domain.StatusConsumed},
		{"past date is expired", domain.StatusActive, one, inDays(-1), domain.StatusExpired},
		{"today is not expired", domain.StatusActive, one, inDays(0), domain.StatusActive},
		{"consumed is terminal", domain.StatusConsumed, one, inDays(5), domain.StatusConsumed},
		{"wasted is terminal", domain.StatusWasted, decimal.Zero, nil, domain.StatusWasted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expiry.Reconcile(tt.status, tt.qty, tt.exp, today)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, expiry.Reconcile(got, tt.qty, tt.exp, today))
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, expiry.DefaultPolicy().Validate())

	p := expiry.DefaultPolicy()
	p.WarningDays = p.CriticalDays
	assert.ErrorIs(t, p.Validate(), expiry.ErrInvalidPolicy)

	p = expiry.DefaultPolicy()
	p.RetentionDays = 0
	assert.ErrorIs(t, p.Validate(), expiry.ErrInvalidPolicy)
}
