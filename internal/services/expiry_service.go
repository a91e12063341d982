package services

import (
	"freshtrack/internal/expiry"
	"freshtrack/internal/repos"
)

// ExpiryService serves read-only expiry views. It loads one owner's snapshot per call
// and hands it to the engine.
type ExpiryService struct {
	Items  *repos.ItemRepo
	Policy expiry.Policy
	Clock  expiry.Clock
}

func NewExpiryService(items *repos.ItemRepo, policy expiry.Policy, clock expiry.Clock) *ExpiryService {
	return &ExpiryService{Items: items, Policy: policy, Clock: clock}
}

func (s *ExpiryService) Summary(ownerID string) (expiry.Summary, error) {
	items, err := s.Items.List(ownerID, repos.ItemFilter{})
	if err != nil {
		return expiry.Summary{}, err
	}
	return s.Policy.Summarize(ownerID, items, expiry.Today(s.Clock)), nil
}

// Soon lists items expiring within the soon window (today included), earliest first.
// Unlike the summary list, days may be overridden per call; days < 0 means the policy window.
func (s *ExpiryService) Soon(ownerID string, days int) ([]expiry.ItemView, error) {
	if days < 0 {
		days = s.Policy.SoonWindowDays
	}
	items, err := s.Items.List(ownerID, repos.ItemFilter{})
	if err != nil {
		return nil, err
	}
	out := s.Policy.Filter(ownerID, items, expiry.Today(s.Clock), func(v expiry.ItemView) bool {
		d := v.Expiry.DaysRemaining
		return d != nil && *d >= 0 && *d <= days
	})
	expiry.SortByExpiryAsc(out)
	return out, nil
}

// Expired lists items past their date that still have stock, most recent first.
func (s *ExpiryService) Expired(ownerID string) ([]expiry.ItemView, error) {
	items, err := s.Items.List(ownerID, repos.ItemFilter{})
	if err != nil {
		return nil, err
	}
	out := s.Policy.Filter(ownerID, items, expiry.Today(s.Clock), func(v expiry.ItemView) bool {
		return v.Expiry.Status == expiry.StatusExpired
	})
	expiry.SortByExpiryDesc(out)
	return out, nil
}
