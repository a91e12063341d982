package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freshtrack/internal/domain"
	"freshtrack/internal/expiry"
	"freshtrack/internal/repos"
)

// InventoryService owns every item mutation. Each path ends with expiry.ReconcileItem
// so the stored status always agrees with quantity and expiry date.
type InventoryService struct {
	Items  *repos.ItemRepo
	Cats   *repos.CategoryRepo
	Policy expiry.Policy
	Clock  expiry.Clock
}

func NewInventoryService(items *repos.ItemRepo, cats *repos.CategoryRepo, policy expiry.Policy, clock expiry.Clock) *InventoryService {
	return &InventoryService{Items: items, Cats: cats, Policy: policy, Clock: clock}
}

// ItemInput carries the user-editable fields of an item.
type ItemInput struct {
	Name              string
	CategoryID        string
	Quantity          decimal.Decimal
	Unit              string
	LowStockThreshold decimal.NullDecimal
	ExpiryDate        *domain.Date
	Notes             string
}

func (s *InventoryService) today() time.Time { return expiry.Today(s.Clock) }

func (s *InventoryService) checkInput(in ItemInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	case in.Quantity.IsNegative():
		return fmt.Errorf("quantity must be >= 0: %w", ErrInvalidInput)
	case in.LowStockThreshold.Valid && in.LowStockThreshold.Decimal.IsNegative():
		return fmt.Errorf("lowStockThreshold must be >= 0: %w", ErrInvalidInput)
	}
	if _, err := s.Cats.Get(in.CategoryID); err != nil {
		if repos.IsNotFound(err) {
			return fmt.Errorf("unknown category %q: %w", in.CategoryID, ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (s *InventoryService) List(ownerID string, f repos.ItemFilter) ([]expiry.ItemView, error) {
	items, err := s.Items.List(ownerID, f)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := make([]expiry.ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, s.Policy.View(it, today))
	}
	return out, nil
}

func (s *InventoryService) Get(ownerID, id string) (expiry.ItemView, error) {
	it, err := s.Items.Get(ownerID, id)
	if err != nil {
		return expiry.ItemView{}, s.notFound(id, err)
	}
	return s.Policy.View(it, s.today()), nil
}

func (s *InventoryService) Create(ownerID string, in ItemInput) (expiry.ItemView, error) {
	if err := s.checkInput(in); err != nil {
		return expiry.ItemView{}, err
	}
	it := domain.Item{
		ID:                uuid.NewString(),
		OwnerID:           ownerID,
		Name:              strings.TrimSpace(in.Name),
		CategoryID:        in.CategoryID,
		Quantity:          in.Quantity,
		Unit:              in.Unit,
		LowStockThreshold: in.LowStockThreshold,
		ExpiryDate:        in.ExpiryDate,
		Status:            domain.StatusActive,
		Notes:             in.Notes,
		CreatedAt:         repos.Now(),
	}
	today := s.today()
	expiry.ReconcileItem(&it, today)
	if err := s.Items.Insert(it); err != nil {
		return expiry.ItemView{}, err
	}
	return s.Policy.View(it, today), nil
}

// Update replaces the editable fields. A changed quantity or expiry date brings a
// non-wasted item back to active before reconciling.
func (s *InventoryService) Update(ownerID, id string, in ItemInput) (expiry.ItemView, error) {
	if err := s.checkInput(in); err != nil {
		return expiry.ItemView{}, err
	}
	today := s.today()
	it, err := s.Items.Mutate(ownerID, id, func(it *domain.Item) error {
		changed := !it.Quantity.Equal(in.Quantity) || !sameDate(it.ExpiryDate, in.ExpiryDate)
		it.Name = strings.TrimSpace(in.Name)
		it.CategoryID = in.CategoryID
		it.Quantity = in.Quantity
		it.Unit = in.Unit
		it.LowStockThreshold = in.LowStockThreshold
		it.ExpiryDate = in.ExpiryDate
		it.Notes = in.Notes
		it.UpdatedAt = repos.Now()
		if changed && it.Status != domain.StatusWasted {
			it.Status = domain.StatusActive
		}
		expiry.ReconcileItem(it, today)
		return nil
	})
	if err != nil {
		return expiry.ItemView{}, s.notFound(id, err)
	}
	return s.Policy.View(it, today), nil
}

// Consume takes amount out of stock. Taking more than is left fails with
// ErrInsufficientQuantity and leaves the item untouched.
func (s *InventoryService) Consume(ownerID, id string, amount decimal.Decimal) (expiry.ItemView, error) {
	if !amount.IsPositive() {
		return expiry.ItemView{}, fmt.Errorf("amount must be > 0: %w", ErrInvalidInput)
	}
	today := s.today()
	it, err := s.Items.Mutate(ownerID, id, func(it *domain.Item) error {
		if amount.GreaterThan(it.Quantity) {
			return fmt.Errorf("consume %s of %s: %w", amount, it.Quantity, ErrInsufficientQuantity)
		}
		it.Quantity = it.Quantity.Sub(amount)
		it.UpdatedAt = repos.Now()
		expiry.ReconcileItem(it, today)
		return nil
	})
	if err != nil {
		return expiry.ItemView{}, s.notFound(id, err)
	}
	return s.Policy.View(it, today), nil
}

// Restock adds quantity, optionally replaces the expiry date, and reactivates the item.
// A past expiry date yields expired straight away.
func (s *InventoryService) Restock(ownerID, id string, quantity decimal.Decimal, expiryDate *domain.Date) (expiry.ItemView, error) {
	if !quantity.IsPositive() {
		return expiry.ItemView{}, fmt.Errorf("quantity must be > 0: %w", ErrInvalidInput)
	}
	today := s.today()
	it, err := s.Items.Mutate(ownerID, id, func(it *domain.Item) error {
		it.Quantity = it.Quantity.Add(quantity)
		if expiryDate != nil {
			it.ExpiryDate = expiryDate
		}
		it.Status = domain.StatusActive
		it.UpdatedAt = repos.Now()
		expiry.ReconcileItem(it, today)
		return nil
	})
	if err != nil {
		return expiry.ItemView{}, s.notFound(id, err)
	}
	return s.Policy.View(it, today), nil
}

// Waste writes the item off. Wasted items drop out of every aggregate.
func (s *InventoryService) Waste(ownerID, id string) (expiry.ItemView, error) {
	today := s.today()
	it, err := s.Items.Mutate(ownerID, id, func(it *domain.Item) error {
		it.Status = domain.StatusWasted
		it.UpdatedAt = repos.Now()
		return nil
	})
	if err != nil {
		return expiry.ItemView{}, s.notFound(id, err)
	}
	return s.Policy.View(it, today), nil
}

func (s *InventoryService) Delete(ownerID, id string) error {
	ok, err := s.Items.Delete(ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// LowStock lists the owner's counted items at or below their threshold, smallest quantity first.
func (s *InventoryService) LowStock(ownerID string) ([]expiry.ItemView, error) {
	items, err := s.Items.List(ownerID, repos.ItemFilter{})
	if err != nil {
		return nil, err
	}
	return s.Policy.Summarize(ownerID, items, s.today()).LowStock, nil
}

// Stats is the inventory overview.
type Stats struct {
	TotalItems    int              `json:"totalItems"`
	TotalQuantity decimal.Decimal  `json:"totalQuantity"`
	LowStock      int              `json:"lowStock"`
	ByStatus      []repos.CountRow `json:"byStatus"`
	ByCategory    []repos.CountRow `json:"byCategory"`
}

func (s *InventoryService) Stats(ownerID string) (Stats, error) {
	items, err := s.Items.List(ownerID, repos.ItemFilter{})
	if err != nil {
		return Stats{}, err
	}
	byStatus, err := s.Items.CountByStatus(ownerID)
	if err != nil {
		return Stats{}, err
	}
	byCat, err := s.Items.CountByCategory(ownerID)
	if err != nil {
		return Stats{}, err
	}
	sum := s.Policy.Summarize(ownerID, items, s.today())
	return Stats{
		TotalItems:    len(items),
		TotalQuantity: expiry.TotalQuantity(items),
		LowStock:      sum.Counts.LowStock,
		ByStatus:      byStatus,
		ByCategory:    byCat,
	}, nil
}

// SweepExpired reconciles every active item against today and persists the
// status changes. It returns how many items moved.
func (s *InventoryService) SweepExpired() (int, error) {
	items, err := s.Items.Active()
	if err != nil {
		return 0, err
	}
	today := s.today()
	moved := map[string][]string{}
	for i := range items {
		if expiry.ReconcileItem(&items[i], today) {
			moved[items[i].Status] = append(moved[items[i].Status], items[i].ID)
		}
	}
	total := 0
	now := repos.Now()
	for status, ids := range moved {
		n, err := s.Items.SetStatus(ids, status, now)
		if err != nil {
			return total, err
		}
		total += int(n)
	}
	return total, nil
}

func (s *InventoryService) notFound(id string, err error) error {
	if repos.IsNotFound(err) {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return err
}

func sameDate(a, b *domain.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
