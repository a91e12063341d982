package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"freshtrack/internal/domain"
	"freshtrack/internal/repos"
)

type CategoryService struct {
	Cats *repos.CategoryRepo
}

func NewCategoryService(cats *repos.CategoryRepo) *CategoryService {
	return &CategoryService{Cats: cats}
}

func (s *CategoryService) List() ([]domain.Category, error) { return s.Cats.List() }

func (s *CategoryService) Get(id string) (domain.Category, error) {
	c, err := s.Cats.Get(id)
	if repos.IsNotFound(err) {
		return c, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, err
}

type CategoryInput struct {
	Name  string
	Icon  string
	Color string
}

func (s *CategoryService) Create(in CategoryInput) (domain.Category, error) {
	c := domain.Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Icon:      in.Icon,
		Color:     in.Color,
		CreatedAt: repos.Now(),
	}
	if err := s.Cats.Insert(c); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return domain.Category{}, fmt.Errorf("category %q: %w", c.Name, ErrDuplicate)
		}
		return domain.Category{}, err
	}
	return c, nil
}

func (s *CategoryService) Update(id string, in CategoryInput) (domain.Category, error) {
	c, err := s.Get(id)
	if err != nil {
		return c, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Icon = in.Icon
	c.Color = in.Color
	c.UpdatedAt = repos.Now()
	ok, err := s.Cats.Update(c)
	switch {
	case errors.Is(err, repos.ErrConflict):
		return domain.Category{}, fmt.Errorf("category %q: %w", c.Name, ErrDuplicate)
	case err != nil:
		return domain.Category{}, err
	case !ok:
		return domain.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// Delete refuses while any item, of any owner or status, still references the category.
func (s *CategoryService) Delete(id string) error {
	n, err := s.Cats.ItemCount(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %s has %d items: %w", id, n, ErrCategoryInUse)
	}
	ok, err := s.Cats.Delete(id)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("category %s: %w", id, ErrCategoryInUse)
		}
		return err
	}
	if !ok {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}
