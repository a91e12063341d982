package repos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"freshtrack/internal/domain"
)

// ErrConflict is returned when a write hits a UNIQUE constraint.
var ErrConflict = errors.New("unique constraint violated")

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, icon, color, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	return c, err
}

func (r *CategoryRepo) Insert(c domain.Category) error {
	_, err := r.db.Exec(`
		INSERT INTO categories(id,name,icon,color,created_at)
		VALUES(?,?,?,?,?)
	`, c.ID, c.Name, c.Icon, c.Color, c.CreatedAt)
	if isUnique(err) {
		return fmt.Errorf("category %q: %w", c.Name, ErrConflict)
	}
	return err
}

// Update reports false when no category has the id.
func (r *CategoryRepo) Update(c domain.Category) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE categories SET name = ?, icon = ?, color = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Icon, c.Color, c.UpdatedAt, c.ID)
	if isUnique(err) {
		return false, fmt.Errorf("category %q: %w", c.Name, ErrConflict)
	}
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete reports false when no category has the id. Referenced categories fail on the foreign key.
func (r *CategoryRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ItemCount counts items of any owner and status that reference the category.
func (r *CategoryRepo) ItemCount(id string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM items WHERE category_id = ?`, id)
	return n, err
}
