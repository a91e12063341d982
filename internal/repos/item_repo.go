package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"freshtrack/internal/domain"
)

type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

const itemCols = `
    id, owner_id, name, category_id, quantity, unit, low_stock_threshold, expiry_date,
    status, notes, created_at, COALESCE(updated_at,'') AS updated_at`

// ItemFilter narrows List. Empty fields match everything.
type ItemFilter struct {
	Status     string
	CategoryID string
	Q          string
}

// List returns the owner's items, earliest expiry first and undated items last.
func (r *ItemRepo) List(ownerID string, f ItemFilter) ([]domain.Item, error) {
	where := `owner_id = ?`
	args := []any{ownerID}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(notes) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}

	out := []domain.Item{}
	err := r.db.Select(&out, `
  SELECT `+itemCols+`
  FROM items
  WHERE `+where+`
  ORDER BY expiry_date IS NULL, expiry_date, name`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return out, nil
}

// Get returns sql.ErrNoRows when the id is unknown or belongs to another owner.
func (r *ItemRepo) Get(ownerID, id string) (domain.Item, error) {
	var it domain.Item
	err := r.db.Get(&it, `SELECT `+itemCols+` FROM items WHERE id = ? AND owner_id = ?`, id, ownerID)
	return it, err
}

func (r *ItemRepo) Insert(it domain.Item) error {
	_, err := r.db.Exec(`
		INSERT INTO items(id,owner_id,name,category_id,quantity,unit,low_stock_threshold,expiry_date,status,notes,created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, it.ID, it.OwnerID, it.Name, it.CategoryID, it.Quantity, it.Unit, it.LowStockThreshold,
		it.ExpiryDate, it.Status, it.Notes, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func updateItem(tx *sqlx.Tx, it domain.Item) error {
	_, err := tx.Exec(`
		UPDATE items
		SET name = ?, category_id = ?, quantity = ?, unit = ?, low_stock_threshold = ?,
		    expiry_date = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, it.Name, it.CategoryID, it.Quantity, it.Unit, it.LowStockThreshold,
		it.ExpiryDate, it.Status, it.Notes, it.UpdatedAt, it.ID, it.OwnerID)
	return err
}

// Mutate loads one item inside a transaction, lets fn change it, and writes it back.
// An error from fn aborts the transaction and is returned unchanged.
func (r *ItemRepo) Mutate(ownerID, id string, fn func(*domain.Item) error) (domain.Item, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.Item{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var it domain.Item
	if err := tx.Get(&it, `SELECT `+itemCols+` FROM items WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return domain.Item{}, err
	}
	if err := fn(&it); err != nil {
		return domain.Item{}, err
	}
	if it.Quantity.IsNegative() {
		return domain.Item{}, errors.New("item quantity would go negative")
	}
	if err := updateItem(tx, it); err != nil {
		return domain.Item{}, fmt.Errorf("updating item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Item{}, fmt.Errorf("committing item update: %w", err)
	}
	return it, nil
}

// Delete reports false when nothing matched.
func (r *ItemRepo) Delete(ownerID, id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM items WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Active returns every active item across owners; the expire sweep reconciles them.
func (r *ItemRepo) Active() ([]domain.Item, error) {
	out := []domain.Item{}
	err := r.db.Select(&out, `SELECT `+itemCols+` FROM items WHERE status = 'active' ORDER BY owner_id, id`)
	return out, err
}

// SetStatus moves many items to the same status in one transaction.
func (r *ItemRepo) SetStatus(ids []string, status, updatedAt string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`UPDATE items SET status = ?, updated_at = ? WHERE id IN (?)`, status, updatedAt, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("setting item status: %w", err)
	}
	return res.RowsAffected()
}

// Owners lists the ids of users who own at least one item.
func (r *ItemRepo) Owners() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `SELECT DISTINCT owner_id FROM items ORDER BY owner_id`)
	return out, err
}

// CountRow is one group of a GROUP BY count.
type CountRow struct {
	Key   string `db:"k" json:"key"`
	Label string `db:"label" json:"label"`
	Count int    `db:"n" json:"count"`
}

// CountByStatus groups the owner's items by lifecycle status.
func (r *ItemRepo) CountByStatus(ownerID string) ([]CountRow, error) {
	out := []CountRow{}
	err := r.db.Select(&out, `
		SELECT status AS k, status AS label, COUNT(*) AS n
		FROM items WHERE owner_id = ?
		GROUP BY status ORDER BY status`, ownerID)
	return out, err
}

// CountByCategory groups the owner's items by category, with the category name as label.
func (r *ItemRepo) CountByCategory(ownerID string) ([]CountRow, error) {
	out := []CountRow{}
	err := r.db.Select(&out, `
		SELECT i.category_id AS k, c.name AS label, COUNT(*) AS n
		FROM items i JOIN categories c ON c.id = i.category_id
		WHERE i.owner_id = ?
		GROUP BY i.category_id, c.name ORDER BY c.name`, ownerID)
	return out, err
}

// IsNotFound reports whether err came from a lookup that matched no row.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
