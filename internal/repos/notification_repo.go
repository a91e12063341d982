package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"freshtrack/internal/domain"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationCols = `
    id, owner_id, type, title, message, priority, is_read, related_item_id, metadata,
    dedup_key, created_at, expires_at`

// Insert stores n unless another row already carries its dedup key.
// It reports whether a row was written.
func (r *NotificationRepo) Insert(n domain.Notification) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO notifications(id,owner_id,type,title,message,priority,is_read,related_item_id,metadata,dedup_key,created_at,expires_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(dedup_key) DO NOTHING
	`, n.ID, n.OwnerID, n.Type, n.Title, n.Message, n.Priority, n.IsRead, n.RelatedItemID,
		n.Metadata, n.DedupKey, n.CreatedAt, n.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("inserting notification: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// List returns the newest notifications first.
func (r *NotificationRepo) List(ownerID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	where := `owner_id = ?`
	if unreadOnly {
		where += ` AND is_read = 0`
	}
	out := []domain.Notification{}
	err := r.db.Select(&out, `
  SELECT `+notificationCols+`
  FROM notifications
  WHERE `+where+`
  ORDER BY created_at DESC, id
  LIMIT ?`, ownerID, limit)
	return out, err
}

func (r *NotificationRepo) Get(ownerID, id string) (domain.Notification, error) {
	var n domain.Notification
	err := r.db.Get(&n, `SELECT `+notificationCols+` FROM notifications WHERE id = ? AND owner_id = ?`, id, ownerID)
	return n, err
}

func (r *NotificationRepo) UnreadCount(ownerID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM notifications WHERE owner_id = ? AND is_read = 0`, ownerID)
	return n, err
}

// MarkRead reports false when the notification does not exist for the owner.
func (r *NotificationRepo) MarkRead(ownerID, id string) (bool, error) {
	res, err := r.db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *NotificationRepo) MarkAllRead(ownerID string) (int64, error) {
	res, err := r.db.Exec(`UPDATE notifications SET is_read = 1 WHERE owner_id = ? AND is_read = 0`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationRepo) Delete(ownerID, id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *NotificationRepo) Clear(ownerID string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Prune deletes notifications whose expires_at is before now (an RFC3339 UTC timestamp).
func (r *NotificationRepo) Prune(now string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("pruning notifications: %w", err)
	}
	return res.RowsAffected()
}
