package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"freshtrack/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, name, password_hash, role, created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id,email,name,password_hash,role,created_at)
		VALUES(?,?,?,?,?,?)
	`, u.ID, u.Email, u.Name, u.Hash, u.Role, u.CreatedAt)
	if isUnique(err) {
		return fmt.Errorf("user %q: %w", u.Email, ErrConflict)
	}
	return err
}

// RevokeToken records a token id until it would have expired anyway.
func (r *UserRepo) RevokeToken(jti, expiresAt string) error {
	if _, err := r.DB.Exec(`INSERT OR IGNORE INTO revoked_tokens(jti,expires_at) VALUES(?,?)`, jti, expiresAt); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	// Opportunistically clean up revocations that can no longer matter
	_, _ = r.DB.Exec(`DELETE FROM revoked_tokens WHERE expires_at < ?`, Now())
	return nil
}

func (r *UserRepo) IsRevoked(jti string) (bool, error) {
	var n int
	if err := r.DB.Get(&n, `SELECT COUNT(*) FROM revoked_tokens WHERE jti=?`, jti); err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return n > 0, nil
}
