package repos

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"freshtrack/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection: sqlite has a single writer and :memory: databases are per-connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	for _, p := range []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	// Categories and users are idempotent; safe to run every start
	if err := seedCategories(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding categories: %w", err)
	}
	if err := seedUsers(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding users: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Users & revoked bearer tokens
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS revoked_tokens(
  jti TEXT PRIMARY KEY,
  expires_at TEXT NOT NULL
);

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  icon TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Items; quantities are decimal strings
CREATE TABLE IF NOT EXISTS items(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  quantity TEXT NOT NULL CHECK (CAST(quantity AS REAL) >= 0),
  unit TEXT NOT NULL DEFAULT '',
  low_stock_threshold TEXT,
  expiry_date TEXT,
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','consumed','expired','wasted')),
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_items_owner        ON items(owner_id);
CREATE INDEX IF NOT EXISTS idx_items_owner_status ON items(owner_id, status);
CREATE INDEX IF NOT EXISTS idx_items_category     ON items(category_id);
CREATE INDEX IF NOT EXISTS idx_items_expiry       ON items(expiry_date);

-- Notifications
CREATE TABLE IF NOT EXISTS notifications(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('expiry_alert','low_stock','system')),
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  priority TEXT NOT NULL CHECK (priority IN ('low','medium','high','urgent')),
  is_read INTEGER NOT NULL DEFAULT 0,
  related_item_id TEXT REFERENCES items(id) ON DELETE SET NULL,
  metadata TEXT,
  dedup_key TEXT UNIQUE,
  created_at TEXT NOT NULL,
  expires_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_notifications_owner   ON notifications(owner_id, is_read);
CREATE INDEX IF NOT EXISTS idx_notifications_expires ON notifications(expires_at);
`
	_, err := db.Exec(schema)
	return err
}

// DefaultCategories are inserted on first start.
var DefaultCategories = []domain.Category{
	{ID: "produce", Name: "Fruits & Vegetables", Icon: "🥕", Color: "#4CAF50"},
	{ID: "dairy", Name: "Dairy", Icon: "🥛", Color: "#2196F3"},
	{ID: "meat", Name: "Meat & Fish", Icon: "🥩", Color: "#F44336"},
	{ID: "bakery", Name: "Bakery", Icon: "🍞", Color: "#FF9800"},
	{ID: "pantry", Name: "Pantry", Icon: "🥫", Color: "#795548"},
	{ID: "frozen", Name: "Frozen", Icon: "🧊", Color: "#00BCD4"},
	{ID: "beverages", Name: "Beverages", Icon: "🧃", Color: "#9C27B0"},
	{ID: "household", Name: "Household", Icon: "🧻", Color: "#607D8B"},
}

func seedCategories(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := Now()
	for _, c := range DefaultCategories {
		if _, err := tx.Exec(`
			INSERT INTO categories(id,name,icon,color,created_at)
			VALUES(?,?,?,?,?)
			ON CONFLICT DO NOTHING
		`, c.ID, c.Name, c.Icon, c.Color, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting demo users")

	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) (u, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range [][4]string{
		{"u-alice", "alice@freshtrack.test", "Alice", domain.RoleUser},
		{"u-bob", "bob@freshtrack.test", "Bob", domain.RoleUser},
		{"u-admin", "admin@freshtrack.test", "Admin", domain.RoleAdmin},
	} {
		x, err := mk(row[0], row[1], row[2], row[3], "Passw0rd!")
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedDemoItems stocks alice's pantry with items spread across every expiry bucket
// relative to today. It does nothing once she owns any item.
func SeedDemoItems(db *sqlx.DB, today time.Time) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM items WHERE owner_id='u-alice'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting demo items")

	date := func(days int) string { return domain.DateOf(today.AddDate(0, 0, days)).String() }
	rows := []struct {
		id, name, cat, qty, unit string
		expiry                   any
	}{
		{"demo-milk", "Milk", "dairy", "1", "l", date(1)},
		{"demo-yogurt", "Greek yogurt", "dairy", "4", "cups", date(0)},
		{"demo-spinach", "Spinach", "produce", "1", "bag", date(3)},
		{"demo-chicken", "Chicken thighs", "meat", "0.8", "kg", date(-2)},
		{"demo-bread", "Sourdough", "bakery", "1", "loaf", date(8)},
		{"demo-rice", "Basmati rice", "pantry", "2", "kg", date(200)},
		{"demo-salt", "Sea salt", "pantry", "1", "jar", nil},
		{"demo-juice", "Orange juice", "beverages", "12", "bottles", date(20)},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := Now()
	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO items(id,owner_id,name,category_id,quantity,unit,expiry_date,status,created_at)
			VALUES(?,?,?,?,?,?,?,'active',?)
			ON CONFLICT(id) DO NOTHING
		`, r.id, "u-alice", r.name, r.cat, r.qty, r.unit, r.expiry, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Now is the timestamp format written to created_at/updated_at/expires_at columns.
// RFC3339 in UTC sorts lexicographically.
func Now() string { return Timestamp(time.Now()) }

func Timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
