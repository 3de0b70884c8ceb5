package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/infinitewater/bucket/pkg/permission"
)

// Store persists permissions in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the permission database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS permissions (
			name TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS grants (
			actor_id   TEXT NOT NULL,
			permission TEXT NOT NULL REFERENCES permissions(name) ON DELETE CASCADE,
			PRIMARY KEY (actor_id, permission)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register declares a permission.
func (s *Store) Register(name string) error {
	if name == "" {
		return fmt.Errorf("register permission: empty name")
	}
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO permissions(name) VALUES(?)`, name); err != nil {
		return fmt.Errorf("register permission %q: %w", name, err)
	}
	return nil
}

// HasPermission reports whether the actor holds a registered permission.
func (s *Store) HasPermission(actorID, name string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM grants g JOIN permissions p ON p.name = g.permission
		 WHERE g.actor_id = ? AND g.permission = ?`,
		actorID, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check permission %q: %w", name, err)
	}
	return n > 0, nil
}

// Grant gives the actor a registered permission.
func (s *Store) Grant(actorID, name string) error {
	var registered int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM permissions WHERE name = ?`, name).Scan(&registered); err != nil {
		return fmt.Errorf("grant %q: %w", name, err)
	}
	if registered == 0 {
		return fmt.Errorf("grant %q: %w", name, permission.ErrUnknownPermission)
	}
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO grants(actor_id, permission) VALUES(?, ?)`,
		actorID, name,
	); err != nil {
		return fmt.Errorf("grant %q: %w", name, err)
	}
	return nil
}

// Revoke removes a permission from the actor.
func (s *Store) Revoke(actorID, name string) error {
	if _, err := s.db.Exec(`DELETE FROM grants WHERE actor_id = ? AND permission = ?`, actorID, name); err != nil {
		return fmt.Errorf("revoke %q: %w", name, err)
	}
	return nil
}

// Granted lists the actor's permissions in sorted order.
func (s *Store) Granted(actorID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT permission FROM grants WHERE actor_id = ? ORDER BY permission`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list permissions: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ensure Store implements the permission.Store interface.
var _ permission.Store = (*Store)(nil)
