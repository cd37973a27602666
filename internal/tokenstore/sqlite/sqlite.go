package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fakubwoy/pricepulse/internal/tokenstore"
	_ "github.com/mattn/go-sqlite3" // sqlite driver registration
)

// tokenKey is the single well-known name the session token is stored under.
const tokenKey = "session_token"

// Store persists the session token in a local SQLite database so it
// survives process restarts. It holds a reference to the database and a
// logger instance for logging operations.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens (or creates) the database file at storagePath and prepares
// the schema. It returns a pointer to the newly created Store.
func NewStore(ctx context.Context, log *slog.Logger, storagePath string) (*Store, error) {
	dtb, err := sql.Open("sqlite3", fmt.Sprintf("%s?_pragma=foreign_keys(1)", storagePath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Check if the connection is actually established.
	if err = dtb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	if err = initSchema(ctx, dtb); err != nil {
		return nil, fmt.Errorf("DB schema initialization error: %w", err)
	}

	return &Store{db: dtb, log: log}, nil
}

// NewForTest wraps an existing database handle. Used by tests that drive
// the store against a mocked connection.
func NewForTest(db *sql.DB) *Store {
	return &Store{db: db, log: slog.Default()}
}

// initSchema creates the necessary tables if they don't already exist.
func initSchema(ctx context.Context, dtb *sql.DB) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS credentials (
		name TEXT PRIMARY KEY NOT NULL,
		value TEXT NOT NULL
	);
	`
	_, err := dtb.ExecContext(ctx, migrationQuery)
	if err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}

	return nil
}

// Get implements tokenstore.Interface.
func (s *Store) Get(ctx context.Context) (string, error) {
	const opn = "tokenstore.sqlite.Get"

	var token string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM credentials WHERE name = ?", tokenKey).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", tokenstore.ErrTokenNotFound
		}
		return "", fmt.Errorf("%s: failed to get token: %w", opn, err)
	}

	return token, nil
}

// Set implements tokenstore.Interface.
func (s *Store) Set(ctx context.Context, token string) error {
	const opn = "tokenstore.sqlite.Set"

	_, err := s.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO credentials (name, value) VALUES (?, ?)",
		tokenKey, token,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to store token: %w", opn, err)
	}

	return nil
}

// Delete implements tokenstore.Interface.
func (s *Store) Delete(ctx context.Context) error {
	const opn = "tokenstore.sqlite.Delete"

	_, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE name = ?", tokenKey)
	if err != nil {
		return fmt.Errorf("%s: failed to delete token: %w", opn, err)
	}

	return nil
}

// Close closes the connection to the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		s.log.Error("failed to close the database", "op", "tokenstore.sqlite.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (s *Store) DB() *sql.DB {
	return s.db
}
