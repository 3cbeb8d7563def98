// Package auth provides the SQLite-backed user store and JWT token handling.
package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/wunjo/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	disabled      INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// User is an account record, without the password hash.
type User struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Disabled bool      `json:"disabled"`
	Created  time.Time `json:"created_at"`
}

// Store wraps the user database.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the user database, applies the schema and seeds a
// default admin/admin account when the table is empty.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("auth: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("auth: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("auth: apply schema: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.seedDefaultAdmin(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) seedDefaultAdmin() error {
	var count int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("auth: count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.Register("admin", "admin@example.com", "admin"); err != nil {
		return fmt.Errorf("auth: seed admin: %w", err)
	}
	return nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Store) Register(username, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	_, err = s.conn.Exec(
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, string(hash),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("auth: user %s: %w", username, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("auth: insert user: %w", err)
	}
	return s.Get(username)
}

// Get returns the account for username.
func (s *Store) Get(username string) (*User, error) {
	var (
		u        User
		disabled int
	)
	err := s.conn.QueryRow(
		`SELECT username, email, disabled, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.Email, &disabled, &u.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("auth: user %s: %w", username, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auth: query user: %w", err)
	}
	u.Disabled = disabled != 0
	return &u, nil
}

// Authenticate verifies the credentials and returns the account. Unknown
// users, wrong passwords and disabled accounts all fail the same way, so the
// response does not reveal which part was wrong.
func (s *Store) Authenticate(username, password string) (*User, error) {
	var (
		hash     string
		disabled int
	)
	err := s.conn.QueryRow(
		`SELECT password_hash, disabled FROM users WHERE username = ?`,
		username,
	).Scan(&hash, &disabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("auth: authenticate %s: %w", username, apperr.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("auth: query credentials: %w", err)
	}
	if disabled != 0 {
		return nil, fmt.Errorf("auth: authenticate %s: %w", username, apperr.ErrUnauthenticated)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, fmt.Errorf("auth: authenticate %s: %w", username, apperr.ErrUnauthenticated)
	}
	return s.Get(username)
}

func isUniqueViolation(err error) bool {
	// Matching on the message keeps the driver import down to the blank
	// registration above.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
