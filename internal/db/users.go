package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateUser stores a credential record. The email is the primary key, so
// registering twice fails with ErrUserExists.
func (c *Connection) CreateUser(email, passwordHash string) error {
	_, err := c.Exec("INSERT INTO users(email, password_hash) VALUES (?, ?)", email, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserHash returns the stored password hash for an email.
func (c *Connection) GetUserHash(email string) (string, error) {
	var hash string
	err := c.QueryRow("SELECT password_hash FROM users WHERE email = ?", email).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query user: %w", err)
	}
	return hash, nil
}
