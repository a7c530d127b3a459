package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rpaixao/a11y-analyzer/internal/db"
)

// ErrInvalidInput is returned when email or password is empty.
var ErrInvalidInput = errors.New("email and password are required")

// Service verifies and registers user credentials. Passwords are stored
// bcrypt-hashed, never in clear.
type Service struct {
	conn *db.Connection
}

func New(conn *db.Connection) *Service {
	return &Service{conn: conn}
}

// Register creates a credential record. Registering an existing email fails
// with db.ErrUserExists.
func (s *Service) Register(email, password string) error {
	if email == "" || password == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.conn.CreateUser(email, string(hash))
}

// Verify reports whether the password matches the stored hash for email. An
// unknown email verifies false without error; only storage faults error.
func (s *Service) Verify(email, password string) (bool, error) {
	hash, err := s.conn.GetUserHash(email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}
