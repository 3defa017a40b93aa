package secrets

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the floor enforced before any account is written.
const MinPasswordLength = 8

var (
	// ErrTooShort is returned for passwords under MinPasswordLength.
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrTooLong is returned when the password exceeds the bcrypt input limit.
	ErrTooLong = errors.New("password is too long")
)

// Hash creates a bcrypt hash of the provided password. The plaintext is
// never stored or logged; only the digest leaves this package.
func Hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored digest.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
