// pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword = errors.New("password does not meet requirements")
)

const DefaultHashCost = 12

// PasswordManager handles password hashing and validation
type PasswordManager struct {
	minLength      int
	requireUpper   bool
	requireLower   bool
	requireNumber  bool
	requireSpecial bool
	cost           int
}

type PasswordOption func(*PasswordManager)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) PasswordOption {
	return func(pm *PasswordManager) {
		pm.cost = cost
	}
}

// WithStrictPolicy requires upper, lower and numeric characters.
func WithStrictPolicy() PasswordOption {
	return func(pm *PasswordManager) {
		pm.requireUpper = true
		pm.requireLower = true
		pm.requireNumber = true
	}
}

// NewPasswordManager creates a new password manager with default settings
func NewPasswordManager(opts ...PasswordOption) *PasswordManager {
	pm := &PasswordManager{
		minLength: 8,
		cost:      DefaultHashCost,
	}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// HashPassword validates and hashes a password using bcrypt
func (pm *PasswordManager) HashPassword(password string) (string, error) {
	if err := pm.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword compares a password with a hash
func (pm *PasswordManager) ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword checks if a password meets the requirements
func (pm *PasswordManager) ValidatePassword(password string) error {
	if len(password) < pm.minLength {
		return fmt.Errorf("%w: minimum length is %d characters", ErrWeakPassword, pm.minLength)
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
		onlyDigits = true
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
		if !unicode.IsDigit(char) {
			onlyDigits = false
		}
	}

	if onlyDigits {
		return fmt.Errorf("%w: password is entirely numeric", ErrWeakPassword)
	}
	if pm.requireUpper && !hasUpper {
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	}
	if pm.requireLower && !hasLower {
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrWeakPassword)
	}
	if pm.requireNumber && !hasNumber {
		return fmt.Errorf("%w: must contain at least one number", ErrWeakPassword)
	}
	if pm.requireSpecial && !hasSpecial {
		return fmt.Errorf("%w: must contain at least one special character", ErrWeakPassword)
	}

	return nil
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+\-]+$`)
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 150
)

// ValidateEmail validates an email address format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return errors.New("email address too long")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}

	return nil
}

// ValidateUsername validates a username
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	}

	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}

	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, and @/./+/-/_ characters")
	}

	return nil
}
