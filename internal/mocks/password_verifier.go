package mocks

import (
	"github.com/mnemosyne-app/mnemo-api/internal/service/auth"
)

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether password comparison succeeds
	ShouldSucceed bool

	// HashFn allows custom hashing logic; the default echoes the
	// password with a prefix so tests can assert it was stored hashed
	HashFn  func(password string) (string, error)
	HashErr error

	// CompareFn allows custom comparison logic
	CompareFn func(hashedPassword, password string) error

	// CompareCalledWith stores the arguments passed to Compare
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}
	CompareCallCount int
}

func (m *MockPasswordVerifier) HashPassword(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrInvalidCredentials
}
