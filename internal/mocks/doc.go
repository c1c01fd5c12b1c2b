// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized implementations can be shared across test packages. Each
// mock exposes optional function fields that override the default
// behavior, plus simple default values for the common cases.
//
// Usage:
//
//	import "github.com/mnemosyne-app/mnemo-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    jwtService := &mocks.MockJWTService{Token: "test-token"}
//	    // ...
//	}
package mocks
