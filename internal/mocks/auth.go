package mocks

import (
	"github.com/pageza/recipe-hub/backend/internal/auth"
	"github.com/stretchr/testify/mock"
)

// MockTokenValidator is a mock implementation of the token validator
type MockTokenValidator struct {
	mock.Mock
}

// ValidateToken mocks the ValidateToken method
func (m *MockTokenValidator) ValidateToken(token string) (*auth.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenClaims), args.Error(1)
}
