package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockTokenManager is a mock implementation of the token.ManagerInterface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) Load() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTokenManager) Save(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockTokenManager) Get() string {
	args := m.Called()
	return args.String(0)
}
