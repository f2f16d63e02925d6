package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/hush-sos/sos-agent/pkg/identity"
)

// MockDeviceInfo is a mock implementation of the DeviceInfoInterface
type MockDeviceInfo struct {
	mock.Mock
}

func (m *MockDeviceInfo) LoadDeviceInfo() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDeviceInfo) SaveDeviceID(deviceID string) error {
	args := m.Called(deviceID)
	return args.Error(0)
}

func (m *MockDeviceInfo) GetDeviceID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDeviceInfo) GetDeviceIdentity() *identity.Identity {
	args := m.Called()
	return args.Get(0).(*identity.Identity)
}
