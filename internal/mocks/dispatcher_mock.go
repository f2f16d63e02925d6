package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hush-sos/sos-agent/internal/dispatch"
)

// MockDispatcher is a mock implementation of the dispatch.Dispatcher interface
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, body string, recipients []string) (dispatch.Outcome, error) {
	args := m.Called(ctx, body, recipients)
	return args.Get(0).(dispatch.Outcome), args.Error(1)
}

func (m *MockDispatcher) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}
