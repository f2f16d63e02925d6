package mocks

import (
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

// MockMQTTClient is a mock implementation of the mqtt.Client interface
type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	args := m.Called(topic, qos, retained, payload)
	return args.Error(0)
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error {
	args := m.Called(topic, qos, callback)
	return args.Error(0)
}

func (m *MockMQTTClient) Unsubscribe(topics ...string) error {
	args := m.Called(topics)
	return args.Error(0)
}

func (m *MockMQTTClient) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}
