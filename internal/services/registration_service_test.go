package services_test

import (
	"encoding/json"
	"testing"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hush-sos/sos-agent/internal/mocks"
	"github.com/hush-sos/sos-agent/internal/models"
	"github.com/hush-sos/sos-agent/internal/services"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
	"github.com/hush-sos/sos-agent/pkg/token"
)

const registrationTopic = "sos/registration"

func newRegistrationService(deviceInfo identity.DeviceInfoInterface, tokens token.ManagerInterface,
	client mqtt.Client) *services.RegistrationService {
	return services.NewRegistrationService(registrationTopic, "client-1", 1, time.Second,
		deviceInfo, tokens, client, zerolog.Nop())
}

// respondWith wires the mock client so the registration publish is answered
// with the given gateway response on the right reply topic.
func respondWith(t *testing.T, mockClient *mocks.MockMQTTClient, respTopic string, response models.RegistrationResponse) {
	t.Helper()

	var handler mqttLib.MessageHandler
	mockClient.On("Subscribe", respTopic, byte(1), mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(mqttLib.MessageHandler)
		}).
		Return(nil)
	mockClient.On("Publish", registrationTopic, byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			payload, _ := json.Marshal(response)
			go handler(nil, mocks.NewMockMessage(respTopic, payload))
		}).
		Return(nil)
	mockClient.On("Unsubscribe", []string{respTopic}).Return(nil)
}

// TestRegistrationService_NewDevice verifies a device without an assigned ID
// registers under its client ID and persists the assigned identity and token.
func TestRegistrationService_NewDevice(t *testing.T) {
	mockClient := new(mocks.MockMQTTClient)
	mockDeviceInfo := new(mocks.MockDeviceInfo)
	mockTokens := new(mocks.MockTokenManager)

	mockDeviceInfo.On("GetDeviceID").Return("")
	mockDeviceInfo.On("GetDeviceIdentity").Return(&identity.Identity{Name: "camper-unit"})
	mockDeviceInfo.On("SaveDeviceID", "device-42").Return(nil)
	mockTokens.On("Save", "token-42").Return(nil)

	respondWith(t, mockClient, registrationTopic+"/response/client-1", models.RegistrationResponse{
		DeviceID:  "device-42",
		AuthToken: "token-42",
	})

	rs := newRegistrationService(mockDeviceInfo, mockTokens, mockClient)

	assert.NoError(t, rs.Start())
	assert.NoError(t, rs.Stop())

	mockDeviceInfo.AssertCalled(t, "SaveDeviceID", "device-42")
	mockTokens.AssertCalled(t, "Save", "token-42")
	mockClient.AssertExpectations(t)
}

// TestRegistrationService_ExistingDevice verifies re-registration listens on
// the device-ID reply topic and does not rewrite an unchanged identity.
func TestRegistrationService_ExistingDevice(t *testing.T) {
	mockClient := new(mocks.MockMQTTClient)
	mockDeviceInfo := new(mocks.MockDeviceInfo)
	mockTokens := new(mocks.MockTokenManager)

	mockDeviceInfo.On("GetDeviceID").Return("device-42")
	mockDeviceInfo.On("GetDeviceIdentity").Return(&identity.Identity{ID: "device-42", Name: "camper-unit"})
	mockTokens.On("Save", "token-43").Return(nil)

	respondWith(t, mockClient, registrationTopic+"/response/device-42", models.RegistrationResponse{
		DeviceID:  "device-42",
		AuthToken: "token-43",
	})

	rs := newRegistrationService(mockDeviceInfo, mockTokens, mockClient)

	assert.NoError(t, rs.Start())
	assert.NoError(t, rs.Stop())

	mockDeviceInfo.AssertNotCalled(t, "SaveDeviceID", mock.Anything)
	mockTokens.AssertCalled(t, "Save", "token-43")
}

// TestRegistrationService_TimeoutIsNotFatal verifies a silent gateway still
// lets the agent start.
func TestRegistrationService_TimeoutIsNotFatal(t *testing.T) {
	mockClient := new(mocks.MockMQTTClient)
	mockDeviceInfo := new(mocks.MockDeviceInfo)
	mockTokens := new(mocks.MockTokenManager)

	mockDeviceInfo.On("GetDeviceID").Return("")
	mockDeviceInfo.On("GetDeviceIdentity").Return(&identity.Identity{Name: "camper-unit"})

	mockClient.On("Subscribe", mock.Anything, byte(1), mock.Anything).Return(nil)
	mockClient.On("Publish", registrationTopic, byte(1), false, mock.Anything).Return(nil)
	mockClient.On("Unsubscribe", mock.Anything).Return(nil)

	rs := services.NewRegistrationService(registrationTopic, "client-1", 1, 50*time.Millisecond,
		mockDeviceInfo, mockTokens, mockClient, zerolog.Nop())

	assert.NoError(t, rs.Start())
	assert.NoError(t, rs.Stop())

	mockTokens.AssertNotCalled(t, "Save", mock.Anything)
}

// TestRegistrationService_StartStopLifecycle mirrors the double start/stop
// contract.
func TestRegistrationService_StartStopLifecycle(t *testing.T) {
	mockClient := new(mocks.MockMQTTClient)
	mockDeviceInfo := new(mocks.MockDeviceInfo)
	mockTokens := new(mocks.MockTokenManager)

	mockDeviceInfo.On("GetDeviceID").Return("")
	mockDeviceInfo.On("GetDeviceIdentity").Return(&identity.Identity{Name: "camper-unit"})

	respondWith(t, mockClient, registrationTopic+"/response/client-1", models.RegistrationResponse{
		DeviceID: "device-42",
	})
	mockDeviceInfo.On("SaveDeviceID", "device-42").Return(nil)

	rs := newRegistrationService(mockDeviceInfo, mockTokens, mockClient)

	assert.NoError(t, rs.Start())

	err := rs.Start()
	assert.Error(t, err)
	assert.Equal(t, "registration service is already running", err.Error())

	assert.NoError(t, rs.Stop())

	err = rs.Stop()
	assert.Error(t, err)
	assert.Equal(t, "registration service is not running", err.Error())
}
