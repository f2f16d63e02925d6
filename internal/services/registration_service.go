package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/internal/constants"
	"github.com/hush-sos/sos-agent/internal/models"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
	"github.com/hush-sos/sos-agent/pkg/token"
)

// RegistrationService performs the handshake with the SMS gateway: it
// announces the device, receives the assigned device ID and auth token, and
// checks the gateway's minimum supported agent version. A missing gateway
// leaves the agent degraded but running; an SOS device must not refuse to
// start because the fleet backend is down.
type RegistrationService struct {
	// Configuration fields
	pubTopic        string
	clientID        string
	qos             int
	responseTimeout time.Duration

	// Dependencies
	deviceInfo   identity.DeviceInfoInterface
	tokenManager token.ManagerInterface
	mqttClient   mqtt.Client
	logger       zerolog.Logger

	// Internal state for managing service lifecycle
	mu      sync.Mutex
	running bool
}

// NewRegistrationService initializes and returns a new RegistrationService instance.
func NewRegistrationService(pubTopic, clientID string, qos int, responseTimeout time.Duration,
	deviceInfo identity.DeviceInfoInterface, tokenManager token.ManagerInterface,
	mqttClient mqtt.Client, logger zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		pubTopic:        pubTopic,
		clientID:        clientID,
		qos:             qos,
		responseTimeout: responseTimeout,
		deviceInfo:      deviceInfo,
		tokenManager:    tokenManager,
		mqttClient:      mqttClient,
		logger:          logger,
	}
}

// Start runs the registration handshake.
func (rs *RegistrationService) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.running {
		rs.logger.Warn().Msg("Registration service is already running")
		return errors.New("registration service is already running")
	}
	rs.running = true

	rs.logger.Info().Str("client_id", rs.clientID).Msg("Starting gateway registration")

	if err := rs.register(); err != nil {
		rs.logger.Warn().Err(err).Msg("Gateway registration incomplete, continuing unregistered")
	}

	return nil
}

// Stop marks the service as stopped. The handshake itself is one-shot.
func (rs *RegistrationService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.running {
		rs.logger.Warn().Msg("Registration service is not running")
		return errors.New("registration service is not running")
	}
	rs.running = false

	return nil
}

// register publishes the hello and waits for the gateway response.
func (rs *RegistrationService) register() error {
	existingDeviceID := rs.deviceInfo.GetDeviceID()

	payload := models.RegistrationPayload{
		DeviceName:   rs.deviceInfo.GetDeviceIdentity().Name,
		AgentVersion: constants.AgentVersion,
	}

	respKey := rs.clientID
	if existingDeviceID != "" {
		rs.logger.Info().Str("device_id", existingDeviceID).Msg("Registering with existing device ID")
		payload.DeviceID = existingDeviceID
		respKey = existingDeviceID
	} else {
		rs.logger.Info().Msg("No existing device ID, registering as new device")
		payload.ClientID = rs.clientID
	}

	respTopic := fmt.Sprintf("%s/response/%s", rs.pubTopic, respKey)

	responseChannel := make(chan models.RegistrationResponse, 1)

	err := rs.mqttClient.Subscribe(respTopic, byte(rs.qos), func(_ mqttLib.Client, msg mqttLib.Message) {
		var response models.RegistrationResponse
		if err := json.Unmarshal(msg.Payload(), &response); err != nil {
			rs.logger.Error().Err(err).Msg("Error parsing registration response")
			return
		}
		if response.DeviceID == "" {
			rs.logger.Error().Msg("Invalid registration response")
			return
		}
		select {
		case responseChannel <- response:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to response topic: %w", err)
	}

	defer func() {
		if err := rs.mqttClient.Unsubscribe(respTopic); err != nil {
			rs.logger.Warn().Err(err).Msgf("failed to unsubscribe from %s", respTopic)
		}
	}()

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize registration payload: %w", err)
	}

	if err := rs.mqttClient.Publish(rs.pubTopic, byte(rs.qos), false, payloadBytes); err != nil {
		return fmt.Errorf("failed to publish registration payload: %w", err)
	}

	select {
	case response := <-responseChannel:
		return rs.applyResponse(response)
	case <-time.After(rs.responseTimeout):
		return fmt.Errorf("no registration response within %s", rs.responseTimeout)
	}
}

// applyResponse persists the assigned identity and token and checks version
// compatibility against the gateway's advertised minimum.
func (rs *RegistrationService) applyResponse(response models.RegistrationResponse) error {
	if response.DeviceID != rs.deviceInfo.GetDeviceID() {
		if err := rs.deviceInfo.SaveDeviceID(response.DeviceID); err != nil {
			return fmt.Errorf("failed to save device ID: %w", err)
		}
	}

	if response.AuthToken != "" {
		if err := rs.tokenManager.Save(response.AuthToken); err != nil {
			return fmt.Errorf("failed to save gateway token: %w", err)
		}
	}

	rs.checkVersion(response.MinAgentVersion)

	rs.logger.Info().Str("device_id", response.DeviceID).Msg("Device registered with gateway")
	return nil
}

func (rs *RegistrationService) checkVersion(minVersion string) {
	if minVersion == "" {
		return
	}

	minimum, err := semver.NewVersion(minVersion)
	if err != nil {
		rs.logger.Warn().Err(err).Str("min_agent_version", minVersion).Msg("Gateway advertised an unparsable minimum version")
		return
	}

	current, err := semver.NewVersion(constants.AgentVersion)
	if err != nil {
		rs.logger.Error().Err(err).Msg("Agent version is not valid semver")
		return
	}

	if current.LessThan(minimum) {
		rs.logger.Warn().
			Str("agent_version", constants.AgentVersion).
			Str("min_agent_version", minVersion).
			Msg("Agent version is below the gateway minimum, update recommended")
	}
}
