package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/internal/constants"
	"github.com/hush-sos/sos-agent/internal/dispatch"
	"github.com/hush-sos/sos-agent/internal/location"
	"github.com/hush-sos/sos-agent/internal/service_registry"
	"github.com/hush-sos/sos-agent/internal/store"
	"github.com/hush-sos/sos-agent/internal/utils"
	"github.com/hush-sos/sos-agent/pkg/encryption"
	"github.com/hush-sos/sos-agent/pkg/file"
	"github.com/hush-sos/sos-agent/pkg/gps"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/kvstore"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
	"github.com/hush-sos/sos-agent/pkg/token"
)

func main() {
	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	applyDefaults(config)

	// Generate a unique MQTT Client ID by appending a UUID
	config.MQTT.ClientID = config.MQTT.ClientID + "-" + uuid.New().String()
	logger.Info().Str("client_id", config.MQTT.ClientID).Str("version", constants.AgentVersion).Msg("Starting agent")

	// Key-value store backing contacts and profile
	kv, err := kvstore.NewFileStore(config.Storage.DataDir, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize key-value store")
	}

	// Encryption for the gateway token at rest
	encryptionManager := encryption.NewEncryptionManager(fileClient)
	if err := encryptionManager.Initialize(config.Security.PassphraseFile, config.Security.SaltFile); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption manager")
	}

	tokenManager := token.NewManager(config.Security.TokenFile, fileClient, encryptionManager)
	if err := tokenManager.Load(); err != nil {
		logger.Warn().Err(err).Msg("Failed to load gateway token, continuing without it")
	}

	// Device identity
	deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, fileClient)
	if err := deviceInfo.LoadDeviceInfo(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load device information")
	}

	// Stores
	contacts := store.NewContactStore(kv, logger)
	profile := store.NewProfileStore(kv, logger)
	if profile.Name() == "" && config.Profile.UserName != "" {
		profile.SetName(config.Profile.UserName)
	}

	// Location monitor wired to the configured positioning backend
	monitor := location.NewMonitor(logger)
	source := location.NewDeviceSource(
		buildPositioningProvider(config, logger),
		location.ResolveConsent(config.Location.Consent),
		config.Location.QueryTimeout,
		logger,
	)
	monitor.AttachSource(source)

	// Initialize the shared MQTT connection
	mqttClient := mqtt.NewPahoClient(fileClient, constants.DefaultMQTTWaitTimeout*time.Second)
	if err := mqttClient.Initialize(config.MQTT.Broker, config.MQTT.ClientID, config.MQTT.CACertificate); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
	}

	// SMS gateway dispatcher
	dispatcher := dispatch.NewMQTTDispatcher(
		config.Services.SOS.GatewayTopic,
		config.Services.SOS.OutcomeTopic,
		config.Services.SOS.QOS,
		config.Services.SOS.DispatchTimeout,
		deviceInfo,
		tokenManager,
		mqttClient,
		logger,
	)
	if err := dispatcher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start dispatcher")
	}

	// Create a new service registry and register enabled services
	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, tokenManager, contacts, profile, monitor, dispatcher, logger)
	if err := serviceRegistry.RegisterServices(config, deviceInfo); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")

	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop all services cleanly")
	}
	if err := dispatcher.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Failed to stop dispatcher cleanly")
	}
	if err := monitor.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close location monitor cleanly")
	}
	mqttClient.Disconnect(250)
}

// buildPositioningProvider picks the positioning backend from configuration.
// Returns nil when none is configured; the location source then reports the
// device as restricted.
func buildPositioningProvider(config *utils.Config, logger zerolog.Logger) gps.Provider {
	if config.Location.SensorBased {
		return gps.NewSerialProvider(config.Location.GPSDevicePort, config.Location.GPSDeviceBaudRate)
	}

	if config.Location.MapsAPIKey != "" {
		provider, err := gps.NewGoogleGeolocationProvider(config.Location.MapsAPIKey, config.Location.QueryTimeout)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create geolocation provider")
			return nil
		}
		return provider
	}

	logger.Warn().Msg("No positioning backend configured")
	return nil
}

// applyDefaults converts the second-count duration fields from the YAML
// into real durations and fills in unset values.
func applyDefaults(config *utils.Config) {
	config.Location.QueryTimeout = secondsOrDefault(config.Location.QueryTimeout, constants.DefaultLocationTimeout)
	config.Services.SOS.DispatchTimeout = secondsOrDefault(config.Services.SOS.DispatchTimeout, constants.DefaultDispatchTimeout)
	config.Services.Status.Interval = secondsOrDefault(config.Services.Status.Interval, constants.DefaultStatusInterval)
	config.Services.Registration.ResponseTimeout = secondsOrDefault(config.Services.Registration.ResponseTimeout, constants.DefaultResponseTimeout)

	if config.Location.GPSDeviceBaudRate == 0 {
		config.Location.GPSDeviceBaudRate = constants.DefaultGPSBaudRate
	}
}

func secondsOrDefault(seconds time.Duration, defaultSeconds int) time.Duration {
	if seconds == 0 {
		return time.Duration(defaultSeconds) * time.Second
	}
	return seconds * time.Second
}
