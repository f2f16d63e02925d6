package service_registry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/internal/dispatch"
	"github.com/hush-sos/sos-agent/internal/location"
	"github.com/hush-sos/sos-agent/internal/message"
	"github.com/hush-sos/sos-agent/internal/registry"
	"github.com/hush-sos/sos-agent/internal/services"
	"github.com/hush-sos/sos-agent/internal/store"
	"github.com/hush-sos/sos-agent/internal/utils"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
	"github.com/hush-sos/sos-agent/pkg/token"
)

// ServiceRegistry manages the lifecycle of the agent's services.
type ServiceRegistry struct {
	services    map[string]registry.Service
	serviceKeys []string // Maintains order of service registration

	mqttClient   mqtt.Client
	tokenManager token.ManagerInterface
	contacts     *store.ContactStore
	profile      *store.ProfileStore
	monitor      *location.Monitor
	dispatcher   dispatch.Dispatcher
	Logger       zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(mqttClient mqtt.Client, tokenManager token.ManagerInterface,
	contacts *store.ContactStore, profile *store.ProfileStore, monitor *location.Monitor,
	dispatcher dispatch.Dispatcher, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:     make(map[string]registry.Service),
		mqttClient:   mqttClient,
		tokenManager: tokenManager,
		contacts:     contacts,
		profile:      profile,
		monitor:      monitor,
		dispatcher:   dispatcher,
		Logger:       logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deviceInfo identity.DeviceInfoInterface) error {
	builder := message.NewBuilder()

	sosService := services.NewSOSService(
		config.Services.SOS.TriggerTopic,
		config.Services.SOS.ReportTopic,
		config.Services.SOS.QOS,
		sr.contacts,
		sr.profile,
		sr.monitor,
		sr.dispatcher,
		builder,
		deviceInfo,
		sr.mqttClient,
		sr.Logger,
	)

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    "registration",
			enabled: config.Services.Registration.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewRegistrationService(
					config.Services.Registration.Topic,
					config.MQTT.ClientID,
					config.Services.Registration.QOS,
					config.Services.Registration.ResponseTimeout,
					deviceInfo,
					sr.tokenManager,
					sr.mqttClient,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "sos",
			enabled: config.Services.SOS.Enabled,
			constructor: func() (registry.Service, error) {
				return sosService, nil
			},
		},
		{
			name:    "status",
			enabled: config.Services.Status.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewStatusService(
					config.Services.Status.Topic,
					config.Services.Status.Interval,
					config.Services.Status.QOS,
					sr.contacts,
					sr.monitor,
					sosService.CanSendSOS,
					deviceInfo,
					sr.mqttClient,
					sr.Logger,
				), nil
			},
		},
	}

	for _, svc := range servicesInOrder {
		if !svc.enabled {
			sr.Logger.Info().Msgf("Service %s is disabled", svc.name)
			continue
		}

		instance, err := svc.constructor()
		if err != nil {
			return fmt.Errorf("failed to construct service %s: %w", svc.name, err)
		}
		sr.RegisterService(svc.name, instance)
	}

	return nil
}
