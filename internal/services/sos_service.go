package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/internal/catalog"
	"github.com/hush-sos/sos-agent/internal/dispatch"
	"github.com/hush-sos/sos-agent/internal/location"
	"github.com/hush-sos/sos-agent/internal/message"
	"github.com/hush-sos/sos-agent/internal/models"
	"github.com/hush-sos/sos-agent/internal/store"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
)

// SOSService listens for SOS triggers and turns them into dispatched
// emergency messages: template + stored profile name + location text, sent
// to every stored contact through the dispatch boundary.
type SOSService struct {
	// Configuration fields
	triggerTopic string
	reportTopic  string
	qos          int

	// Dependencies
	contacts   *store.ContactStore
	profile    *store.ProfileStore
	monitor    *location.Monitor
	dispatcher dispatch.Dispatcher
	builder    *message.Builder
	deviceInfo identity.DeviceInfoInterface
	mqttClient mqtt.Client
	logger     zerolog.Logger

	// Internal state management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSOSService creates a new SOSService instance with the provided configuration.
func NewSOSService(triggerTopic, reportTopic string, qos int, contacts *store.ContactStore,
	profile *store.ProfileStore, monitor *location.Monitor, dispatcher dispatch.Dispatcher,
	builder *message.Builder, deviceInfo identity.DeviceInfoInterface, mqttClient mqtt.Client,
	logger zerolog.Logger) *SOSService {
	return &SOSService{
		triggerTopic: triggerTopic,
		reportTopic:  reportTopic,
		qos:          qos,
		contacts:     contacts,
		profile:      profile,
		monitor:      monitor,
		dispatcher:   dispatcher,
		builder:      builder,
		deviceInfo:   deviceInfo,
		mqttClient:   mqttClient,
		logger:       logger,
	}
}

// Start subscribes to the trigger topic and kicks off the location
// permission flow so a fix is usually in hand before any trigger arrives.
func (s *SOSService) Start() error {
	if s.ctx != nil {
		s.logger.Warn().Msg("SOSService is already running")
		return errors.New("sos service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.monitor.RequestPermission()

	if err := s.mqttClient.Subscribe(s.triggerTopic, byte(s.qos), s.handleTrigger); err != nil {
		s.cancel()
		s.ctx = nil
		s.cancel = nil
		return err
	}

	s.logger.Info().Str("topic", s.triggerTopic).Msg("SOSService started")
	return nil
}

// Stop unsubscribes from the trigger topic and waits for in-flight
// dispatches to settle.
func (s *SOSService) Stop() error {
	if s.ctx == nil {
		s.logger.Warn().Msg("SOSService is not running")
		return errors.New("sos service is not running")
	}

	if err := s.mqttClient.Unsubscribe(s.triggerTopic); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to unsubscribe from trigger topic")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.logger.Info().Msg("SOSService stopped")
	return nil
}

// CanSendSOS is the eligibility predicate: at least one contact, a ready
// dispatch boundary and granted location permission.
func (s *SOSService) CanSendSOS() bool {
	return s.contacts.Count() > 0 &&
		s.dispatcher.Ready() &&
		s.monitor.Permission() == location.PermissionGranted
}

// handleTrigger parses a trigger message and processes it asynchronously.
func (s *SOSService) handleTrigger(_ mqttLib.Client, msg mqttLib.Message) {
	var trigger models.SOSTrigger
	if err := json.Unmarshal(msg.Payload(), &trigger); err != nil {
		s.logger.Error().Err(err).Msg("Error parsing SOS trigger")
		return
	}

	template := catalog.Default()
	if trigger.TemplateID != "" {
		var ok bool
		template, ok = catalog.ByID(trigger.TemplateID)
		if !ok {
			s.logger.Error().Str("template_id", trigger.TemplateID).Msg("Unknown SOS template, dropping trigger")
			return
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processTrigger(trigger, template)
	}()
}

// processTrigger builds and dispatches the emergency message for a trigger.
func (s *SOSService) processTrigger(trigger models.SOSTrigger, template catalog.Template) {
	if !s.CanSendSOS() {
		s.logger.Warn().
			Int("contacts", s.contacts.Count()).
			Bool("dispatch_ready", s.dispatcher.Ready()).
			Str("permission", s.monitor.Permission().String()).
			Msg("SOS trigger ignored: not eligible to send")
		return
	}

	// Fire a fresh location request; a stale snapshot is still usable if
	// the fix does not arrive in time.
	s.monitor.RequestLocation()

	body := s.builder.Build(template, s.profile.Name(), s.monitor.EmergencyLocationText(), trigger.AdditionalInfo)
	recipients := s.contacts.PhoneNumbers()

	outcome, err := s.dispatcher.Dispatch(s.ctx, body, recipients)
	if err != nil {
		s.logger.Error().Err(err).Str("outcome", string(outcome)).Msg("SOS dispatch did not complete cleanly")
	}

	s.logger.Info().
		Str("template_id", template.ID).
		Str("outcome", string(outcome)).
		Int("recipients", len(recipients)).
		Msg("SOS processed")

	s.publishReport(template.ID, outcome)
}

// publishReport surfaces the dispatch outcome verbatim for operators.
func (s *SOSService) publishReport(templateID string, outcome dispatch.Outcome) {
	if s.reportTopic == "" {
		return
	}

	report := models.SOSReport{
		DeviceID:   s.deviceInfo.GetDeviceID(),
		TemplateID: templateID,
		Outcome:    string(outcome),
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to serialize SOS report")
		return
	}

	if err := s.mqttClient.Publish(s.reportTopic, byte(s.qos), false, payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish SOS report")
	}
}
