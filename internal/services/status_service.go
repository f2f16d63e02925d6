package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"github.com/hush-sos/sos-agent/internal/constants"
	"github.com/hush-sos/sos-agent/internal/location"
	"github.com/hush-sos/sos-agent/internal/models"
	"github.com/hush-sos/sos-agent/internal/store"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
)

// StatusService periodically publishes the agent's readiness: contact count,
// location state and basic host health, so operators can spot a device that
// could not deliver an SOS before it matters.
type StatusService struct {
	// Configuration fields
	topic    string
	interval time.Duration
	qos      int

	// Dependencies
	contacts    *store.ContactStore
	monitor     *location.Monitor
	eligibility func() bool
	deviceInfo  identity.DeviceInfoInterface
	mqttClient  mqtt.Client
	logger      zerolog.Logger

	// Internal state management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusService initializes a new StatusService.
func NewStatusService(topic string, interval time.Duration, qos int, contacts *store.ContactStore,
	monitor *location.Monitor, eligibility func() bool, deviceInfo identity.DeviceInfoInterface,
	mqttClient mqtt.Client, logger zerolog.Logger) *StatusService {
	return &StatusService{
		topic:       topic,
		interval:    interval,
		qos:         qos,
		contacts:    contacts,
		monitor:     monitor,
		eligibility: eligibility,
		deviceInfo:  deviceInfo,
		mqttClient:  mqttClient,
		logger:      logger,
	}
}

// Start launches the status loop in a separate goroutine.
func (s *StatusService) Start() error {
	if s.ctx != nil {
		s.logger.Warn().Msg("StatusService is already running")
		return errors.New("status service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runStatusLoop()
	}()

	s.logger.Info().Str("topic", s.topic).Dur("interval", s.interval).Msg("StatusService started")
	return nil
}

// Stop gracefully stops the status service.
func (s *StatusService) Stop() error {
	if s.ctx == nil {
		s.logger.Warn().Msg("StatusService is not running")
		return errors.New("status service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.logger.Info().Msg("StatusService stopped")
	return nil
}

// runStatusLoop publishes a status report at the configured interval.
func (s *StatusService) runStatusLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.publishStatus(); err != nil {
				s.logger.Error().Err(err).Msg("Failed to publish status report")
			}
		case <-s.ctx.Done():
			s.logger.Info().Msg("StatusService stopping gracefully")
			return
		}
	}
}

// publishStatus collects the current readiness triple and host health and
// publishes the report.
func (s *StatusService) publishStatus() error {
	state := s.monitor.State()

	report := models.StatusReport{
		DeviceID:       s.deviceInfo.GetDeviceID(),
		Timestamp:      time.Now(),
		AgentVersion:   constants.AgentVersion,
		ContactCount:   s.contacts.Count(),
		LocationStatus: state.Status,
		Permission:     state.Permission.String(),
		HasFix:         state.Snapshot != nil,
		SOSReady:       s.eligibility(),
	}

	if uptime, err := host.Uptime(); err == nil {
		report.UptimeSeconds = uptime
	} else {
		s.logger.Debug().Err(err).Msg("Failed to read host uptime")
	}

	if memStats, err := mem.VirtualMemory(); err == nil {
		report.MemoryUsedPercent = memStats.UsedPercent
	} else {
		s.logger.Debug().Err(err).Msg("Failed to read memory statistics")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if err := s.mqttClient.Publish(s.topic, byte(s.qos), false, payload); err != nil {
		return err
	}

	s.logger.Debug().Bool("sos_ready", report.SOSReady).Msg("Status report published")
	return nil
}
