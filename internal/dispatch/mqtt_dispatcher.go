package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/internal/models"
	"github.com/hush-sos/sos-agent/pkg/identity"
	"github.com/hush-sos/sos-agent/pkg/mqtt"
	"github.com/hush-sos/sos-agent/pkg/token"
)

// MQTTDispatcher sends dispatch requests to an SMS gateway over MQTT and
// correlates the asynchronous outcome messages back to the waiting caller.
type MQTTDispatcher struct {
	gatewayTopic string
	outcomeTopic string
	qos          int
	timeout      time.Duration

	deviceInfo   identity.DeviceInfoInterface
	tokenManager token.ManagerInterface
	mqttClient   mqtt.Client
	logger       zerolog.Logger

	pending cmap.ConcurrentMap[string, chan models.DispatchOutcome]
}

// NewMQTTDispatcher creates a new MQTTDispatcher instance.
func NewMQTTDispatcher(gatewayTopic, outcomeTopic string, qos int, timeout time.Duration,
	deviceInfo identity.DeviceInfoInterface, tokenManager token.ManagerInterface,
	mqttClient mqtt.Client, logger zerolog.Logger) *MQTTDispatcher {
	return &MQTTDispatcher{
		gatewayTopic: gatewayTopic,
		outcomeTopic: outcomeTopic,
		qos:          qos,
		timeout:      timeout,
		deviceInfo:   deviceInfo,
		tokenManager: tokenManager,
		mqttClient:   mqttClient,
		logger:       logger,
		pending:      cmap.New[chan models.DispatchOutcome](),
	}
}

// Start subscribes to the gateway outcome topic.
func (d *MQTTDispatcher) Start() error {
	err := d.mqttClient.Subscribe(d.outcomeTopic, byte(d.qos), d.handleOutcome)
	if err != nil {
		return fmt.Errorf("failed to subscribe to outcome topic: %w", err)
	}

	d.logger.Info().Str("topic", d.outcomeTopic).Msg("Dispatcher listening for gateway outcomes")
	return nil
}

// Stop unsubscribes from the outcome topic.
func (d *MQTTDispatcher) Stop() error {
	return d.mqttClient.Unsubscribe(d.outcomeTopic)
}

// handleOutcome routes a gateway outcome to the dispatch waiting on it.
// Outcomes for unknown message IDs (late arrivals after timeout) are dropped.
func (d *MQTTDispatcher) handleOutcome(_ mqttLib.Client, msg mqttLib.Message) {
	var outcome models.DispatchOutcome
	if err := json.Unmarshal(msg.Payload(), &outcome); err != nil {
		d.logger.Error().Err(err).Msg("Error parsing gateway outcome")
		return
	}

	ch, ok := d.pending.Get(outcome.MessageID)
	if !ok {
		d.logger.Warn().Str("message_id", outcome.MessageID).Msg("Outcome for unknown dispatch, dropping")
		return
	}

	select {
	case ch <- outcome:
	default:
	}
}

// Dispatch publishes the message to the gateway and waits for its outcome.
// A missing outcome within the timeout counts as Failed; a cancelled context
// counts as Cancelled.
func (d *MQTTDispatcher) Dispatch(ctx context.Context, body string, recipients []string) (Outcome, error) {
	request := models.DispatchRequest{
		MessageID:  uuid.NewString(),
		DeviceID:   d.deviceInfo.GetDeviceID(),
		Recipients: recipients,
		Body:       body,
		AuthToken:  d.tokenManager.Get(),
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to serialize dispatch request: %w", err)
	}

	ch := make(chan models.DispatchOutcome, 1)
	d.pending.Set(request.MessageID, ch)
	defer d.pending.Remove(request.MessageID)

	if err := d.mqttClient.Publish(d.gatewayTopic, byte(d.qos), false, payload); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to publish dispatch request: %w", err)
	}

	d.logger.Info().
		Str("message_id", request.MessageID).
		Int("recipients", len(recipients)).
		Msg("Dispatch request published")

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case outcome := <-ch:
		return mapOutcome(outcome), nil
	case <-timer.C:
		return OutcomeFailed, fmt.Errorf("no gateway outcome within %s", d.timeout)
	case <-ctx.Done():
		return OutcomeCancelled, ctx.Err()
	}
}

// Ready reports whether dispatch requests can currently reach the gateway.
func (d *MQTTDispatcher) Ready() bool {
	return d.mqttClient.IsConnected()
}

func mapOutcome(o models.DispatchOutcome) Outcome {
	switch o.Outcome {
	case string(OutcomeSent):
		return OutcomeSent
	case string(OutcomeCancelled):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
