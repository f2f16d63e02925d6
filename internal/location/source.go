package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/pkg/gps"
)

// ResolveConsent maps the operator consent string from configuration to a
// permission state. Anything unrecognized is treated as denied.
func ResolveConsent(consent string) PermissionState {
	switch consent {
	case "granted":
		return PermissionGranted
	case "restricted":
		return PermissionRestricted
	default:
		return PermissionDenied
	}
}

// DeviceSource adapts a synchronous positioning provider and the operator
// consent setting into the asynchronous Events contract. On a headless
// device the "permission prompt" resolves from configuration rather than a
// dialog, but the delivery shape is the same: fire-and-forget requests,
// results via callbacks.
type DeviceSource struct {
	provider gps.Provider
	consent  PermissionState
	timeout  time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	handler Events

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDeviceSource creates a DeviceSource for the given provider and consent.
func NewDeviceSource(provider gps.Provider, consent PermissionState, timeout time.Duration, logger zerolog.Logger) *DeviceSource {
	ctx, cancel := context.WithCancel(context.Background())
	return &DeviceSource{
		provider: provider,
		consent:  consent,
		timeout:  timeout,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetHandler registers the single event handler.
func (d *DeviceSource) SetHandler(h Events) {
	d.mu.Lock()
	d.handler = h
	d.mu.Unlock()
}

// RequestAuthorization resolves the consent setting and delivers the
// resulting transition asynchronously.
func (d *DeviceSource) RequestAuthorization() {
	h := d.currentHandler()
	if h == nil {
		d.logger.Warn().Msg("Authorization requested with no handler attached")
		return
	}

	state := d.consent
	if d.provider == nil && state == PermissionGranted {
		// Consent without a usable positioning backend cannot be honored.
		state = PermissionRestricted
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		h.AuthorizationChanged(state)
	}()
}

// RequestLocation queries the provider and delivers the result as an event.
func (d *DeviceSource) RequestLocation() {
	h := d.currentHandler()
	if h == nil {
		d.logger.Warn().Msg("Location requested with no handler attached")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.provider == nil {
			h.LocationFailed(errors.New("no positioning provider configured"))
			return
		}

		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()

		pos, err := d.provider.GetPosition(ctx)
		if err != nil {
			h.LocationFailed(err)
			return
		}

		h.LocationUpdated(pos, time.Now())
	}()
}

// Close stops in-flight queries and releases the provider.
func (d *DeviceSource) Close() error {
	d.cancel()
	d.wg.Wait()

	if d.provider == nil {
		return nil
	}
	return d.provider.Close()
}

func (d *DeviceSource) currentHandler() Events {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handler
}
