package location

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/pkg/gps"
)

// PermissionState models the platform authorization lifecycle.
type PermissionState int

const (
	PermissionUnrequested PermissionState = iota
	PermissionPending
	PermissionGranted
	PermissionDenied
	PermissionRestricted
)

var permissionNames = map[PermissionState]string{
	PermissionUnrequested: "unrequested",
	PermissionPending:     "pending",
	PermissionGranted:     "granted",
	PermissionDenied:      "denied",
	PermissionRestricted:  "restricted",
}

// String returns the lowercase name of the permission state.
func (p PermissionState) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "unknown"
}

// Status strings. The short located status renders 4 decimal places for a
// quick glance; EmergencyLocationText renders 6 for precise dispatch. The
// two precisions are intentional and must stay distinct.
const (
	statusInitial          = "Getting your location..."
	statusWaiting          = "Waiting for permission..."
	statusPermissionDenied = "Location permission denied"
	StatusPermissionNeeded = "Location permission needed"
	statusFailed           = "Location failed"
	TextNoLocation         = "Location not available"
)

// Snapshot is the most recently acquired fix, held until superseded.
type Snapshot struct {
	Latitude   float64
	Longitude  float64
	CapturedAt time.Time
}

// State is a consistent read of the monitor's triple. Snapshot is nil until
// a fix has been resolved.
type State struct {
	Permission PermissionState
	Snapshot   *Snapshot
	Status     string
}

// Events is the callback contract delivered by the positioning source.
type Events interface {
	AuthorizationChanged(state PermissionState)
	LocationUpdated(pos gps.Position, at time.Time)
	LocationFailed(err error)
}

// Source is the asynchronous platform boundary behind the monitor. Both
// request methods are fire-and-forget; results arrive via the Events handler.
type Source interface {
	SetHandler(h Events)
	RequestAuthorization()
	RequestLocation()
	Close() error
}

// Monitor owns the latest snapshot, permission state and status string. All
// mutation happens under one mutex so a reader never observes a snapshot
// paired with a stale status. It is the single Events handler for its source.
type Monitor struct {
	mu         sync.Mutex
	source     Source
	permission PermissionState
	snapshot   *Snapshot
	status     string

	logger zerolog.Logger
	now    func() time.Time
}

// NewMonitor creates a Monitor with no source attached.
func NewMonitor(logger zerolog.Logger) *Monitor {
	return &Monitor{
		permission: PermissionUnrequested,
		status:     statusInitial,
		logger:     logger,
		now:        time.Now,
	}
}

// AttachSource registers the monitor as the source's event handler.
func (m *Monitor) AttachSource(src Source) {
	m.mu.Lock()
	m.source = src
	m.mu.Unlock()
	src.SetHandler(m)
}

// RequestPermission triggers the platform authorization prompt. The outcome
// arrives asynchronously via AuthorizationChanged.
func (m *Monitor) RequestPermission() {
	m.mu.Lock()
	if m.permission == PermissionUnrequested {
		m.permission = PermissionPending
		m.status = statusWaiting
	}
	src := m.source
	m.mu.Unlock()

	if src != nil {
		src.RequestAuthorization()
	}
}

// RequestLocation queries the device for a fix. Without a granted permission
// no query is made and the status records what is missing.
func (m *Monitor) RequestLocation() {
	m.mu.Lock()
	if m.permission != PermissionGranted {
		m.status = StatusPermissionNeeded
		m.mu.Unlock()
		return
	}
	src := m.source
	m.mu.Unlock()

	if src != nil {
		src.RequestLocation()
	}
}

// AuthorizationChanged applies a permission transition. Granted auto-triggers
// a location request; denied and restricted record the refusal and stop.
func (m *Monitor) AuthorizationChanged(state PermissionState) {
	m.mu.Lock()
	m.permission = state
	switch state {
	case PermissionDenied, PermissionRestricted:
		m.status = statusPermissionDenied
	case PermissionUnrequested, PermissionPending:
		m.status = statusWaiting
	}
	m.mu.Unlock()

	m.logger.Info().Str("permission", state.String()).Msg("Location authorization changed")

	if state == PermissionGranted {
		m.RequestLocation()
	}
}

// LocationUpdated applies a new fix. A fix older than the current snapshot
// is dropped; the snapshot never rolls back.
func (m *Monitor) LocationUpdated(pos gps.Position, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot != nil && at.Before(m.snapshot.CapturedAt) {
		m.logger.Debug().Time("fix_time", at).Msg("Ignoring stale fix")
		return
	}

	m.snapshot = &Snapshot{
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
		CapturedAt: at,
	}
	m.status = fmt.Sprintf("Located: %.4f, %.4f", pos.Latitude, pos.Longitude)
}

// LocationFailed records the failure. Any existing snapshot is retained;
// stale-but-present beats none.
func (m *Monitor) LocationFailed(err error) {
	m.mu.Lock()
	m.status = statusFailed
	m.mu.Unlock()

	m.logger.Warn().Err(err).Msg("Location query failed")
}

// State returns a consistent copy of (permission, snapshot, status).
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		Permission: m.permission,
		Status:     m.status,
	}
	if m.snapshot != nil {
		snap := *m.snapshot
		st.Snapshot = &snap
	}
	return st
}

// Status returns the current human-readable status string.
func (m *Monitor) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Permission returns the current permission state.
func (m *Monitor) Permission() PermissionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permission
}

// HasFix reports whether a snapshot has ever been resolved.
func (m *Monitor) HasFix() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot != nil
}

// EmergencyLocationText renders the high-precision location block included
// in outgoing SOS messages.
func (m *Monitor) EmergencyLocationText() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot == nil {
		return TextNoLocation
	}

	return fmt.Sprintf("📍 EXACT LOCATION:\nLatitude: %.6f\nLongitude: %.6f\nTime: %s",
		m.snapshot.Latitude,
		m.snapshot.Longitude,
		m.now().Format("2 Jan 2006, 3:04 PM"))
}

// Close releases the attached source, if any.
func (m *Monitor) Close() error {
	m.mu.Lock()
	src := m.source
	m.mu.Unlock()

	if src == nil {
		return nil
	}
	return src.Close()
}
