package location_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hush-sos/sos-agent/internal/location"
	"github.com/hush-sos/sos-agent/pkg/gps"
)

// fakeSource records requests and lets tests drive events synchronously.
type fakeSource struct {
	handler      location.Events
	authRequests int
	fixRequests  int
	closed       bool
}

func (f *fakeSource) SetHandler(h location.Events) { f.handler = h }
func (f *fakeSource) RequestAuthorization()        { f.authRequests++ }
func (f *fakeSource) RequestLocation()             { f.fixRequests++ }
func (f *fakeSource) Close() error                 { f.closed = true; return nil }

func newTestMonitor(t *testing.T) (*location.Monitor, *fakeSource) {
	t.Helper()
	m := location.NewMonitor(zerolog.Nop())
	src := &fakeSource{}
	m.AttachSource(src)
	return m, src
}

// TestMonitor_InitialState verifies the pre-permission defaults.
func TestMonitor_InitialState(t *testing.T) {
	m, _ := newTestMonitor(t)

	state := m.State()
	assert.Equal(t, location.PermissionUnrequested, state.Permission)
	assert.Nil(t, state.Snapshot)
	assert.Equal(t, "Getting your location...", state.Status)
}

// TestMonitor_RequestPermission verifies the pending transition and prompt.
func TestMonitor_RequestPermission(t *testing.T) {
	m, src := newTestMonitor(t)

	m.RequestPermission()

	assert.Equal(t, location.PermissionPending, m.Permission())
	assert.Equal(t, "Waiting for permission...", m.Status())
	assert.Equal(t, 1, src.authRequests)
}

// TestMonitor_GrantedAutoTriggersLocationRequest verifies the granted
// transition immediately queries the device.
func TestMonitor_GrantedAutoTriggersLocationRequest(t *testing.T) {
	m, src := newTestMonitor(t)

	m.AuthorizationChanged(location.PermissionGranted)

	assert.Equal(t, location.PermissionGranted, m.Permission())
	assert.Equal(t, 1, src.fixRequests)
}

// TestMonitor_DeniedStopsAndRecordsStatus verifies denied and restricted
// both record the refusal and make no device query.
func TestMonitor_DeniedStopsAndRecordsStatus(t *testing.T) {
	for _, state := range []location.PermissionState{location.PermissionDenied, location.PermissionRestricted} {
		m, src := newTestMonitor(t)

		m.AuthorizationChanged(state)

		assert.Equal(t, state, m.Permission())
		assert.Equal(t, "Location permission denied", m.Status())
		assert.Equal(t, 0, src.fixRequests)
	}
}

// TestMonitor_RequestLocationWithoutPermission verifies the guard status and
// that no device query happens.
func TestMonitor_RequestLocationWithoutPermission(t *testing.T) {
	m, src := newTestMonitor(t)

	m.RequestLocation()

	assert.Equal(t, location.StatusPermissionNeeded, m.Status())
	assert.Equal(t, 0, src.fixRequests)
}

// TestMonitor_LocationUpdated verifies the short status renders 4 decimal
// places and the snapshot is stored.
func TestMonitor_LocationUpdated(t *testing.T) {
	m, _ := newTestMonitor(t)
	m.AuthorizationChanged(location.PermissionGranted)

	at := time.Now()
	m.LocationUpdated(gps.Position{Latitude: -33.8651234, Longitude: 151.2096543}, at)

	state := m.State()
	assert.Equal(t, "Located: -33.8651, 151.2097", state.Status)
	if assert.NotNil(t, state.Snapshot) {
		assert.Equal(t, -33.8651234, state.Snapshot.Latitude)
		assert.Equal(t, 151.2096543, state.Snapshot.Longitude)
		assert.Equal(t, at, state.Snapshot.CapturedAt)
	}
}

// TestMonitor_StaleFixNeverRollsBack verifies an older fix cannot replace a
// newer snapshot.
func TestMonitor_StaleFixNeverRollsBack(t *testing.T) {
	m, _ := newTestMonitor(t)

	newer := time.Now()
	older := newer.Add(-time.Minute)

	m.LocationUpdated(gps.Position{Latitude: 1, Longitude: 2}, newer)
	m.LocationUpdated(gps.Position{Latitude: 9, Longitude: 9}, older)

	state := m.State()
	assert.Equal(t, 1.0, state.Snapshot.Latitude)
	assert.Equal(t, newer, state.Snapshot.CapturedAt)
}

// TestMonitor_FailureRetainsSnapshot verifies stale-but-present beats none.
func TestMonitor_FailureRetainsSnapshot(t *testing.T) {
	m, _ := newTestMonitor(t)

	m.LocationUpdated(gps.Position{Latitude: 1, Longitude: 2}, time.Now())
	m.LocationFailed(assert.AnError)

	state := m.State()
	assert.Equal(t, "Location failed", state.Status)
	assert.NotNil(t, state.Snapshot)
	assert.True(t, m.HasFix())
}

// TestMonitor_EmergencyLocationText_NoFix verifies the placeholder text.
func TestMonitor_EmergencyLocationText_NoFix(t *testing.T) {
	m, _ := newTestMonitor(t)

	assert.Equal(t, "Location not available", m.EmergencyLocationText())
}

// TestMonitor_EmergencyLocationText_SixDecimals verifies the high-precision
// rendering stays distinct from the 4-decimal status.
func TestMonitor_EmergencyLocationText_SixDecimals(t *testing.T) {
	m, _ := newTestMonitor(t)

	m.LocationUpdated(gps.Position{Latitude: -33.8651234, Longitude: 151.2096543}, time.Now())

	text := m.EmergencyLocationText()
	assert.Contains(t, text, "📍 EXACT LOCATION:")
	assert.Contains(t, text, "Latitude: -33.865123")
	assert.Contains(t, text, "Longitude: 151.209654")
	assert.Contains(t, text, "Time: ")
	assert.NotEqual(t, text, m.Status())
}

// TestMonitor_StateIsConsistentCopy verifies readers get a copy, not the
// internal snapshot.
func TestMonitor_StateIsConsistentCopy(t *testing.T) {
	m, _ := newTestMonitor(t)
	m.LocationUpdated(gps.Position{Latitude: 1, Longitude: 2}, time.Now())

	state := m.State()
	state.Snapshot.Latitude = 99

	assert.Equal(t, 1.0, m.State().Snapshot.Latitude)
}

// TestMonitor_Close releases the attached source.
func TestMonitor_Close(t *testing.T) {
	m, src := newTestMonitor(t)

	assert.NoError(t, m.Close())
	assert.True(t, src.closed)
}
