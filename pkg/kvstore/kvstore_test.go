package kvstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hush-sos/sos-agent/pkg/file"
	"github.com/hush-sos/sos-agent/pkg/kvstore"
)

func newStore(t *testing.T) *kvstore.FileStore {
	t.Helper()
	s, err := kvstore.NewFileStore(t.TempDir(), file.NewFileService())
	assert.NoError(t, err)
	return s
}

// TestFileStore_GetMissingKey verifies the sentinel error for absent keys.
func TestFileStore_GetMissingKey(t *testing.T) {
	s := newStore(t)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

// TestFileStore_SetAndGet verifies a round trip.
func TestFileStore_SetAndGet(t *testing.T) {
	s := newStore(t)

	assert.NoError(t, s.Set("EmergencyContacts", []byte(`[{"name":"Mum"}]`)))

	value, err := s.Get("EmergencyContacts")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[{"name":"Mum"}]`), value)
}

// TestFileStore_SetOverwrites verifies the latest value wins.
func TestFileStore_SetOverwrites(t *testing.T) {
	s := newStore(t)

	assert.NoError(t, s.Set("UserName", []byte("Jedda")))
	assert.NoError(t, s.Set("UserName", []byte("Banjo")))

	value, err := s.Get("UserName")
	assert.NoError(t, err)
	assert.Equal(t, []byte("Banjo"), value)
}

// TestFileStore_Delete verifies deletion and that deleting a missing key is
// not an error.
func TestFileStore_Delete(t *testing.T) {
	s := newStore(t)

	assert.NoError(t, s.Set("UserName", []byte("Jedda")))
	assert.NoError(t, s.Delete("UserName"))

	_, err := s.Get("UserName")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	assert.NoError(t, s.Delete("UserName"))
}

// TestFileStore_CreatesDataDirectory verifies a nested data directory is
// created on construction.
func TestFileStore_CreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s, err := kvstore.NewFileStore(dir, file.NewFileService())
	assert.NoError(t, err)
	assert.NoError(t, s.Set("UserName", []byte("Jedda")))
}
