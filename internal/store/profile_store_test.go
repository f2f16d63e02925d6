package store_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hush-sos/sos-agent/internal/store"
)

// TestProfileStore_DefaultEmpty verifies a fresh store holds no name.
func TestProfileStore_DefaultEmpty(t *testing.T) {
	s := store.NewProfileStore(newTestKV(t), zerolog.Nop())
	assert.Equal(t, "", s.Name())
}

// TestProfileStore_SetAndReload verifies the name round-trips independently
// of the contact list.
func TestProfileStore_SetAndReload(t *testing.T) {
	kv := newTestKV(t)

	s := store.NewProfileStore(kv, zerolog.Nop())
	s.SetName("Jedda")
	assert.Equal(t, "Jedda", s.Name())

	reloaded := store.NewProfileStore(kv, zerolog.Nop())
	assert.Equal(t, "Jedda", reloaded.Name())

	// The contact list key is untouched
	assert.Equal(t, 0, store.NewContactStore(kv, zerolog.Nop()).Count())
}
