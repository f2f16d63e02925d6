package store

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/pkg/kvstore"
)

// userNameKey is the key-value entry holding the display name, independent
// of the contact list.
const userNameKey = "UserName"

// ProfileStore holds the user's optional display name.
type ProfileStore struct {
	mu     sync.Mutex
	kv     kvstore.Store
	name   string
	logger zerolog.Logger
}

// NewProfileStore creates a ProfileStore and loads any persisted name.
func NewProfileStore(kv kvstore.Store, logger zerolog.Logger) *ProfileStore {
	s := &ProfileStore{
		kv:     kv,
		logger: logger,
	}

	data, err := kv.Get(userNameKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn().Err(err).Msg("Failed to read stored user name, starting empty")
		}
		return s
	}
	s.name = string(data)

	return s
}

// Name returns the stored display name, or the empty string.
func (s *ProfileStore) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName stores the display name. Persistence errors are logged, not surfaced.
func (s *ProfileStore) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
	if err := s.kv.Set(userNameKey, []byte(name)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist user name")
	}
}
