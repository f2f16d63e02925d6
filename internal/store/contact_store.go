package store

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hush-sos/sos-agent/internal/models"
	"github.com/hush-sos/sos-agent/internal/utils"
	"github.com/hush-sos/sos-agent/pkg/kvstore"
)

// contactsKey is the key-value entry holding the serialized contact list.
const contactsKey = "EmergencyContacts"

// ContactStore owns the ordered list of emergency contacts and persists it
// as a whole-list JSON blob. Storage failures degrade to an empty list and
// are never surfaced to callers; losing the list only means contacts must
// be re-entered.
type ContactStore struct {
	mu       sync.Mutex
	kv       kvstore.Store
	contacts []models.EmergencyContact
	logger   zerolog.Logger
}

// NewContactStore creates a ContactStore backed by the given key-value store
// and loads any persisted contacts.
func NewContactStore(kv kvstore.Store, logger zerolog.Logger) *ContactStore {
	s := &ContactStore{
		kv:     kv,
		logger: logger,
	}
	s.load()
	return s
}

// load reads the persisted contact list. Missing or undecodable data resets
// the list to empty.
func (s *ContactStore) load() {
	data, err := s.kv.Get(contactsKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to read stored contacts, starting empty")
		}
		s.contacts = nil
		return
	}

	var saved []models.EmergencyContact
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.Warn().Err(err).Msg("Stored contacts are not decodable, starting empty")
		s.contacts = nil
		return
	}

	s.contacts = saved
}

// save persists the full contact list. Errors are logged and swallowed.
func (s *ContactStore) save() {
	data, err := json.Marshal(s.contacts)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to serialize contacts")
		return
	}

	if err := s.kv.Set(contactsKey, data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist contacts")
	}
}

// Add creates a contact with a fresh ID, appends it to the list and persists
// the result. No uniqueness constraint applies across contacts.
func (s *ContactStore) Add(name, phoneNumber, relationship string) models.EmergencyContact {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact := models.EmergencyContact{
		ID:           uuid.NewString(),
		Name:         name,
		PhoneNumber:  phoneNumber,
		Relationship: relationship,
	}

	s.contacts = append(s.contacts, contact)
	s.save()

	s.logger.Info().Str("contact_id", contact.ID).Msg("Emergency contact added")
	return contact
}

// RemoveAt removes the contacts at the given positions in one atomic update,
// preserving the relative order of survivors. Out-of-range indices are
// ignored.
func (s *ContactStore) RemoveAt(indices ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := utils.SliceToSet(indices)

	kept := s.contacts[:0]
	removed := 0
	for i, c := range s.contacts {
		if _, ok := drop[i]; ok {
			removed++
			continue
		}
		kept = append(kept, c)
	}

	if removed == 0 {
		return
	}

	s.contacts = kept
	s.save()

	s.logger.Info().Int("removed", removed).Msg("Emergency contacts removed")
}

// Clear removes all contacts and persists the empty list.
func (s *ContactStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.contacts) == 0 {
		return
	}

	s.contacts = nil
	s.save()
}

// Contacts returns a copy of the contact list in insertion order.
func (s *ContactStore) Contacts() []models.EmergencyContact {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.EmergencyContact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// PhoneNumbers returns the phone numbers in current list order. Empty
// numbers are not filtered; whether the gateway tolerates them is its call.
func (s *ContactStore) PhoneNumbers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	numbers := make([]string, 0, len(s.contacts))
	for _, c := range s.contacts {
		numbers = append(numbers, c.PhoneNumber)
	}
	return numbers
}

// Count returns the number of stored contacts.
func (s *ContactStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}
