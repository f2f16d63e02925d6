package store_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hush-sos/sos-agent/internal/store"
	"github.com/hush-sos/sos-agent/pkg/file"
	"github.com/hush-sos/sos-agent/pkg/kvstore"
)

func newTestKV(t *testing.T) *kvstore.FileStore {
	t.Helper()
	kv, err := kvstore.NewFileStore(t.TempDir(), file.NewFileService())
	assert.NoError(t, err)
	return kv
}

// TestContactStore_AddPreservesInsertionOrder verifies PhoneNumbers returns
// numbers in the exact order contacts were added.
func TestContactStore_AddPreservesInsertionOrder(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	s.Add("Mum", "0400000000", "Parent")
	s.Add("Dad", "0400000001", "Parent")
	s.Add("Sam", "0400000002", "Friend")

	assert.Equal(t, []string{"0400000000", "0400000001", "0400000002"}, s.PhoneNumbers())
	assert.Equal(t, 3, s.Count())
}

// TestContactStore_AddAssignsUniqueIDs verifies fresh stable identifiers.
func TestContactStore_AddAssignsUniqueIDs(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	first := s.Add("Mum", "0400000000", "Parent")
	second := s.Add("Mum", "0400000000", "Parent") // duplicates are allowed

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

// TestContactStore_RemoveAt verifies removal drops the right contact and
// preserves the relative order of survivors.
func TestContactStore_RemoveAt(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	s.Add("A", "111", "")
	s.Add("B", "222", "")
	s.Add("C", "333", "")

	s.RemoveAt(1)

	assert.Equal(t, []string{"111", "333"}, s.PhoneNumbers())
}

// TestContactStore_RemoveAt_MultipleAtomic verifies multi-index removal in
// one update.
func TestContactStore_RemoveAt_MultipleAtomic(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	s.Add("A", "111", "")
	s.Add("B", "222", "")
	s.Add("C", "333", "")
	s.Add("D", "444", "")

	s.RemoveAt(0, 2)

	assert.Equal(t, []string{"222", "444"}, s.PhoneNumbers())
}

// TestContactStore_RemoveAt_OutOfRange verifies out-of-range indices are
// ignored rather than failing the whole operation.
func TestContactStore_RemoveAt_OutOfRange(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	s.Add("A", "111", "")
	s.Add("B", "222", "")

	s.RemoveAt(5)
	assert.Equal(t, []string{"111", "222"}, s.PhoneNumbers())

	s.RemoveAt(-1, 1, 99)
	assert.Equal(t, []string{"111"}, s.PhoneNumbers())
}

// TestContactStore_PersistReloadRoundTrip verifies a saved list reloads
// field-for-field in the same order.
func TestContactStore_PersistReloadRoundTrip(t *testing.T) {
	kv := newTestKV(t)

	s := store.NewContactStore(kv, zerolog.Nop())
	s.Add("Mum", "0400000000", "Parent")
	s.Add("Neighbour", "0400123456", "Neighbour")

	reloaded := store.NewContactStore(kv, zerolog.Nop())

	assert.Equal(t, s.Contacts(), reloaded.Contacts())
	assert.Equal(t, []string{"0400000000", "0400123456"}, reloaded.PhoneNumbers())
}

// TestContactStore_CorruptDataDegradesToEmpty verifies decode failure resets
// to an empty list without error.
func TestContactStore_CorruptDataDegradesToEmpty(t *testing.T) {
	kv := newTestKV(t)
	assert.NoError(t, kv.Set("EmergencyContacts", []byte("{not json")))

	s := store.NewContactStore(kv, zerolog.Nop())

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.PhoneNumbers())
}

// TestContactStore_EmptyPhoneNumbersNotFiltered verifies empty numbers pass
// through to the caller unchanged.
func TestContactStore_EmptyPhoneNumbersNotFiltered(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	s.Add("A", "111", "")
	s.Add("NoPhone", "", "")

	assert.Equal(t, []string{"111", ""}, s.PhoneNumbers())
}

// TestContactStore_Clear verifies the bulk reset persists an empty list.
func TestContactStore_Clear(t *testing.T) {
	kv := newTestKV(t)

	s := store.NewContactStore(kv, zerolog.Nop())
	s.Add("A", "111", "")
	s.Clear()

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, store.NewContactStore(kv, zerolog.Nop()).Count())
}

// TestContactStore_Scenario_SingleContact is the canonical add-then-list flow.
func TestContactStore_Scenario_SingleContact(t *testing.T) {
	s := store.NewContactStore(newTestKV(t), zerolog.Nop())

	contact := s.Add("Mum", "0400000000", "Parent")

	assert.Equal(t, "Mum", contact.Name)
	assert.Equal(t, "Parent", contact.Relationship)
	assert.Equal(t, []string{"0400000000"}, s.PhoneNumbers())
}
