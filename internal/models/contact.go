package models

// EmergencyContact represents a person who can call emergency services on
// the user's behalf. The JSON field names are part of the stored format and
// must not change.
type EmergencyContact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber"`
	Relationship string `json:"relationship"`
}
