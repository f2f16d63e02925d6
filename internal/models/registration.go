package models

// RegistrationPayload represents the hello sent to the SMS gateway.
type RegistrationPayload struct {
	// ClientID is the unique identifier for the client connection.
	ClientID string `json:"client_id,omitempty"`

	// DeviceID is the gateway-assigned identifier, when already known.
	DeviceID string `json:"device_id,omitempty"`

	// DeviceName is the operator-facing name of the device.
	DeviceName string `json:"device_name,omitempty"`

	// AgentVersion is the running agent version, for gateway compatibility checks.
	AgentVersion string `json:"agent_version"`
}

// RegistrationResponse represents the gateway's reply to a registration.
type RegistrationResponse struct {
	// DeviceID is the identifier assigned to the device.
	DeviceID string `json:"device_id"`

	// AuthToken authenticates subsequent dispatch requests.
	AuthToken string `json:"auth_token,omitempty"`

	// MinAgentVersion is the oldest agent version the gateway supports.
	MinAgentVersion string `json:"min_agent_version,omitempty"`
}
