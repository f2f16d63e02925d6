package models

import "time"

// SOSTrigger is the payload received on the SOS trigger topic.
type SOSTrigger struct {
	TemplateID     string `json:"template_id"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// DispatchRequest is the message sent to the SMS gateway.
type DispatchRequest struct {
	MessageID  string    `json:"message_id"`
	DeviceID   string    `json:"device_id"`
	Recipients []string  `json:"recipients"`
	Body       string    `json:"body"`
	AuthToken  string    `json:"auth_token,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// DispatchOutcome is the gateway's verdict for a single dispatch request.
type DispatchOutcome struct {
	MessageID string `json:"message_id"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
}

// SOSReport is published after an SOS attempt so operators can see what
// happened without interpreting gateway internals.
type SOSReport struct {
	DeviceID   string    `json:"device_id"`
	MessageID  string    `json:"message_id,omitempty"`
	TemplateID string    `json:"template_id"`
	Outcome    string    `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
}
