package models

import "time"

// StatusReport represents the periodic agent status event.
type StatusReport struct {
	DeviceID          string    `json:"device_id"`
	Timestamp         time.Time `json:"timestamp"`
	AgentVersion      string    `json:"agent_version"`
	ContactCount      int       `json:"contact_count"`
	LocationStatus    string    `json:"location_status"`
	Permission        string    `json:"permission"`
	HasFix            bool      `json:"has_fix"`
	SOSReady          bool      `json:"sos_ready"`
	UptimeSeconds     uint64    `json:"uptime_seconds"`
	MemoryUsedPercent float64   `json:"memory_used_percent"`
}
