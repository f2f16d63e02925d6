package constants

// AgentVersion is the released version of the agent, reported to the
// gateway during registration and in status messages.
const AgentVersion = "1.2.0"

// AppName identifies the agent in operator-facing output.
const AppName = "Hush SOS Agent"

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultMQTTWaitTimeout = 10  // seconds
	DefaultDispatchTimeout = 30  // seconds
	DefaultLocationTimeout = 15  // seconds
	DefaultStatusInterval  = 300 // seconds
	DefaultResponseTimeout = 10  // seconds
	DefaultGPSBaudRate     = 9600
)
