package utils

import (
	"time"

	"github.com/hush-sos/sos-agent/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate (empty disables TLS)
	} `yaml:"mqtt"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	Storage struct {
		DataDir string `yaml:"data_dir"` // Directory backing the key-value store
	} `yaml:"storage"`

	Security struct {
		PassphraseFile string `yaml:"passphrase_file"` // Path to the encryption passphrase file
		SaltFile       string `yaml:"salt_file"`       // Path to the key-derivation salt file
		TokenFile      string `yaml:"token_file"`      // Path to the encrypted gateway token file
	} `yaml:"security"`

	Profile struct {
		UserName string `yaml:"user_name"` // Seed value for the stored display name (optional)
	} `yaml:"profile"`

	Location struct {
		Consent           string        `yaml:"consent"`         // Operator consent: granted, denied or restricted
		SensorBased       bool          `yaml:"sensor_based"`    // Use GPS sensor or geolocation API
		GPSDevicePort     string        `yaml:"gps_device_port"` // UNIX port where the GPS sensor is mounted
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`   // The baud rate for the GPS sensor
		MapsAPIKey        string        `yaml:"maps_api_key"`    // Google maps API key
		QueryTimeout      time.Duration `yaml:"query_timeout"`   // Timeout for a single position query (in seconds)
	} `yaml:"location"`

	Services struct {
		Registration struct {
			Enabled         bool          `yaml:"enabled"`          // Enable/disable registration service
			Topic           string        `yaml:"topic"`            // MQTT topic for gateway registration
			QOS             int           `yaml:"qos"`              // MQTT QoS level for registration messages
			ResponseTimeout time.Duration `yaml:"response_timeout"` // Timeout waiting for the gateway response (in seconds)
		} `yaml:"registration"`

		SOS struct {
			Enabled         bool          `yaml:"enabled"`          // Enable/disable SOS service
			TriggerTopic    string        `yaml:"trigger_topic"`    // MQTT topic delivering SOS triggers
			GatewayTopic    string        `yaml:"gateway_topic"`    // MQTT topic of the SMS gateway
			OutcomeTopic    string        `yaml:"outcome_topic"`    // MQTT topic delivering gateway outcomes
			ReportTopic     string        `yaml:"report_topic"`     // MQTT topic for SOS reports
			QOS             int           `yaml:"qos"`              // MQTT QoS level for SOS messages
			DispatchTimeout time.Duration `yaml:"dispatch_timeout"` // Max wait for a gateway outcome (in seconds)
		} `yaml:"sos"`

		Status struct {
			Enabled  bool          `yaml:"enabled"`  // Enable/disable status service
			Topic    string        `yaml:"topic"`    // MQTT topic for status reports
			Interval time.Duration `yaml:"interval"` // Interval between status reports (in seconds)
			QOS      int           `yaml:"qos"`      // MQTT QoS level for status messages
		} `yaml:"status"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
