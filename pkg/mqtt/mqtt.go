package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"

	"github.com/hush-sos/sos-agent/pkg/file"
)

// Client defines the interface for the shared MQTT connection.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error
	Unsubscribe(topics ...string) error
	IsConnected() bool
	Disconnect(quiesce uint)
}

// PahoClient wraps the paho MQTT client with error-returning operations.
type PahoClient struct {
	client      mqttLib.Client
	fileClient  file.FileOperations
	waitTimeout time.Duration
}

// NewPahoClient creates a new PahoClient instance.
func NewPahoClient(fileClient file.FileOperations, waitTimeout time.Duration) *PahoClient {
	return &PahoClient{
		fileClient:  fileClient,
		waitTimeout: waitTimeout,
	}
}

// Initialize sets up the MQTT client and connects to the broker. A CA
// certificate path enables TLS; an empty path connects in plaintext.
func (s *PahoClient) Initialize(broker, clientID, caCertPath string) error {
	opts := mqttLib.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)

	if caCertPath != "" {
		caCert, err := s.fileClient.ReadFileRaw(caCertPath)
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return fmt.Errorf("failed to append CA certificate")
		}

		opts.SetTLSConfig(&tls.Config{RootCAs: caCertPool})
	}

	s.client = mqttLib.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(s.waitTimeout) {
		return fmt.Errorf("timed out connecting to broker %s", broker)
	}
	return token.Error()
}

// Publish sends a message to the specified topic.
func (s *PahoClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := s.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(s.waitTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	return token.Error()
}

// Subscribe subscribes to the specified topic with a message handler.
func (s *PahoClient) Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error {
	token := s.client.Subscribe(topic, qos, callback)
	if !token.WaitTimeout(s.waitTimeout) {
		return fmt.Errorf("timed out subscribing to %s", topic)
	}
	return token.Error()
}

// Unsubscribe unsubscribes from the specified topics.
func (s *PahoClient) Unsubscribe(topics ...string) error {
	token := s.client.Unsubscribe(topics...)
	if !token.WaitTimeout(s.waitTimeout) {
		return fmt.Errorf("timed out unsubscribing from %v", topics)
	}
	return token.Error()
}

// IsConnected reports whether the underlying client holds a live connection.
func (s *PahoClient) IsConnected() bool {
	return s.client != nil && s.client.IsConnected()
}

// Disconnect gracefully disconnects the MQTT client.
func (s *PahoClient) Disconnect(quiesce uint) {
	if s.client != nil {
		s.client.Disconnect(quiesce)
	}
}
