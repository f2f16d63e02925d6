package token

import (
	"errors"
	"os"

	"github.com/hush-sos/sos-agent/pkg/encryption"
	"github.com/hush-sos/sos-agent/pkg/file"
)

// ManagerInterface defines methods to manage the gateway auth token.
type ManagerInterface interface {
	Load() error
	Save(token string) error
	Get() string
}

// Manager persists the SMS-gateway auth token encrypted at rest.
type Manager struct {
	TokenFilePath     string
	Token             string
	FileOps           file.FileOperations
	EncryptionManager encryption.EncryptionManagerInterface
}

// NewManager initializes a new token Manager instance.
func NewManager(tokenFilePath string, fileOps file.FileOperations, encryptionManager encryption.EncryptionManagerInterface) ManagerInterface {
	return &Manager{
		TokenFilePath:     tokenFilePath,
		FileOps:           fileOps,
		EncryptionManager: encryptionManager,
	}
}

// Load reads the token from the file. A missing or empty file initializes
// the token to the empty string.
func (m *Manager) Load() error {
	data, err := m.FileOps.ReadFileRaw(m.TokenFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.Token = ""
			return nil
		}
		return err
	}

	if len(data) == 0 {
		m.Token = ""
		return nil
	}

	decrypted, err := m.EncryptionManager.Decrypt(data)
	if err != nil {
		return err
	}

	m.Token = string(decrypted)
	return nil
}

// Save encrypts and persists the given token.
func (m *Manager) Save(token string) error {
	if token == "" {
		return errors.New("refusing to save empty token")
	}

	encrypted, err := m.EncryptionManager.Encrypt([]byte(token))
	if err != nil {
		return err
	}

	if err := m.FileOps.WriteFileRaw(m.TokenFilePath, encrypted); err != nil {
		return err
	}

	m.Token = token
	return nil
}

// Get returns the current token, or the empty string when none is held.
func (m *Manager) Get() string {
	return m.Token
}
