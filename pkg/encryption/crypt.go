package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"

	"github.com/hush-sos/sos-agent/pkg/file"
)

// scrypt parameters for deriving the AES key from the operator passphrase.
const (
	scryptN   = 1 << 15
	scryptR   = 8
	scryptP   = 1
	keySize   = 32
	saltSize  = 16
	nonceSize = 12
)

// EncryptionManagerInterface defines encryption and decryption methods.
type EncryptionManagerInterface interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// EncryptionManager implements AES-GCM encryption with a scrypt-derived key.
type EncryptionManager struct {
	fileClient file.FileOperations
	aesgcm     cipher.AEAD
}

// NewEncryptionManager creates a new EncryptionManager instance.
func NewEncryptionManager(fileClient file.FileOperations) *EncryptionManager {
	return &EncryptionManager{fileClient: fileClient}
}

// Initialize derives the AES key from the passphrase file and caches the
// AES-GCM cipher. The salt is generated on first use and persisted next to
// the passphrase so the same key is derived across restarts.
func (a *EncryptionManager) Initialize(passphrasePath, saltPath string) error {
	passphrase, err := a.fileClient.ReadFileRaw(passphrasePath)
	if err != nil || len(passphrase) == 0 {
		return fmt.Errorf("failed to read or validate passphrase: %w", err)
	}

	salt, err := a.loadOrCreateSalt(saltPath)
	if err != nil {
		return err
	}

	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return fmt.Errorf("failed to derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create AES cipher block: %w", err)
	}

	a.aesgcm, err = cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create AES-GCM: %w", err)
	}

	return nil
}

// Encrypt encrypts plaintext using AES-GCM.
func (a *EncryptionManager) Encrypt(plaintext []byte) ([]byte, error) {
	if a.aesgcm == nil {
		return nil, errors.New("encryption manager not initialized")
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := a.aesgcm.Seal(nonce[:], nonce[:], plaintext, nil)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-GCM.
func (a *EncryptionManager) Decrypt(ciphertext []byte) ([]byte, error) {
	if a.aesgcm == nil {
		return nil, errors.New("encryption manager not initialized")
	}

	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short: must include nonce and encrypted data")
	}

	nonce := ciphertext[:nonceSize]
	encryptedData := ciphertext[nonceSize:]

	plaintext, err := a.aesgcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

func (a *EncryptionManager) loadOrCreateSalt(saltPath string) ([]byte, error) {
	salt, err := a.fileClient.ReadFileRaw(saltPath)
	if err == nil && len(salt) == saltSize {
		return salt, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := a.fileClient.WriteFileRaw(saltPath, salt); err != nil {
		return nil, fmt.Errorf("failed to persist salt: %w", err)
	}

	return salt, nil
}
