// Package crypto seals shared secrets at rest with AES-256-GCM so that a
// webhook secret can be deployed as WEBHOOK_SECRET_ENCRYPTED instead of in
// plain text.
//
// Each Seal uses a fresh random nonce, so sealing the same secret twice gives
// different outputs. Open authenticates before it returns anything.
//
// Example usage:
//
//	encryptor, err := crypto.NewConfigEncryptor(os.Getenv("CONFIG_ENCRYPTION_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sealed, err := encryptor.Seal("super-secret")
//	...
//	secret, err := encryptor.Open(sealed)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"webhook-guard/internal/common/errors"
)

const (
	keySalt       = "webhook-guard-secret-salt"
	keyIterations = 10000
	keyLength     = 32
)

// ConfigEncryptor seals and opens secrets. It is safe for concurrent use.
type ConfigEncryptor struct {
	aead cipher.AEAD
}

// NewConfigEncryptor derives an AES-256 key from passphrase with PBKDF2.
// The salt is static so that the same passphrase always opens the same values.
func NewConfigEncryptor(passphrase string) (*ConfigEncryptor, error) {
	if passphrase == "" {
		return nil, errors.ConfigError("encryption key cannot be empty")
	}

	key := pbkdf2.Key([]byte(passphrase), []byte(keySalt), keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.InternalError("failed to create cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.InternalError("failed to create GCM", err)
	}

	return &ConfigEncryptor{aead: aead}, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
func (e *ConfigEncryptor) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.ConfigError("refusing to seal an empty secret")
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.InternalError("failed to create nonce", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. A wrong key, a truncated value or any tampering is a
// config error: the service cannot start with a secret it cannot open.
func (e *ConfigEncryptor) Open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.ConfigError("sealed secret is not valid base64")
	}

	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize+e.aead.Overhead() {
		return "", errors.ConfigError("sealed secret is too short")
	}

	plaintext, err := e.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", errors.ConfigError("sealed secret could not be opened").WithContext("cause", err.Error())
	}
	return string(plaintext), nil
}

// ResolveSecret returns plain when it is set, otherwise opens sealed with a
// ConfigEncryptor built from passphrase.
func ResolveSecret(plain, sealed, passphrase string) (string, error) {
	if plain != "" {
		return plain, nil
	}
	if sealed == "" {
		return "", errors.ConfigError("no webhook secret configured")
	}

	encryptor, err := NewConfigEncryptor(passphrase)
	if err != nil {
		return "", err
	}
	return encryptor.Open(sealed)
}
