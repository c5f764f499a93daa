// Package secret encrypts free-text values before they are stored.
package secret

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrUndecryptable indicates a stored value that the configured key cannot open.
var ErrUndecryptable = errors.New("value cannot be decrypted with the configured key")

// Cipher seals values for storage and opens them again on read.
type Cipher interface {
	Seal(plaintext string) (string, error)
	Open(stored string) (string, error)
}

// Plaintext stores values unchanged. It is used when no key is configured.
type Plaintext struct{}

func (Plaintext) Seal(plaintext string) (string, error) { return plaintext, nil }
func (Plaintext) Open(stored string) (string, error) { return stored, nil }

// FernetCipher seals values as fernet tokens. The first key encrypts; every
// key is tried when decrypting, which allows key rotation.
type FernetCipher struct {
	keys []*fernet.Key
}

// NewFernetCipher decodes one or more base64 fernet keys.
func NewFernetCipher(keys ...string) (*FernetCipher, error) {
	if len(keys) == 0 {
		return nil, errors.New("at least one fernet key is required")
	}
	decoded, err := fernet.DecodeKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &FernetCipher{keys: decoded}, nil
}

// New returns a FernetCipher when key is set and Plaintext otherwise.
func New(key string) (Cipher, error) {
	if key == "" {
		return Plaintext{}, nil
	}
	return NewFernetCipher(key)
}

// GenerateKey returns a fresh base64-encoded fernet key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return k.Encode(), nil
}

// Seal encrypts plaintext. Empty values are stored as-is.
func (c *FernetCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	token, err := fernet.EncryptAndSign([]byte(plaintext), c.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(token), nil
}

// Open decrypts a stored token. Tokens never expire.
func (c *FernetCipher) Open(stored string) (string, error) {
	if stored == "" {
		return "", nil
	}
	msg := fernet.VerifyAndDecrypt([]byte(stored), -1, c.keys)
	if msg == nil {
		return "", ErrUndecryptable
	}
	return string(msg), nil
}
