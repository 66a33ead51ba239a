// Package sealer encrypts persisted session records with XChaCha20-Poly1305.
//
// The AEAD key is derived from an operator secret with HKDF-SHA256, so any
// passphrase length works. A sealed blob is the random nonce followed by the
// ciphertext. The associated data binds a blob to its storage key, so a record
// copied under another client id does not open.
package sealer

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "speaky-session-seal"

// ErrMalformed is returned when a blob is too short or fails authentication.
var ErrMalformed = errors.New("sealer: malformed or tampered record")

// Sealer seals and opens byte payloads. A nil *Sealer passes data through
// unchanged, which is how sealing is disabled.
type Sealer struct {
	aead cipher.AEAD
}

// New derives a key from secret. An empty secret returns a nil Sealer.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, nil
	}
	key, err := deriveKey([]byte(secret))
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: new xchacha20 cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

func deriveKey(secret []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, nil, []byte(keyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("sealer: derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plain, binding it to aad.
func (s *Sealer) Seal(plain, aad []byte) ([]byte, error) {
	if s == nil {
		return plain, nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sealer: nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plain, aad), nil
}

// Open reverses Seal.
func (s *Sealer) Open(blob, aad []byte) ([]byte, error) {
	if s == nil {
		return blob, nil
	}
	ns := s.aead.NonceSize()
	if len(blob) < ns+s.aead.Overhead() {
		return nil, ErrMalformed
	}
	plain, err := s.aead.Open(nil, blob[:ns], blob[ns:], aad)
	if err != nil {
		return nil, ErrMalformed
	}
	return plain, nil
}
