// Package secrets seals shop access tokens before they reach the
// database. Keys are derived from ENCRYPTION_SECRET, so rotating the
// secret invalidates every stored token.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrInvalidToken = errors.New("sealed token is malformed or was sealed with a different secret")

type Box struct {
	key [chacha20poly1305.KeySize]byte
}

func NewBox(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is required")
	}
	b := &Box{key: sha256.Sum256([]byte(secret))}
	return b, nil
}

// Seal encrypts a token and returns it base64-encoded with the nonce
// prepended.
func (b *Box) Seal(token string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key[:])
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(token)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (b *Box) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidToken
	}

	aead, err := chacha20poly1305.NewX(b.key[:])
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrInvalidToken
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(plain), nil
}
