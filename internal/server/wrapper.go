// wrapper.go - Encrypted download-link wrappers.
//
// A wrapper is the AES-256-GCM ciphertext of a file's opaque download
// token, base64url encoded so it can travel in a URL path segment. The
// key is injected at startup from configuration; it is never generated
// per process, so links stay resolvable across restarts. Wrappers carry
// no expiry.
package server

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var errBadKeySize = errors.New("link key must be 32 bytes")

// linkCipher seals opaque download tokens into URL-safe wrappers and
// opens them again. All decrypt failures collapse into ErrInvalidLink
// so responses never distinguish malformed input from a wrong key.
type linkCipher struct {
	aead cipher.AEAD
}

func newLinkCipher(key []byte) (*linkCipher, error) {
	if len(key) != 32 {
		return nil, errBadKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &linkCipher{aead: aead}, nil
}

// Seal encrypts a download token. The nonce is prepended to the
// ciphertext before encoding.
func (c *linkCipher) Seal(token string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a wrapper back to the opaque download token.
func (c *linkCipher) Open(wrapper string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(wrapper)
	if err != nil {
		return "", ErrInvalidLink
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrInvalidLink
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrInvalidLink
	}
	return string(plain), nil
}
