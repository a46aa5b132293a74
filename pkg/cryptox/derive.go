package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrEmptySecret is returned when key material is empty.
var ErrEmptySecret = errors.New("cryptox: empty secret")

// DeriveKey expands secret into a length-byte key bound to purpose using
// HKDF-SHA256. Different purposes yield unrelated keys from one secret.
func DeriveKey(secret []byte, purpose string, length int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if length <= 0 {
		return nil, fmt.Errorf("key length must be positive, got %d", length)
	}

	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	key := make([]byte, length)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
