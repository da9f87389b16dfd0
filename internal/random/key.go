// Package random generates process-local signing keys.
package random

import (
	crand "crypto/rand"
	"errors"
	"fmt"
)

// Key returns n bytes from crypto/rand.
func Key(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("key length must be positive")
	}
	key := make([]byte, n)
	if _, err := crand.Read(key); err != nil {
		return nil, fmt.Errorf("read random key: %w", err)
	}
	return key, nil
}
