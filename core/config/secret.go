package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadSigningKey returns the signing secret from the inline value, or from
// keyFile when the inline value is empty. Secret-store mounts usually end with
// a newline, so surrounding whitespace is trimmed.
func LoadSigningKey(inline, keyFile string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if keyFile == "" {
		return nil, ErrMissingSigningKey
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return nil, fmt.Errorf("signing key file %s is empty", keyFile)
	}
	return []byte(key), nil
}
