package security

import (
	"errors"
	"os"
	"strings"
)

// MinSecretBytes is the shortest HMAC secret accepted for HS256.
const MinSecretBytes = 32

var (
	// ErrSecretMissing is returned when no signing secret was configured.
	ErrSecretMissing = errors.New("signing secret missing")
	// ErrSecretTooShort is returned for secrets under MinSecretBytes.
	ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")
)

// LoadSecret resolves the signing secret. s is either the secret itself or a
// path to a file holding it; surrounding whitespace is trimmed in both cases.
func LoadSecret(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrSecretMissing
	}
	secret := []byte(s)
	if fi, err := os.Stat(s); err == nil && fi.Mode().IsRegular() {
		b, err := os.ReadFile(s)
		if err != nil {
			return nil, err
		}
		secret = []byte(strings.TrimSpace(string(b)))
	}
	if len(secret) == 0 {
		return nil, ErrSecretMissing
	}
	if len(secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	return secret, nil
}
