package security

import "time"

// TestSecret is a fixed HS256 secret for unit tests only. Do not use in production.
const TestSecret = "psychaid-test-secret-0123456789abcdef"

// NewTestTokenProvider returns a TokenProvider keyed with TestSecret and the
// default lifetimes (30m access, 7d refresh). For unit tests only.
func NewTestTokenProvider(opts ...TokenOption) *TokenProvider {
	return NewTokenProvider([]byte(TestSecret), "test-issuer", "test-audience", 30*time.Minute, 7*24*time.Hour, opts...)
}
