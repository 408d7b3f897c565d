package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when no token was presented.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenInvalid is returned when a token is malformed, has a bad
	// signature, wrong issuer/audience, or is of the wrong kind.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned when a well-formed, correctly signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenKind separates access tokens from refresh tokens so one cannot stand in for the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"token_type"`
}

// TokenOption configures a TokenProvider.
type TokenOption func(*TokenProvider)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(p *TokenProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// TokenProvider issues and verifies stateless HS256 access and refresh tokens.
// It is safe for concurrent use; all fields are read-only after construction.
type TokenProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with secret. issuer and
// audience are set on every token and required on verification.
func NewTokenProvider(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) *TokenProvider {
	p := &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access token for subject.
// Returns the token string, its jti, and expiration time.
func (p *TokenProvider) IssueAccess(subject string) (token, jti string, expiresAt time.Time, err error) {
	return p.issue(subject, KindAccess, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for subject. The jti can be
// handed to a revocation list to invalidate the token before expiry.
func (p *TokenProvider) IssueRefresh(subject string) (token, jti string, expiresAt time.Time, err error) {
	return p.issue(subject, KindRefresh, p.refreshTTL)
}

// VerifyAccess checks signature, expiry, issuer, audience and kind of an access token.
func (p *TokenProvider) VerifyAccess(token string) (*Claims, error) {
	return p.verify(token, KindAccess)
}

// VerifyRefresh checks signature, expiry, issuer, audience and kind of a refresh token.
func (p *TokenProvider) VerifyRefresh(token string) (*Claims, error) {
	return p.verify(token, KindRefresh)
}

func (p *TokenProvider) issue(subject string, kind TokenKind, ttl time.Duration) (string, string, time.Time, error) {
	if subject == "" {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	jti, err := generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind: kind,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

func (p *TokenProvider) verify(tokenString string, kind TokenKind) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenMissing
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		// Signature is checked before claims, so an expired error implies a genuine token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
