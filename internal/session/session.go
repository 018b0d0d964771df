// Package session issues, parses and revokes signed session tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "inkwell-api"
	Audience = "inkwell-client"

	revokedKeyPrefix = "blacklist:"
)

var (
	// ErrNoSession means the caller presented no token at all.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession covers malformed, forged and expired tokens.
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrRevoked means the token was ended by logout.
	ErrRevoked = errors.New("session has been revoked")
)

// Session is the caller's credential as presented to the core. The zero value
// is an anonymous session.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Anonymous reports whether the session carries no token.
func (s Session) Anonymous() bool {
	return s.Token == ""
}

// Claims are the signed contents of a session token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id carried in the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidSession
	}
	return uint(id), nil
}

// Manager signs and verifies session tokens and consults a RevocationStore
// for tokens ended by logout.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewManager creates a Manager. A nil store disables revocation, which only
// suits tests that never log out.
func NewManager(secret string, ttl time.Duration, revoked RevocationStore) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a new session for user.
func (m *Manager) Issue(user *models.User) (Session, error) {
	if len(m.secret) == 0 {
		return Session{}, errors.New("session secret not configured")
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires}, nil
}

// Parse verifies the token's signature, issuer, audience and lifetime and
// rejects revoked tokens.
func (m *Manager) Parse(ctx context.Context, s Session) (*Claims, error) {
	if s.Anonymous() {
		return nil, ErrNoSession
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(s.Token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	revoked, err := m.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke marks the session's token as ended until it would have expired.
// Invalid or already expired tokens need no record and are ignored.
func (m *Manager) Revoke(ctx context.Context, s Session) error {
	claims, err := m.Parse(ctx, s)
	if err != nil {
		return nil
	}
	if m.revoked == nil || claims.ID == "" {
		return nil
	}
	if !claims.ExpiresAt.After(m.now()) {
		return nil
	}
	if err := m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// isRevoked fails open when the revocation store is unreachable so an outage
// does not log every user out.
func (m *Manager) isRevoked(ctx context.Context, jti string) (bool, error) {
	if m.revoked == nil || jti == "" {
		return false, nil
	}
	revoked, err := m.revoked.IsRevoked(ctx, jti)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "session revocation check failed", "error", err)
		return false, nil
	}
	return revoked, nil
}
