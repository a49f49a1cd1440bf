package backend

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fulfillment/internal/core/ports"
)

var _ ports.CredentialSource = (*StaticTokenSource)(nil)

// StaticTokenSource serves one configured bearer token. When the token is a
// JWT its exp claim is honored: an expired token is withheld and calls go
// out anonymously. The signature is not verified here; the backend does that.
type StaticTokenSource struct {
	token     string
	expiresAt time.Time
	now       func() time.Time

	logger      *slog.Logger
	expiredOnce sync.Once
}

// NewStaticTokenSource wraps a fixed bearer token. An empty token means
// anonymous calls.
func NewStaticTokenSource(token string, logger *slog.Logger) *StaticTokenSource {
	s := &StaticTokenSource{
		token:  strings.TrimSpace(token),
		now:    time.Now,
		logger: logger.With("component", "static_token_source"),
	}
	if s.token == "" {
		return s
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err != nil {
		// opaque token
		return s
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.expiresAt = exp.Time
	}
	return s
}

// WithClock replaces the clock used for expiry checks.
func (s *StaticTokenSource) WithClock(now func() time.Time) *StaticTokenSource {
	s.now = now
	return s
}

// ExpiresAt is zero when the token carries no expiry.
func (s *StaticTokenSource) ExpiresAt() time.Time {
	return s.expiresAt
}

// Token returns the bearer token. Reports false when no token is configured or
// the token has expired.
func (s *StaticTokenSource) Token(ctx context.Context) (string, bool) {
	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		s.expiredOnce.Do(func() {
			s.logger.WarnContext(ctx, "bearer token expired, calling backend anonymously", "expiredAt", s.expiresAt)
		})
		return "", false
	}
	return s.token, true
}
