// Package session adapts the remote login capability. The pipeline treats
// login as an opaque success/failure operation; this adapter additionally
// refuses tokens that fail local validation so a half-broken login response
// never counts as a session.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"enroll/internal/gateway"
	dErrors "enroll/pkg/domain-errors"
)

// TokenExchanger is the slice of the gateway client the manager needs.
type TokenExchanger interface {
	Login(ctx context.Context, email, password string) (gateway.LoginResult, error)
}

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager implements the login capability on top of the remote service.
type Manager struct {
	remote     TokenExchanger
	signingKey []byte
	logger     *slog.Logger
}

func NewManager(remote TokenExchanger, signingKey string, logger *slog.Logger) *Manager {
	return &Manager{remote: remote, signingKey: []byte(signingKey), logger: logger}
}

// Login exchanges credentials for a session. An error return means the
// caller's auto-login is degraded; the caller decides whether that is fatal.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	res, err := m.remote.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if res.Token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "login succeeded but no token issued")
	}
	if _, err := m.validate(res.Token); err != nil {
		m.logger.Warn("rejecting unusable login token", "error", err)
		return err
	}
	return nil
}

func (m *Manager) validate(tokenString string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session token expired")
	}
	return c, nil
}
