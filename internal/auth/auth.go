// Package auth manages the bearer token used against the planner backend.
package auth

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/output"
)

// TokenEnv overrides any stored token.
const TokenEnv = "PLANNER_TOKEN"

// Manager resolves, validates and persists the token for the configured
// backend.
type Manager struct {
	cfg   *config.Config
	store *Store
	now   func() time.Time

	mu sync.Mutex
}

// NewManager creates a manager backed by the default credential store.
func NewManager(cfg *config.Config) *Manager {
	return NewManagerWithStore(cfg, NewStore(config.GlobalConfigDir()))
}

func NewManagerWithStore(cfg *config.Config, store *Store) *Manager {
	return &Manager{cfg: cfg, store: store, now: time.Now}
}

func (m *Manager) origin() string {
	return config.NormalizeBaseURL(m.cfg.BaseURL)
}

// AccessToken returns the token to send. PLANNER_TOKEN wins over the store.
func (m *Manager) AccessToken(context.Context) (string, error) {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		return token, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load(m.origin())
	if err != nil || creds.Token == "" {
		return "", output.ErrAuth("Not logged in")
	}
	return creds.Token, nil
}

// AssertLoggedIn fails with an auth error unless a token is available and
// its exp claim, when present, lies in the future. Opaque tokens are
// accepted as-is.
func (m *Manager) AssertLoggedIn(ctx context.Context) error {
	token, err := m.AccessToken(ctx)
	if err != nil {
		return err
	}
	if claims, err := ParseClaims(token); err == nil && claims.Expired(m.now()) {
		return output.ErrAuth("Session expired")
	}
	return nil
}

// Login validates and stores token for the configured backend.
func (m *Manager) Login(token string) (Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Claims{}, output.ErrUsage("token must not be empty")
	}

	claims, err := ParseClaims(token)
	if err == nil && claims.Expired(m.now()) {
		return claims, output.ErrAuth("Token already expired")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(m.origin(), &Credentials{Token: token, SavedAt: m.now()}); err != nil {
		return claims, err
	}
	return claims, nil
}

// Logout forgets the stored token for the configured backend.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(m.origin())
}

// Status describes the current login for `auth status`.
type Status struct {
	Authenticated bool       `json:"authenticated"`
	Origin        string     `json:"origin"`
	Source        string     `json:"source,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	Email         string     `json:"email,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Expired       bool       `json:"expired"`
}

func (m *Manager) Status(ctx context.Context) Status {
	st := Status{Origin: m.origin()}

	token, err := m.AccessToken(ctx)
	if err != nil {
		return st
	}
	st.Authenticated = true
	st.Source = m.store.Backend()
	if os.Getenv(TokenEnv) != "" {
		st.Source = "env"
	}

	if claims, err := ParseClaims(token); err == nil {
		st.Subject = claims.Subject
		st.Email = claims.Email
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			st.ExpiresAt = &exp
			st.Expired = claims.Expired(m.now())
			st.Authenticated = !st.Expired
		}
	}
	return st
}
