package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Claims are the unverified JWT claims the client cares about. The
// backend verifies signatures; the client only reads expiry and identity
// for status output and to fail fast before a request.
type Claims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"-"`
}

var errNotJWT = errors.New("token is not a JWT")

// ParseClaims decodes the payload segment of a compact JWT.
func ParseClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, errNotJWT
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return Claims{}, errNotJWT
	}

	var raw struct {
		Claims
		Exp json.Number `json:"exp"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Claims{}, errNotJWT
	}

	c := raw.Claims
	if raw.Exp != "" {
		if secs, err := raw.Exp.Int64(); err == nil {
			c.ExpiresAt = time.Unix(secs, 0)
		} else if f, err := raw.Exp.Float64(); err == nil {
			c.ExpiresAt = time.Unix(int64(f), 0)
		}
	}
	return c, nil
}

// Expired reports whether the token carried an exp claim that is not
// after now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
