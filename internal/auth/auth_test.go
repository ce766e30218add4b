package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/output"
)

func makeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".sig"
}

func newFileManager(t *testing.T) (*Manager, string) {
	t.Helper()
	t.Setenv(TokenEnv, "")
	dir := t.TempDir()
	cfg := config.Default()
	cfg.BaseURL = "https://planner.example.com"
	return NewManagerWithStore(cfg, NewFileStore(dir)), dir
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token := makeJWT(t, map[string]any{"sub": "u1", "email": "ada@example.com", "exp": exp.Unix()})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, exp.Equal(claims.ExpiresAt))
	assert.False(t, claims.Expired(exp.Add(-time.Second)))
	assert.True(t, claims.Expired(exp))
}

func TestParseClaimsRejectsOpaqueTokens(t *testing.T) {
	for _, token := range []string{"opaque", "a.b", "a.!!!.c", "a." + base64.RawURLEncoding.EncodeToString([]byte("[]")) + ".c"} {
		_, err := ParseClaims(token)
		assert.Error(t, err, token)
	}
}

func TestClaimsWithoutExpiryNeverExpire(t *testing.T) {
	claims, err := ParseClaims(makeJWT(t, map[string]any{"sub": "u1"}))
	require.NoError(t, err)
	assert.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestLoginStatusLogout(t *testing.T) {
	m, dir := newFileManager(t)
	ctx := context.Background()

	assert.Equal(t, output.CodeAuth, output.AsError(m.AssertLoggedIn(ctx)).Code)
	assert.False(t, m.Status(ctx).Authenticated)

	token := makeJWT(t, map[string]any{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	claims, err := m.Login("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	require.NoError(t, m.AssertLoggedIn(ctx))
	got, err := m.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, got)

	st := m.Status(ctx)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "file", st.Source)
	assert.Equal(t, "https://planner.example.com", st.Origin)
	require.NotNil(t, st.ExpiresAt)

	fi, err := os.Stat(filepath.Join(dir, credentialsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, m.Logout())
	require.NoError(t, m.Logout())
	assert.Error(t, m.AssertLoggedIn(ctx))
}

func TestLoginRejectsEmptyAndExpired(t *testing.T) {
	m, _ := newFileManager(t)

	_, err := m.Login("  ")
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)

	expired := makeJWT(t, map[string]any{"exp": time.Now().Add(-time.Minute).Unix()})
	_, err = m.Login(expired)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)
}

func TestAssertLoggedInDetectsExpiry(t *testing.T) {
	m, _ := newFileManager(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Login(makeJWT(t, map[string]any{"exp": now.Add(time.Minute).Unix()}))
	require.NoError(t, err)
	require.NoError(t, m.AssertLoggedIn(context.Background()))

	now = now.Add(2 * time.Minute)
	err = m.AssertLoggedIn(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Session expired", output.AsError(err).Message)
	assert.True(t, m.Status(context.Background()).Expired)
}

func TestOpaqueTokenAccepted(t *testing.T) {
	m, _ := newFileManager(t)
	_, err := m.Login("opaque-token")
	require.NoError(t, err)
	assert.NoError(t, m.AssertLoggedIn(context.Background()))
}

func TestEnvTokenWins(t *testing.T) {
	m, _ := newFileManager(t)
	_, err := m.Login("stored")
	require.NoError(t, err)

	t.Setenv(TokenEnv, "from-env")
	got, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
	assert.Equal(t, "env", m.Status(context.Background()).Source)
}

func TestTokensAreScopedByOrigin(t *testing.T) {
	t.Setenv(TokenEnv, "")
	store := NewFileStore(t.TempDir())

	a := config.Default()
	a.BaseURL = "https://a.example.com/"
	b := config.Default()
	b.BaseURL = "https://b.example.com"

	_, err := NewManagerWithStore(a, store).Login("token-a")
	require.NoError(t, err)
	assert.Error(t, NewManagerWithStore(b, store).AssertLoggedIn(context.Background()))

	creds, err := store.Load("https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, "token-a", creds.Token)
}

func TestFileStoreConcurrentSaves(t *testing.T) {
	store := NewFileStore(t.TempDir())
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			origin := "https://h" + string(rune('a'+i)) + ".example.com"
			assert.NoError(t, store.Save(origin, &Credentials{Token: origin}))
		}()
	}
	wg.Wait()

	for i := range 10 {
		origin := "https://h" + string(rune('a'+i)) + ".example.com"
		creds, err := store.Load(origin)
		require.NoError(t, err)
		assert.Equal(t, origin, creds.Token)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, credentialsFile), []byte("{"), 0o600))

	_, err := NewFileStore(dir).Load("x")
	assert.ErrorContains(t, err, "invalid credentials file")
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	assert.Equal(t, "keyring", store.Backend())

	_, err := store.Load("https://planner.example.com")
	assert.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, store.Save("https://planner.example.com", &Credentials{Token: "k"}))
	creds, err := store.Load("https://planner.example.com")
	require.NoError(t, err)
	assert.Equal(t, "k", creds.Token)

	require.NoError(t, store.Delete("https://planner.example.com"))
	require.NoError(t, store.Delete("https://planner.example.com"))
}

func TestNewStoreHonorsNoKeyring(t *testing.T) {
	t.Setenv("PLANNER_NO_KEYRING", "1")
	assert.Equal(t, "file", NewStore(t.TempDir()).Backend())
}
