package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"learnai_quiz_client/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func writeBlob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth-storage.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestFileProviderReadsBlob(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	path := writeBlob(t, `{"state":{"session":{"access_token":"`+token+`"},"user":{"id":"user-1","email":"u@example.com"}}}`)

	p := NewFileProvider(path, nil)
	require.Equal(t, token, p.AuthToken())
	require.Equal(t, "user-1", p.UserID())
}

func TestFileProviderMissingBlob(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.Equal(t, "", p.AuthToken())
	require.Equal(t, "", p.UserID())
}

func TestFileProviderMalformedBlob(t *testing.T) {
	path := writeBlob(t, `{not json`)
	p := NewFileProvider(path, nil)
	require.Equal(t, "", p.AuthToken())
}

func TestFileProviderExpiredToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	path := writeBlob(t, `{"state":{"session":{"access_token":"`+token+`"}}}`)

	p := NewFileProvider(path, nil)
	require.Equal(t, "", p.AuthToken())
}

func TestFileProviderOpaqueTokenPassesThrough(t *testing.T) {
	path := writeBlob(t, `{"state":{"session":{"access_token":"opaque-token"}}}`)

	p := NewFileProvider(path, nil)
	require.Equal(t, "opaque-token", p.AuthToken())
}

func TestOnUnauthorizedInvokesHook(t *testing.T) {
	called := false
	p := NewFileProvider("irrelevant", func() { called = true })
	p.OnUnauthorized()
	require.True(t, called)
}
