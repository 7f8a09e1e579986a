package auth

import (
	"encoding/json"
	"os"
	"time"

	"learnai_quiz_client/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Provider supplies the bearer token for API calls and receives the
// non-local teardown signal when the backend answers 401. It replaces
// ad-hoc reads of the persisted auth blob at every call site.
type Provider interface {
	AuthToken() string
	UserID() string
	OnUnauthorized()
}

// authBlob mirrors the JSON the login flow persists under "auth-storage":
// {"state":{"session":{"access_token":...},"user":{"id":...}}}.
type authBlob struct {
	State struct {
		Session struct {
			AccessToken string `json:"access_token"`
			ExpiresAt   int64  `json:"expires_at"`
		} `json:"session"`
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"state"`
}

// FileProvider reads the persisted auth blob from disk on every call, so a
// re-login in another process is picked up without restarting. A missing or
// malformed blob yields an empty token, never an error.
type FileProvider struct {
	Path string

	// Unauthorized is invoked on any 401; the session owner wires the
	// login redirect here.
	Unauthorized func()
}

func NewFileProvider(path string, unauthorized func()) *FileProvider {
	return &FileProvider{Path: path, Unauthorized: unauthorized}
}

func (p *FileProvider) read() *authBlob {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return nil
	}
	var blob authBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		logger.Log.Debug("Malformed auth blob", zap.String("path", p.Path), zap.Error(err))
		return nil
	}
	return &blob
}

func (p *FileProvider) AuthToken() string {
	blob := p.read()
	if blob == nil {
		return ""
	}
	token := blob.State.Session.AccessToken
	if token == "" {
		return ""
	}
	if expired(token) {
		logger.Log.Debug("Stored access token is expired")
		return ""
	}
	return token
}

func (p *FileProvider) UserID() string {
	blob := p.read()
	if blob == nil {
		return ""
	}
	return blob.State.User.ID
}

func (p *FileProvider) OnUnauthorized() {
	logger.Log.Warn("Session rejected by backend, login required")
	if p.Unauthorized != nil {
		p.Unauthorized()
	}
}

// expired checks the token's exp claim without verifying the signature;
// verification belongs to the backend, this only avoids sending a token
// that is already known dead.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque (non-JWT) tokens pass through untouched.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
