package middleware

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"golang.org/x/crypto/hkdf"
)

const (
	SessionName   = "columntrack_session"
	sessionMaxAge = 12 * 60 * 60
)

// NewCookieStore выводит из SESSION_SECRET отдельные ключи подписи и шифрования.
func NewCookieStore(secret string, secure bool) (sessions.Store, error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("columntrack session cookie"))

	authKey := make([]byte, 32)
	encKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, authKey); err != nil {
		return nil, fmt.Errorf("derive cookie auth key: %w", err)
	}
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, fmt.Errorf("derive cookie encryption key: %w", err)
	}

	store := cookie.NewStore(authKey, encKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
