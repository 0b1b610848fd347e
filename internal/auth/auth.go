// Package auth issues and validates the bearer tokens used by the usage API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds signing parameters shared by token issuing and verification.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims represents the identity extracted from a JWT. Tokens carry the user
// ID only; authorization is ownership checks against the database.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// Issue mints a signed token for the given user ID.
func Issue(userID string, cfg Config, now time.Time) (string, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iss": cfg.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(cfg.Secret))
}

// Parse validates a JWT and returns normalized claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	return &Claims{
		Subject:   subject,
		ExpiresAt: exp.Time,
	}, nil
}
