package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "unit-test-secret", Issuer: "litterbox-api", TTL: time.Hour}

func TestIssueParseRoundTrip(t *testing.T) {
	token, err := Issue("user-7", testConfig, time.Now())
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-7", claims.Subject)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Issue("user-7", Config{Secret: "other", Issuer: testConfig.Issuer}, time.Now())
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := Issue("user-7", Config{Secret: testConfig.Secret, Issuer: "someone-else"}, time.Now())
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Issue("user-7", testConfig, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsEmptyToken(t *testing.T) {
	_, err := Parse("   ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	token, err := Issue("user-9", testConfig, time.Now())
	require.NoError(t, err)

	var seen *Claims
	handler := NewMiddleware(testConfig, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/cats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, "user-9", seen.Subject)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := NewMiddleware(testConfig, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cats", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsWithJSONError(t *testing.T) {
	handler := NewMiddleware(testConfig, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/cats", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
}

func TestMiddlewareSkipperBypassesAuth(t *testing.T) {
	skipper := func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/healthz") }
	handler := NewMiddleware(testConfig, skipper).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
