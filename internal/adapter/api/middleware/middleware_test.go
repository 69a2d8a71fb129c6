package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub/pkg/errors"
)

type stubVerifier map[string]string

func (v stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if uid, ok := v[token]; ok {
		return uid, nil
	}
	return "", stderrors.New("unknown token")
}

type stubLimiter struct {
	allowed bool
	wait    time.Duration
	keys    []string
}

func (l *stubLimiter) Allow(key, action string) (bool, time.Duration) {
	l.keys = append(l.keys, key+"/"+action)
	return l.allowed, l.wait
}

func echoUID(c echo.Context) error {
	return c.String(http.StatusOK, UserID(c))
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	return rec, mw(echoUID)(c)
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{"good": "4"})

	cases := []struct {
		name   string
		header string
		uid    string
	}{
		{"missing header", "", ""},
		{"wrong scheme", "Basic good", ""},
		{"extra parts", "Bearer good extra", ""},
		{"bad token", "Bearer bad", ""},
		{"valid", "Bearer good", "4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec, err := run(t, auth.Authenticate, req)
			if tc.uid == "" {
				assert.True(t, errors.Is(err, errors.CodeUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.uid, rec.Body.String())
		})
	}
}

func TestAuthenticateSocket(t *testing.T) {
	auth := NewAuthMiddleware(stubVerifier{"good": "1"})

	rec, err := run(t, auth.AuthenticateSocket, httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec, err = run(t, auth.AuthenticateSocket, req)
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Body.String())

	_, err = run(t, auth.AuthenticateSocket, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(echo.HeaderAuthorization, "good")
	_, err = run(t, auth.AuthenticateSocket, req)
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = run(t, auth.AuthenticateSocket, httptest.NewRequest(http.MethodGet, "/ws?token=bad", nil))
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestRateLimitKeysByUserOrIP(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	mw := RateLimit(limiter, "rest")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:4321"
	_, err := run(t, mw, req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("uid", "4")
	require.NoError(t, mw(echoUID)(c))

	assert.Equal(t, []string{"ip:10.0.0.7/rest", "4/rest"}, limiter.keys)
}

func TestRateLimitRejectsWithRetryAfter(t *testing.T) {
	limiter := &stubLimiter{allowed: false, wait: 1500 * time.Millisecond}

	rec, err := run(t, RateLimit(limiter, "connect"), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}
