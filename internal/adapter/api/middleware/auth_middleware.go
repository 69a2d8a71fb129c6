package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"rentalhub/pkg/errors"
	"rentalhub/pkg/logger"
)

// TokenVerifier turns a bearer token into a user id. Firebase and the JWT
// authority both implement it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return errors.Unauthorized("Authorization header is required", nil)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return errors.Unauthorized("Invalid authorization format", nil)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), parts[1])
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// AuthenticateSocket also accepts the token as a "token" query parameter,
// since browsers cannot set headers on a websocket handshake. It rejects
// before the upgrade, so no unauthenticated connection is ever opened.
func (m *AuthMiddleware) AuthenticateSocket(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			authHeader := c.Request().Header.Get("Authorization")
			token = strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				token = ""
			}
		}
		if token == "" {
			return errors.Unauthorized("Authentication token is required", nil)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			logger.Warn("WebSocket auth rejected from %s: %v", c.RealIP(), err)
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// UserID returns the id set by the auth middleware.
func UserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
