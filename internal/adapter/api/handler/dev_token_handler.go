package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"rentalhub/pkg/errors"
	"rentalhub/pkg/response"
)

type TokenIssuer interface {
	GenerateToken(ctx context.Context, uid string) (string, error)
}

// DevTokenHandler mints tokens for arbitrary users. Only routed outside
// production.
type DevTokenHandler struct {
	issuer TokenIssuer
}

func NewDevTokenHandler(issuer TokenIssuer) *DevTokenHandler {
	return &DevTokenHandler{
		issuer: issuer,
	}
}

type devTokenRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	token, err := h.issuer.GenerateToken(c.Request().Context(), req.UserID)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to generate token", err))
	}

	return response.Created(c, map[string]string{
		"token":  token,
		"userId": req.UserID,
	})
}
