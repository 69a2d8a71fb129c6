package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	pingDatabase func(ctx context.Context) error
	connections  func() int
}

func NewHealthHandler(pingDatabase func(ctx context.Context) error, connections func() int) *HealthHandler {
	return &HealthHandler{
		pingDatabase: pingDatabase,
		connections:  connections,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"status":      "Server is running",
		"time":        time.Now().Format(time.RFC3339),
		"connections": h.connections(),
	}
	if err := h.pingDatabase(ctx); err != nil {
		body["status"] = "Database unavailable"
		body["error"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}
