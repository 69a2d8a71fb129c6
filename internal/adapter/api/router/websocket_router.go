package router

import (
	"github.com/labstack/echo/v4"

	"rentalhub/internal/adapter/api/handler"
	"rentalhub/internal/adapter/api/middleware"
)

// SetupWebSocketRouter authenticates before the upgrade, so an invalid token
// gets a plain 401 instead of a socket.
func SetupWebSocketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	wsHandler := handler.GetWebSocketHandler()
	e.GET("/ws", wsHandler.HandleWebSocket, middleware.RateLimit(limiter, "connect"), authMiddleware.AuthenticateSocket)
}
