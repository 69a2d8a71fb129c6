package router

import (
	"rentalhub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter, environment string) {
	SetupChatRouter(e, authMiddleware, limiter)
	SetupWebSocketRouter(e, authMiddleware, limiter)
	SetupHealthRouter(e)
	SetupDevRouter(e, environment)
}
