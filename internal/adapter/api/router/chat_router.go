package router

import (
	"github.com/labstack/echo/v4"

	"rentalhub/internal/adapter/api/handler"
	"rentalhub/internal/adapter/api/middleware"
)

// SetupChatRouter registers the REST chat endpoints. All of them require
// authentication.
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	chatHandler := handler.GetChatHandler()
	protected := []echo.MiddlewareFunc{authMiddleware.Authenticate, middleware.RateLimit(limiter, "rest")}

	e.GET("/chats/users", chatHandler.GetUsersChattedWith, protected...)
	e.GET("/chats/:propertyId/:userA/:userB", chatHandler.GetHistory, protected...)
	e.PUT("/chats/:propertyId/:peerId/read", chatHandler.MarkAsRead, protected...)
	e.GET("/messages/unread", chatHandler.GetUnreadMessages, protected...)
	e.GET("/notifications/unread-count", chatHandler.GetUnreadCount, protected...)
}
