package handler

import (
	"github.com/labstack/echo/v4"

	"rentalhub/internal/usecase"
	"rentalhub/pkg/errors"
	"rentalhub/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	readTracker *usecase.ReadTracker
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, readTracker *usecase.ReadTracker) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		readTracker: readTracker,
	}
}

type historyRequest struct {
	PropertyID string `param:"propertyId" validate:"required,max=128"`
	UserA      string `param:"userA" validate:"required,max=128"`
	UserB      string `param:"userB" validate:"required,max=128"`
}

type currentUserRequest struct {
	CurrentUserID string `query:"currentUserId" validate:"max=128"`
}

type markReadRequest struct {
	PropertyID string `param:"propertyId" validate:"required,max=128"`
	PeerID     string `param:"peerId" validate:"required,max=128"`
}

// GetHistory returns the messages between userA and userB about a property,
// oldest first. userA must be the caller.
func (h *ChatHandler) GetHistory(c echo.Context) error {
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	if req.UserA != userID {
		return response.Error(c, errors.Forbidden("You can only read your own conversations", nil))
	}

	messages, err := h.chatUseCase.History(c.Request().Context(), req.PropertyID, req.UserA, req.UserB)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

// GetUsersChattedWith lists the caller's conversations, most recent first.
func (h *ChatHandler) GetUsersChattedWith(c echo.Context) error {
	userID, err := h.currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	entries, err := h.chatUseCase.Inbox(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, entries)
}

func (h *ChatHandler) GetUnreadMessages(c echo.Context) error {
	userID, err := h.currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	unread, err := h.chatUseCase.Unread(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, unread)
}

func (h *ChatHandler) GetUnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.chatUseCase.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int64{"count": count})
}

// MarkAsRead is the REST form of mark_notifications_as_read.
func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	session := usecase.Session{UserID: c.Get("uid").(string)}
	receipt, err := h.readTracker.MarkConversationRead(c.Request().Context(), session, req.PropertyID, req.PeerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, receipt)
}

// currentUser returns the caller's id, rejecting a currentUserId query
// parameter that names someone else.
func (h *ChatHandler) currentUser(c echo.Context) (string, error) {
	var req currentUserRequest
	if err := c.Bind(&req); err != nil {
		return "", errors.Validation("Invalid request", err)
	}
	if err := c.Validate(&req); err != nil {
		return "", err
	}

	userID := c.Get("uid").(string)
	if req.CurrentUserID != "" && req.CurrentUserID != userID {
		return "", errors.Forbidden("currentUserId does not match the authenticated user", nil)
	}
	return userID, nil
}
