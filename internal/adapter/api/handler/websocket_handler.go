package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"rentalhub/internal/adapter/api"
	ws "rentalhub/internal/infrastructure/websocket"
	"rentalhub/internal/usecase"
	"rentalhub/pkg/errors"
	"rentalhub/pkg/logger"
	"rentalhub/pkg/response"
)

const (
	EventJoinRoom            = "join_room"
	EventLeaveRoom           = "leave_room"
	EventJoinNotifications   = "join_notifications"
	EventSendMessage         = "send_message"
	EventMarkAsRead          = "mark_notifications_as_read"
	EventGetChatHistory      = "getChatHistory"
	EventGetUsersChattedWith = "get_users_chatted_with"
	EventPing                = "ping"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	chatUseCase *usecase.ChatUseCase
	readTracker *usecase.ReadTracker
	validator   *api.Validator
	upgrader    gorillaws.Upgrader
	router      *ws.Router
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	chatUseCase *usecase.ChatUseCase,
	readTracker *usecase.ReadTracker,
	validator *api.Validator,
	allowedOrigins []string,
) *WebSocketHandler {
	h := &WebSocketHandler{
		wsManager:   wsManager,
		chatUseCase: chatUseCase,
		readTracker: readTracker,
		validator:   validator,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}

	h.router = ws.NewRouter()
	h.router.Handle(EventJoinRoom, h.handleJoinRoom)
	h.router.Handle(EventLeaveRoom, h.handleLeaveRoom)
	h.router.Handle(EventJoinNotifications, h.handleJoinNotifications)
	h.router.Handle(EventSendMessage, h.handleSendMessage)
	h.router.Handle(EventMarkAsRead, h.handleMarkAsRead)
	h.router.Handle(EventGetChatHistory, h.handleGetChatHistory)
	h.router.Handle(EventGetUsersChattedWith, h.handleGetUsersChattedWith)
	h.router.Handle(EventPing, h.handlePing)
	h.router.NotFound(func(client *ws.Client, _ json.RawMessage) {
		h.sendError(client, errors.Validation("Unknown event", nil))
	})
	h.router.Malformed(func(client *ws.Client, _ json.RawMessage) {
		h.sendError(client, errors.Validation("Invalid message format", nil))
	})
	return h
}

// originChecker allows any origin when the list is empty. Requests without
// an Origin header come from non-browser clients and are allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWebSocket upgrades an authenticated request. The identity set by the
// auth middleware is bound to the connection for its whole life.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(conn, userID)
	h.wsManager.Register(client)

	go client.WritePump()
	go client.ReadPump(h.wsManager, h.router)

	return nil
}

type roomPayload struct {
	PropertyID     string `json:"propertyId" validate:"required,max=128"`
	CurrentUserID  string `json:"currentUserId" validate:"max=128"`
	SelectedUserID string `json:"selectedUserId" validate:"required,max=128"`
}

type sendMessagePayload struct {
	PropertyID     string `json:"propertyId" validate:"required,max=128"`
	CurrentUserID  string `json:"currentUserId" validate:"max=128"`
	SelectedUserID string `json:"selectedUserId" validate:"required,max=128"`
	Content        string `json:"content" validate:"required"`
}

type userPayload struct {
	CurrentUserID string `json:"currentUserId" validate:"max=128"`
}

func session(client *ws.Client) usecase.Session {
	return usecase.Session{ConnectionID: client.ID, UserID: client.UserID}
}

// decode parses and validates a payload and checks that any currentUserId
// it carries is the connection's own identity.
func (h *WebSocketHandler) decode(client *ws.Client, data json.RawMessage, payload interface{}, currentUserID func() string) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return errors.Validation("Invalid payload", err)
	}
	if err := h.validator.Validate(payload); err != nil {
		var validationErr validator.ValidationErrors
		if stderrors.As(err, &validationErr) {
			return errors.Validation(response.ValidationMessage(validationErr), err)
		}
		return errors.Validation("Invalid payload", err)
	}
	if id := currentUserID(); id != "" && id != client.UserID {
		return errors.Unauthorized("currentUserId does not match the authenticated user", nil)
	}
	return nil
}

func (h *WebSocketHandler) sendError(client *ws.Client, err error) {
	kind, message := errors.Kind(err)
	if kind == errors.CodeInternal {
		logger.Error("WebSocket handler error for %s: %v", client.UserID, err)
	}
	h.wsManager.Send(client.ID, usecase.EventError, usecase.ErrorEvent{Kind: kind, Message: message})
}

func (h *WebSocketHandler) handleJoinRoom(client *ws.Client, data json.RawMessage) {
	var p roomPayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	if _, err := h.chatUseCase.JoinRoom(context.Background(), session(client), p.PropertyID, p.SelectedUserID); err != nil {
		h.sendError(client, err)
	}
}

func (h *WebSocketHandler) handleLeaveRoom(client *ws.Client, data json.RawMessage) {
	var p roomPayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	if err := h.chatUseCase.LeaveRoom(context.Background(), session(client), p.PropertyID, p.SelectedUserID); err != nil {
		h.sendError(client, err)
	}
}

func (h *WebSocketHandler) handleJoinNotifications(client *ws.Client, data json.RawMessage) {
	var p userPayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	h.chatUseCase.JoinNotifications(session(client))
}

func (h *WebSocketHandler) handleSendMessage(client *ws.Client, data json.RawMessage) {
	var p sendMessagePayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	_, err := h.chatUseCase.SendMessage(context.Background(), session(client), usecase.SendMessageInput{
		PropertyID: p.PropertyID,
		PeerID:     p.SelectedUserID,
		Content:    p.Content,
	})
	if err != nil {
		h.sendError(client, err)
	}
}

func (h *WebSocketHandler) handleMarkAsRead(client *ws.Client, data json.RawMessage) {
	var p roomPayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	if _, err := h.readTracker.MarkConversationRead(context.Background(), session(client), p.PropertyID, p.SelectedUserID); err != nil {
		h.sendError(client, err)
	}
}

func (h *WebSocketHandler) handleGetChatHistory(client *ws.Client, data json.RawMessage) {
	var p roomPayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	messages, err := h.chatUseCase.History(context.Background(), p.PropertyID, client.UserID, p.SelectedUserID)
	if err != nil {
		h.sendError(client, err)
		return
	}
	h.wsManager.Send(client.ID, usecase.EventChatHistory, messages)
}

func (h *WebSocketHandler) handleGetUsersChattedWith(client *ws.Client, data json.RawMessage) {
	var p userPayload
	if err := h.decode(client, data, &p, func() string { return p.CurrentUserID }); err != nil {
		h.sendError(client, err)
		return
	}
	entries, err := h.chatUseCase.Inbox(context.Background(), client.UserID)
	if err != nil {
		h.sendError(client, err)
		return
	}
	h.wsManager.Send(client.ID, usecase.EventUsersChattedWith, entries)
}

func (h *WebSocketHandler) handlePing(client *ws.Client, _ json.RawMessage) {
	h.wsManager.Send(client.ID, usecase.EventPong, map[string]string{"status": "ok"})
}
