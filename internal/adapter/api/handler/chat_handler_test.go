package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub/internal/adapter/api/handler"
	"rentalhub/internal/domain/entity"
	"rentalhub/pkg/errors"
)

// seedConversation has the tenant open a conversation with the landlord and
// waits until both messages are committed.
func seedConversation(t *testing.T, h *harness) {
	t.Helper()
	tenant := h.connect(t, "4")
	tenant.send(handler.EventSendMessage, outgoing{PropertyID: "1", SelectedUserID: "1", Content: "Hello! Is the apartment still available?"})
	tenant.send(handler.EventSendMessage, outgoing{PropertyID: "1", SelectedUserID: "1", Content: "I can visit on Friday."})
	tenant.sync()
}

func TestRESTRequiresAuthentication(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/chats/users", "/chats/1/4/1", "/messages/unread", "/notifications/unread-count"} {
		status, body := h.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		require.NotNil(t, body.Error, path)
		assert.Equal(t, errors.CodeUnauthorized, body.Error.Code, path)
		assert.False(t, body.Success)
	}
}

func TestGetHistory(t *testing.T) {
	h := newHarness(t)
	seedConversation(t, h)

	status, body := h.do(t, http.MethodGet, "/chats/1/4/1", "4", nil)
	require.Equal(t, http.StatusOK, status)

	var messages []entity.Message
	require.NoError(t, json.Unmarshal(body.Data, &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "Hello! Is the apartment still available?", messages[0].Content)
	assert.Equal(t, "4", messages[0].SenderID)
	assertWireKeys(t, body.Data, "id", "chatId", "senderId", "content", "createdAt", "seenAt")

	status, body = h.do(t, http.MethodGet, "/chats/1/1/4", "1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &messages))
	assert.Len(t, messages, 2)
}

func TestGetHistoryOfOthersIsForbidden(t *testing.T) {
	h := newHarness(t)
	seedConversation(t, h)

	status, body := h.do(t, http.MethodGet, "/chats/1/1/4", "4", nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, errors.CodeForbidden, body.Error.Code)
}

func TestUsersChattedWith(t *testing.T) {
	h := newHarness(t)
	seedConversation(t, h)

	status, body := h.do(t, http.MethodGet, "/chats/users?currentUserId=1", "1", nil)
	require.Equal(t, http.StatusOK, status)

	var inbox []entity.InboxEntry
	require.NoError(t, json.Unmarshal(body.Data, &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "4", inbox[0].PeerID)
	assert.Equal(t, "Tenant Four", inbox[0].PeerName)
	assert.Equal(t, "I can visit on Friday.", inbox[0].LastMessage)
	assertWireKeys(t, body.Data, "id", "name", "chatId", "propertyId", "propertyTitle", "lastMessage", "lastMessageAt")

	status, body = h.do(t, http.MethodGet, "/chats/users?currentUserId=1", "4", nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, body.Error)

	status, body = h.do(t, http.MethodGet, "/chats/users", "99", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestUnreadAndMarkAsRead(t *testing.T) {
	h := newHarness(t)
	seedConversation(t, h)

	status, body := h.do(t, http.MethodGet, "/notifications/unread-count", "1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":2}`, string(body.Data))

	status, body = h.do(t, http.MethodGet, "/messages/unread", "1", nil)
	require.Equal(t, http.StatusOK, status)
	var unread []entity.UnreadMessage
	require.NoError(t, json.Unmarshal(body.Data, &unread))
	require.Len(t, unread, 2)
	assert.Equal(t, "I can visit on Friday.", unread[0].Content)
	assertWireKeys(t, body.Data, "messageId", "chatId", "propertyId", "senderId", "content", "createdAt")

	status, body = h.do(t, http.MethodGet, "/messages/unread", "4", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body.Data))

	status, body = h.do(t, http.MethodPut, "/chats/1/4/read", "1", nil)
	require.Equal(t, http.StatusOK, status)
	var receipt struct {
		MessagesSeen      int64 `json:"messagesSeen"`
		NotificationsRead int64 `json:"notificationsRead"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &receipt))
	assert.Equal(t, int64(2), receipt.MessagesSeen)
	assert.Equal(t, int64(2), receipt.NotificationsRead)

	status, body = h.do(t, http.MethodGet, "/notifications/unread-count", "1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":0}`, string(body.Data))

	status, body = h.do(t, http.MethodPut, "/chats/1/4/read", "1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body.Data, &receipt))
	assert.Zero(t, receipt.MessagesSeen)
	assert.Zero(t, receipt.NotificationsRead)
}

func TestMarkAsReadWithoutRoom(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(t, http.MethodPut, "/chats/1/4/read", "1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "Chat not found", body.Error.Message)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	h.connect(t, "4").sync()

	resp, err := http.Get(h.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Server is running", body["status"])
	assert.EqualValues(t, 1, body["connections"])
}

func TestDevTokenIssuesUsableToken(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(t, http.MethodPost, "/_dev/token", "", strings.NewReader(`{"userId":"4"}`))
	require.Equal(t, http.StatusCreated, status)

	var issued struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &issued))
	assert.Equal(t, "4", issued.UserID)

	uid, err := h.authority.VerifyToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "4", uid)

	status, body = h.do(t, http.MethodPost, "/_dev/token", "", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "userId is required", body.Error.Message)
}
