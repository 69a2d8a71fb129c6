package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalhub/internal/domain/entity"
	"rentalhub/pkg/errors"
)

func TestLandlordOpensConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.chat.SendMessage(ctx, tenant, SendMessageInput{
		PropertyID: "1",
		PeerID:     "1",
		Content:    "Hello! Is the apartment still available?",
	})
	require.NoError(t, err)

	history, receipt, err := f.reads.OpenConversation(ctx, landlord, "1", "4")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].SeenAt)
	assert.EqualValues(t, 1, receipt.MessagesSeen)
	assert.EqualValues(t, 1, receipt.NotificationsRead)

	messages, err := f.chat.History(ctx, "1", "4", "1")
	require.NoError(t, err)
	require.NotNil(t, messages[0].SeenAt)

	count, err := f.chat.UnreadCount(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, count)

	unread, err := f.chat.Unread(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, unread)

	marked := f.publisher.byEvent(EventMessagesMarkedAsRead)
	require.Len(t, marked, 1)
	assert.Equal(t, ChatChannel(sent.Room.ID), marked[0].Channel)
	assert.Equal(t, landlord.ConnectionID, marked[0].Except)
	assert.Equal(t, "4", marked[0].Data.(MessagesMarkedAsReadEvent).SenderID)
}

func TestReadReceiptCarriesPersistedTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, body := range []string{"Hi", "Still free?"} {
		_, err := f.chat.SendMessage(ctx, tenant, SendMessageInput{PropertyID: "1", PeerID: "1", Content: body})
		require.NoError(t, err)
	}

	receipt, err := f.reads.MarkConversationRead(ctx, landlord, "1", "4")
	require.NoError(t, err)

	marked := f.publisher.byEvent(EventMessagesMarkedAsRead)
	require.Len(t, marked, 1)
	broadcast := marked[0].Data.(MessagesMarkedAsReadEvent).SeenAt
	assert.True(t, receipt.SeenAt.Equal(broadcast))

	messages, err := f.chat.History(ctx, "1", "4", "1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, msg := range messages {
		require.NotNil(t, msg.SeenAt)
		assert.True(t, broadcast.Equal(*msg.SeenAt), "seenAt %s, broadcast %s", msg.SeenAt, broadcast)
	}

	var notifications []entity.Notification
	require.NoError(t, f.db.Where("recipient_user_id = ?", "1").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		require.NotNil(t, n.ReadAt)
		assert.True(t, broadcast.Equal(*n.ReadAt), "readAt %s, broadcast %s", n.ReadAt, broadcast)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chat.SendMessage(ctx, tenant, SendMessageInput{PropertyID: "1", PeerID: "1", Content: "Hi"})
	require.NoError(t, err)

	_, err = f.reads.MarkConversationRead(ctx, landlord, "1", "4")
	require.NoError(t, err)
	first, err := f.chat.History(ctx, "1", "4", "1")
	require.NoError(t, err)

	receipt, err := f.reads.MarkConversationRead(ctx, landlord, "1", "4")
	require.NoError(t, err)
	assert.Zero(t, receipt.MessagesSeen)
	assert.Zero(t, receipt.NotificationsRead)

	second, err := f.chat.History(ctx, "1", "4", "1")
	require.NoError(t, err)
	assert.True(t, first[0].SeenAt.Equal(*second[0].SeenAt))
}

func TestReaderOwnMessagesStayUnseen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chat.SendMessage(ctx, tenant, SendMessageInput{PropertyID: "1", PeerID: "1", Content: "Hi"})
	require.NoError(t, err)

	// The sender reading their own conversation marks nothing.
	receipt, err := f.reads.MarkConversationRead(ctx, tenant, "1", "1")
	require.NoError(t, err)
	assert.Zero(t, receipt.MessagesSeen)

	unread, err := f.chat.Unread(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestMarkReadWithoutRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.reads.MarkConversationRead(context.Background(), landlord, "1", "4")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Empty(t, f.publisher.byEvent(EventMessagesMarkedAsRead))

	history, receipt, err := f.reads.OpenConversation(context.Background(), landlord, "1", "4")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Nil(t, receipt)
}
