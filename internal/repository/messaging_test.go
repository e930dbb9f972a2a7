package repository

import (
	"context"
	"testing"
	"time"

	"chattym/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func send(t *testing.T, repo MessagingRepository, convID, senderID uint, content string) *models.Message {
	t.Helper()
	msg := &models.Message{ConversationID: convID, SenderID: senderID, Content: content}
	require.NoError(t, repo.SendMessage(context.Background(), msg))
	return msg
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestMessagingRepository_StartDirectIsIdempotent(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewMessagingRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")

	first, created, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, first.Participants, 2)
	assert.Equal(t, int64(1), countRows(t, db, &models.Conversation{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.Participant{}))

	second, created, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	reverse, created, err := repo.StartDirect(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, reverse.ID)

	initiator, err := repo.GetParticipant(ctx, first.ID, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, initiator.LastRead)
	other, err := repo.GetParticipant(ctx, first.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, other.LastRead)
}

func TestMessagingRepository_StartDirectIgnoresGroups(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewMessagingRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "carol")

	group, err := repo.CreateGroup(ctx, "trio", a.ID, []uint{b.ID, c.ID})
	require.NoError(t, err)
	assert.Len(t, group.Participants, 3)

	found, err := repo.FindDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	direct, created, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, group.ID, direct.ID)
}

func TestMessagingRepository_UnreadCount(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewMessagingRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	outsider := createUser(t, db, "eve")
	conv, _, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)

	send(t, repo, conv.ID, a.ID, "hi")
	send(t, repo, conv.ID, a.ID, "are you there?")
	send(t, repo, conv.ID, b.ID, "yes")

	unread, err := repo.UnreadCount(ctx, conv.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread, "sending advances the sender's watermark")

	unread, err = repo.UnreadCount(ctx, conv.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	unread, err = repo.UnreadCount(ctx, conv.ID, outsider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	require.NoError(t, repo.MarkRead(ctx, conv.ID, a.ID, time.Now()))
	unread, err = repo.UnreadCount(ctx, conv.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMessagingRepository_UnreadCountWithoutWatermark(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewMessagingRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	conv, _, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	send(t, repo, conv.ID, a.ID, "one")
	send(t, repo, conv.ID, a.ID, "two")

	unread, err := repo.UnreadCount(ctx, conv.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	total, err := repo.TotalUnread(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestMessagingRepository_InboxOrdering(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewMessagingRepository(db)
	ctx := context.Background()

	me := createUser(t, db, "me")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "carol")
	d := createUser(t, db, "dave")

	quiet, _, err := repo.StartDirect(ctx, me.ID, b.ID)
	require.NoError(t, err)
	older, _, err := repo.StartDirect(ctx, me.ID, c.ID)
	require.NoError(t, err)
	newer, _, err := repo.StartDirect(ctx, me.ID, d.ID)
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, repo.SendMessage(ctx, &models.Message{ConversationID: newer.ID, SenderID: d.ID, Content: "x", CreatedAt: base}))
	require.NoError(t, repo.SendMessage(ctx, &models.Message{ConversationID: older.ID, SenderID: c.ID, Content: "y", CreatedAt: base.Add(time.Minute)}))

	convs, total, err := repo.Inbox(ctx, me.ID, Page{Limit: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, convs, 3)
	assert.Equal(t, []uint{older.ID, newer.ID, quiet.ID}, []uint{convs[0].ID, convs[1].ID, convs[2].ID})

	last, err := repo.LastMessage(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "y", last.Content)

	none, err := repo.LastMessage(ctx, quiet.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMessagingRepository_LeaveAndDelete(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewMessagingRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	conv, _, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)

	msg := send(t, repo, conv.ID, a.ID, "oops")
	require.NoError(t, repo.SoftDeleteMessage(ctx, msg.ID))
	msgs, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, repo.Leave(ctx, conv.ID, b.ID))
	ids, err := repo.ActiveParticipantIDs(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids)

	err = repo.Leave(ctx, conv.ID, b.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	again, created, err := repo.StartDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, conv.ID, again.ID)
}
