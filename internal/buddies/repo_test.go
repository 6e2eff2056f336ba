package buddies

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pmcollective/pmc-backend/pkg/db"
	"github.com/pmcollective/pmc-backend/pkg/db/models"
	"github.com/pmcollective/pmc-backend/pkg/enums"
)

func setupBuddiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:buddies_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS buddy_requests (
  id TEXT PRIMARY KEY,
  sender_id TEXT NOT NULL,
  receiver_id TEXT NOT NULL,
  status TEXT NOT NULL,
  message TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_buddy_requests_sender_receiver ON buddy_requests (sender_id, receiver_id);`
	require.NoError(t, conn.Exec(schema).Error)

	t.Cleanup(func() {
		conn.Exec("DELETE FROM buddy_requests")
	})
	return conn
}

func TestCreateDuplicatePairRejected(t *testing.T) {
	conn := setupBuddiesTestDB(t)
	repo := NewRepository(conn)

	sender := uuid.New()
	receiver := uuid.New()
	first := &models.BuddyRequest{SenderID: sender, ReceiverID: receiver, Status: enums.RequestStatusPending}
	require.NoError(t, repo.Create(context.Background(), first))

	// A rejected request still occupies the pair slot.
	require.NoError(t, repo.UpdateStatus(context.Background(), first.ID, enums.RequestStatusRejected))

	second := &models.BuddyRequest{SenderID: sender, ReceiverID: receiver, Status: enums.RequestStatusPending}
	err := repo.Create(context.Background(), second)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "uq_buddy_requests_sender_receiver"))
}

func TestReversePairAllowed(t *testing.T) {
	conn := setupBuddiesTestDB(t)
	repo := NewRepository(conn)

	a := uuid.New()
	b := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &models.BuddyRequest{SenderID: a, ReceiverID: b, Status: enums.RequestStatusPending}))
	require.NoError(t, repo.Create(context.Background(), &models.BuddyRequest{SenderID: b, ReceiverID: a, Status: enums.RequestStatusPending}))
}

func TestListAcceptedByParticipantUnion(t *testing.T) {
	conn := setupBuddiesTestDB(t)
	repo := NewRepository(conn)

	me := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &models.BuddyRequest{SenderID: me, ReceiverID: uuid.New(), Status: enums.RequestStatusAccepted}))
	require.NoError(t, repo.Create(context.Background(), &models.BuddyRequest{SenderID: uuid.New(), ReceiverID: me, Status: enums.RequestStatusAccepted}))
	require.NoError(t, repo.Create(context.Background(), &models.BuddyRequest{SenderID: me, ReceiverID: uuid.New(), Status: enums.RequestStatusPending}))

	found, err := repo.ListAcceptedByParticipant(context.Background(), me)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
