package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-metrics/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(id string) models.User {
	avatar := "a1b2c3"
	return models.User{
		ID:          id,
		Name:        "someone",
		AvatarHash:  &avatar,
		JoinedAt:    time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		IsStaff:     false,
		InGuild:     true,
		PublicFlags: map[string]bool{"early_supporter": true},
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetUser(db, "404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertAndGetUser(t *testing.T) {
	db := newTestDB(t)

	want := testUser("100")
	require.NoError(t, InsertUser(db, want))

	got, err := GetUser(db, "100")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	require.NotNil(t, got.AvatarHash)
	assert.Equal(t, *want.AvatarHash, *got.AvatarHash)
	assert.Nil(t, got.GuildAvatarHash)
	assert.True(t, got.JoinedAt.Equal(want.JoinedAt))
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
	assert.True(t, got.InGuild)
	assert.True(t, got.PublicFlags["early_supporter"])
	assert.False(t, got.PublicFlags["system"])
}

func TestInsertUser_KeyConflict(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, InsertUser(db, testUser("100")))

	err := InsertUser(db, testUser("100"))
	require.Error(t, err)
	assert.True(t, IsKeyConflict(err))
}

func TestInsertUser_RejectsZeroTimestamp(t *testing.T) {
	db := newTestDB(t)

	u := testUser("100")
	u.JoinedAt = time.Time{}

	err := InsertUser(db, u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero timestamp")
}

func TestUpdateUser_PreservesCreatedAt(t *testing.T) {
	db := newTestDB(t)

	orig := testUser("100")
	require.NoError(t, InsertUser(db, orig))

	changed := orig
	changed.Name = "renamed"
	changed.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpdateUser(db, changed))

	got, err := GetUser(db, "100")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.CreatedAt.Equal(orig.CreatedAt), "created_at must be immutable")
}

func TestBulkUpsertUsers_InsertsAndUpdates(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, InsertUser(db, testUser("1")))

	batch := []models.User{testUser("1"), testUser("2"), testUser("3")}
	batch[0].Name = "renamed"

	existing, err := ExistingUserIDs(db, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Len(t, existing, 1)
	assert.True(t, existing["1"])

	require.NoError(t, BulkUpsertUsers(db, batch))

	got, err := GetUser(db, "1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	_, err = GetUser(db, "3")
	require.NoError(t, err)
}

func TestPresentAndAbsentUsers(t *testing.T) {
	db := newTestDB(t)

	u1 := testUser("1")
	u2 := testUser("2")
	u2.InGuild = false
	require.NoError(t, InsertUser(db, u1))
	require.NoError(t, InsertUser(db, u2))

	present, err := PresentUserIDs(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, present)

	require.NoError(t, MarkAllUsersAbsent(db))
	present, err = PresentUserIDs(db)
	require.NoError(t, err)
	assert.Empty(t, present)
}

func TestMessageLifecycle(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertCategory(db, "10", "general"))
	require.NoError(t, UpsertChannel(db, models.Channel{ID: "20", Name: "chat"}))
	require.NoError(t, InsertUser(db, testUser("100")))

	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	hash := "abcdef"
	msg := models.Message{
		ID:          "500",
		ChannelID:   "20",
		AuthorID:    "100",
		CreatedAt:   &created,
		ContentHash: &hash,
	}
	require.NoError(t, InsertMessage(db, msg))

	exists, err := MessageExists(db, "500")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := GetMessage(db, "500")
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.Nil(t, got.ThreadID)
	require.NotNil(t, got.CreatedAt)
	assert.True(t, got.CreatedAt.Equal(created))

	require.NoError(t, MarkMessageDeleted(db, "500"))
	got, err = GetMessage(db, "500")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	// Unknown ids are a silent no-op.
	require.NoError(t, MarkMessageDeleted(db, "404"))
	require.NoError(t, MarkMessagesDeleted(db, []string{"500", "404"}))
}

func TestInsertMessage_UnknownAuthorViolatesConstraint(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertChannel(db, models.Channel{ID: "20", Name: "chat"}))

	err := InsertMessage(db, models.Message{ID: "500", ChannelID: "20", AuthorID: "404"})
	assert.Error(t, err, "foreign keys must be enforced")
}

func TestSoftDeleteMarking(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpsertCategory(db, "10", "general"))
	require.NoError(t, UpsertCategory(db, "11", "archive"))
	require.NoError(t, MarkCategoriesDeletedExcept(db, []string{"10"}))

	kept, err := GetCategory(db, "10")
	require.NoError(t, err)
	assert.False(t, kept.Deleted)

	gone, err := GetCategory(db, "11")
	require.NoError(t, err)
	assert.True(t, gone.Deleted, "row is soft-deleted, not removed")
}
