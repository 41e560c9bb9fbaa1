package aicache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a per-test in-memory database. The shared cache
// DSN keeps the schema visible across pooled connections.
func newTestStore(t *testing.T) *SQLEntryStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewConnection("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema())

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{})
	require.NoError(t, err)

	return NewSQLEntryStore(db.DB, logger)
}

func testEntry(userID, hash string, createdAt time.Time) *aicache.Entry {
	return &aicache.Entry{
		UserID:         userID,
		RequestHash:    hash,
		RequestData:    []byte(`{"promptType":"outfit-generation"}`),
		Response:       []byte(`{"outfit":[]}`),
		CreatedAt:      createdAt,
		LastAccessedAt: createdAt,
	}
}

func TestEntryStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	entry := testEntry("u1", "hash-1", createdAt)
	require.NoError(t, store.InsertEntry(ctx, entry))
	assert.NotEmpty(t, entry.ID, "insert assigns a surrogate key")

	got, err := store.SelectEntry(ctx, "u1", "hash-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "hash-1", got.RequestHash)
	assert.JSONEq(t, string(entry.RequestData), string(got.RequestData))
	assert.JSONEq(t, string(entry.Response), string(got.Response))
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.Equal(t, int64(0), got.AccessCount)
}

func TestEntryStoreSelectMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.SelectEntry(context.Background(), "u1", "no-such-hash")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntryStoreDuplicateInsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertEntry(ctx, testEntry("u1", "hash-1", createdAt)))

	err := store.InsertEntry(ctx, testEntry("u1", "hash-1", createdAt))
	assert.ErrorIs(t, err, aicache.ErrDuplicateEntry)

	// The same hash under another user is a distinct row.
	assert.NoError(t, store.InsertEntry(ctx, testEntry("u2", "hash-1", createdAt)))
}

func TestEntryStoreTouch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertEntry(ctx, testEntry("u1", "hash-1", createdAt)))

	accessedAt := createdAt.Add(2 * time.Hour)
	require.NoError(t, store.TouchEntry(ctx, "u1", "hash-1", accessedAt))
	require.NoError(t, store.TouchEntry(ctx, "u1", "hash-1", accessedAt.Add(time.Minute)))

	got, err := store.SelectEntry(ctx, "u1", "hash-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.AccessCount)
	assert.True(t, got.LastAccessedAt.After(accessedAt))
}

func TestEntryStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertEntry(ctx, testEntry("u1", "hash-1", createdAt)))
	require.NoError(t, store.DeleteEntry(ctx, "u1", "hash-1"))

	got, err := store.SelectEntry(ctx, "u1", "hash-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent row is not an error.
	assert.NoError(t, store.DeleteEntry(ctx, "u1", "hash-1"))
}

func TestEntryStoreDeleteExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	old := testEntry("u1", "old", now.Add(-80*time.Hour))
	oldUsed := testEntry("u1", "old-used", now.Add(-80*time.Hour))
	fresh := testEntry("u1", "fresh", now.Add(-1*time.Hour))
	require.NoError(t, store.InsertEntry(ctx, old))
	require.NoError(t, store.InsertEntry(ctx, oldUsed))
	require.NoError(t, store.InsertEntry(ctx, fresh))
	require.NoError(t, store.TouchEntry(ctx, "u1", "old-used", now))

	cutoff := now.Add(-72 * time.Hour)

	deleted, err := store.DeleteExpired(ctx, cutoff, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "unused-only pass removes just the never-read row")

	got, err := store.SelectEntry(ctx, "u1", "old-used")
	require.NoError(t, err)
	assert.NotNil(t, got)

	deleted, err = store.DeleteExpired(ctx, cutoff, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	got, err = store.SelectEntry(ctx, "u1", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
