package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testDocument(created time.Time) model.ExportDocument {
	return model.ExportDocument{
		Created: created,
		WallSet: []model.RouteRecord{
			{ColorName: "Red", Hex: "#e63946", HoldCount: 9, Confidence: model.ConfidenceHigh, GradeV: "V4", GradeFont: "6A+"},
			{ColorName: "Blue", Hex: "#2563eb", HoldCount: 7, Confidence: model.ConfidenceLow, SetterNotes: "no dyno"},
		},
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	require.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.SetSetting(context.Background(), "k", "v"))
}

func TestSettings(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetSetting(ctx, "vision.api_key")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SetSetting(ctx, "vision.api_key", "sk-one"))
	require.NoError(t, store.SetSetting(ctx, "vision.api_key", "sk-two"))

	got, err := store.GetSetting(ctx, "vision.api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-two", got)

	require.NoError(t, store.DeleteSetting(ctx, "vision.api_key"))
	require.NoError(t, store.DeleteSetting(ctx, "vision.api_key"))

	_, err = store.GetSetting(ctx, "vision.api_key")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, store.SetSetting(ctx, "", "x"), ErrEmptyString)
}

func TestSaveAndGetWallSet(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	id, err := store.SaveWallSet(ctx, testDocument(created), "anthropic", "wall.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	summary, doc, err := store.GetWallSet(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, summary.ID)
	assert.Equal(t, "anthropic", summary.Provider)
	assert.Equal(t, "wall.jpg", summary.Source)
	assert.Equal(t, 2, summary.RouteCount)
	assert.Equal(t, 1, summary.GradedCount)
	assert.True(t, created.Equal(summary.Created))
	assert.False(t, summary.SavedAt.IsZero())

	assert.True(t, created.Equal(doc.Created))
	assert.Equal(t, testDocument(created).WallSet, doc.WallSet)
}

func TestSaveWallSet_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SaveWallSet(ctx, model.ExportDocument{Created: time.Now()}, "demo", "")
	require.ErrorIs(t, err, ErrEmptyWallSet)

	_, err = store.SaveWallSet(ctx, model.ExportDocument{WallSet: testDocument(time.Now()).WallSet}, "demo", "")
	require.ErrorIs(t, err, ErrInvalidWallSet)

	doc := testDocument(time.Now())
	doc.WallSet[1].ColorName = ""
	_, err = store.SaveWallSet(ctx, doc, "demo", "")
	require.ErrorIs(t, err, ErrInvalidWallSet)
}

func TestGetWallSet_NotFound(t *testing.T) {
	store := createTestStorage(t)
	_, _, err := store.GetWallSet(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListWallSets(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	sets, err := store.ListWallSets(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, sets)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.SaveWallSet(ctx, testDocument(time.Now()), "demo", "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	sets, err = store.ListWallSets(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, ids[2], sets[0].ID)
	assert.Equal(t, ids[1], sets[1].ID)
}

func TestDeleteWallSet(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	id, err := store.SaveWallSet(ctx, testDocument(time.Now()), "demo", "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteWallSet(ctx, id))
	require.ErrorIs(t, store.DeleteWallSet(ctx, id), common.ErrNotFound)
}
