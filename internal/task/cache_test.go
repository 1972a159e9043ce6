package task

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func sampleTask(id string, created time.Time) Task {
	due := created.AddDate(0, 0, 7)
	return Task{
		ID:          id,
		Title:       "Task " + id,
		Description: "Description for " + id,
		Status:      StatusPending,
		Priority:    PriorityHigh,
		Tags:        []string{"alpha", "beta"},
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
		DueDate:     &due,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache := openTestCache(t)
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	want := sampleTask("t-1", created)

	require.NoError(t, cache.Upsert(want))

	got, err := cache.Get("t-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Priority, got.Priority)
	assert.Equal(t, want.Tags, got.Tags)
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
	assert.True(t, got.UpdatedAt.Equal(want.UpdatedAt))
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(*want.DueDate))
}

func TestCacheUpsertReplacesById(t *testing.T) {
	cache := openTestCache(t)
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	original := sampleTask("t-1", created)
	require.NoError(t, cache.Upsert(original))

	updated := original
	updated.Title = "Renamed"
	updated.Status = StatusCompleted
	updated.DueDate = nil
	require.NoError(t, cache.Upsert(updated))

	got, err := cache.Get("t-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Nil(t, got.DueDate)

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCacheListOrderedByCreation(t *testing.T) {
	cache := openTestCache(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// Insert out of creation order.
	require.NoError(t, cache.Upsert(
		sampleTask("t-3", base.AddDate(0, 0, 2)),
		sampleTask("t-1", base),
		sampleTask("t-2", base.AddDate(0, 0, 1)),
	))

	tasks, err := cache.List()
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "t-1", tasks[0].ID)
	assert.Equal(t, "t-2", tasks[1].ID)
	assert.Equal(t, "t-3", tasks[2].ID)
}

func TestCacheReplaceAll(t *testing.T) {
	cache := openTestCache(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Upsert(sampleTask("old-1", base), sampleTask("old-2", base)))

	require.NoError(t, cache.ReplaceAll([]Task{sampleTask("new-1", base)}))

	tasks, err := cache.List()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "new-1", tasks[0].ID)

	_, err = cache.Get("old-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheGetMissing(t *testing.T) {
	cache := openTestCache(t)
	_, err := cache.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheClear(t *testing.T) {
	cache := openTestCache(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Upsert(sampleTask("t-1", base)))

	require.NoError(t, cache.Clear())

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	cache, err := OpenCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Upsert(sampleTask("t-1", base)))
	require.NoError(t, cache.Close())

	reopened, err := OpenCache(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
