package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := NewCacheRepository(Options{Addr: mr.Addr(), Instance: "test"})
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

func sampleTasks() []entity.Task {
	created := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	due := time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)
	return []entity.Task{
		{
			ID:          uuid.New(),
			Title:       "Buy milk",
			Description: "2%",
			Status:      entity.StatusTodo,
			Priority:    entity.PriorityHigh,
			DueDate:     &due,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          uuid.New(),
			Title:       "Call mom",
			Description: "Sunday",
			Status:      entity.StatusInProgress,
			Priority:    entity.PriorityLow,
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
		},
	}
}

func TestGetTasksMiss(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.GetTasks(context.Background())
	assert.True(t, errors.Is(err, usecase.ErrCacheMiss))
}

func TestSetAndGetTasks(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()
	tasks := sampleTasks()

	require.NoError(t, repo.SetTasks(ctx, tasks, time.Minute))
	assert.True(t, mr.Exists(repo.key))
	assert.Equal(t, time.Minute, mr.TTL(repo.key))

	got, err := repo.GetTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, tasks[0].ID, got[0].ID)
	assert.True(t, tasks[0].DueDate.Equal(*got[0].DueDate))
	assert.Nil(t, got[1].DueDate)
	assert.Equal(t, tasks[1].Status, got[1].Status)
}

func TestTasksExpire(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.SetTasks(ctx, sampleTasks(), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.GetTasks(ctx)
	assert.True(t, errors.Is(err, usecase.ErrCacheMiss))
}

func TestInvalidate(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.SetTasks(ctx, sampleTasks(), time.Minute))
	require.NoError(t, repo.Invalidate(ctx))
	assert.False(t, mr.Exists(repo.key))

	assert.NoError(t, repo.Invalidate(ctx), "invalidating an empty cache is not an error")
}

func TestCorruptEntry(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(repo.key, "{not json"))

	_, err := repo.GetTasks(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, usecase.ErrCacheMiss))
}

func TestUnavailable(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, repo.Ping(ctx))

	mr.Close()
	assert.Error(t, repo.Ping(ctx))
	_, err := repo.GetTasks(ctx)
	assert.Error(t, err)
}

func TestInstancesDoNotShareTheList(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	first := NewCacheRepository(Options{Addr: mr.Addr(), Instance: "first"})
	second := NewCacheRepository(Options{Addr: mr.Addr(), Instance: "second"})
	t.Cleanup(func() {
		_ = first.Close()
		_ = second.Close()
	})

	require.NoError(t, first.SetTasks(ctx, sampleTasks(), time.Minute))
	assert.Equal(t, "tasks:all:first", first.key)

	_, err := second.GetTasks(ctx)
	assert.True(t, errors.Is(err, usecase.ErrCacheMiss))
	require.NoError(t, second.Invalidate(ctx))

	got, err := first.GetTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
