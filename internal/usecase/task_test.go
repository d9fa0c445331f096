package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/internal/repo/memory"
	"github.com/KarpovAlexandrGo/task-service/internal/repo/redis"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCache struct {
	tasks         []entity.Task
	cached        bool
	getErr        error
	invalidateErr error
	sets          int
	invalidations int
}

func (c *recordingCache) SetTasks(_ context.Context, tasks []entity.Task, _ time.Duration) error {
	c.sets++
	c.tasks = tasks
	c.cached = true
	return nil
}

func (c *recordingCache) GetTasks(context.Context) ([]entity.Task, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if !c.cached {
		return nil, usecase.ErrCacheMiss
	}
	return c.tasks, nil
}

func (c *recordingCache) Invalidate(context.Context) error {
	c.invalidations++
	c.cached = false
	c.tasks = nil
	return c.invalidateErr
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func setup(t *testing.T) (*usecase.TaskUseCaseImpl, *recordingCache, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cache := &recordingCache{}
	uc := usecase.NewTaskUseCase(memory.NewTaskRepository(clk.Now), cache, usecase.WithClock(clk.Now))
	return uc, cache, clk
}

func newTask(title string) entity.NewTask {
	return entity.NewTask{
		Title:       title,
		Description: "description of " + title,
		Status:      entity.StatusTodo,
		Priority:    entity.PriorityMedium,
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	uc, _, clk := setup(t)
	ctx := context.Background()

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 50; i++ {
		task, err := uc.Create(ctx, newTask("task"))
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
		assert.Equal(t, clk.t, task.CreatedAt)
		assert.Equal(t, clk.t, task.UpdatedAt)
	}
}

func TestCreateIDGeneratorFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	uc := usecase.NewTaskUseCase(memory.NewTaskRepository(nil), &recordingCache{},
		usecase.WithIDGenerator(func() (uuid.UUID, error) { return uuid.Nil, boom }))

	_, err := uc.Create(context.Background(), newTask("a"))
	assert.True(t, errors.Is(err, boom))

	tasks, err := uc.List(context.Background(), usecase.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, newTask("round trip"))
	require.NoError(t, err)

	got, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = uc.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, usecase.ErrTaskNotFound))
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	uc, _, clk := setup(t)
	ctx := context.Background()

	due := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	n := newTask("keep me")
	n.DueDate = &due
	created, err := uc.Create(ctx, n)
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Minute)
	updated, err := uc.Update(ctx, created.ID, entity.Patch{Status: entity.Some(entity.StatusCompleted)})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCompleted, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.DueDate, updated.DueDate)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = uc.Update(ctx, uuid.New(), entity.Patch{Title: entity.Some("x")})
	assert.True(t, errors.Is(err, usecase.ErrTaskNotFound))
}

func TestDeleteAndDeleteAll(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	a, _ := uc.Create(ctx, newTask("a"))
	_, _ = uc.Create(ctx, newTask("b"))
	_, _ = uc.Create(ctx, newTask("c"))

	removed, err := uc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, removed)

	_, err = uc.Delete(ctx, a.ID)
	assert.True(t, errors.Is(err, usecase.ErrTaskNotFound))

	count, err := uc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = uc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListUsesAndInvalidatesCache(t *testing.T) {
	uc, cache, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, newTask("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)

	tasks, err := uc.List(ctx, usecase.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, cache.sets)

	tasks, err = uc.List(ctx, usecase.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, cache.sets, "second list must be served from cache")

	_, err = uc.Create(ctx, newTask("b"))
	require.NoError(t, err)
	tasks, err = uc.List(ctx, usecase.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, 2, cache.sets)
}

func TestCacheFailuresDoNotFailRequests(t *testing.T) {
	uc, cache, _ := setup(t)
	ctx := context.Background()
	cache.getErr = errors.New("connection refused")
	cache.invalidateErr = errors.New("connection refused")

	created, err := uc.Create(ctx, newTask("a"))
	require.NoError(t, err)

	tasks, err := uc.List(ctx, usecase.ListOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

// interleavingCache runs beforeSet once, right before the first write, to
// land a request between the store snapshot and the cache write.
type interleavingCache struct {
	*redis.CacheRepository
	beforeSet func()
}

func (c *interleavingCache) SetTasks(ctx context.Context, tasks []entity.Task, ttl time.Duration) error {
	if f := c.beforeSet; f != nil {
		c.beforeSet = nil
		f()
	}
	return c.CacheRepository.SetTasks(ctx, tasks, ttl)
}

func TestRefillDoesNotCacheStaleSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	redisCache := redis.NewCacheRepository(redis.Options{Addr: mr.Addr(), Instance: "refill"})
	t.Cleanup(func() { _ = redisCache.Close() })

	repo := memory.NewTaskRepository(nil)
	cache := &interleavingCache{CacheRepository: redisCache}
	uc := usecase.NewTaskUseCase(repo, cache)

	var created entity.Task
	cache.beforeSet = func() {
		var err error
		created, err = uc.Create(ctx, newTask("concurrent"))
		require.NoError(t, err)
	}

	tasks, err := uc.List(ctx, usecase.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "the list reflects the snapshot it was read from")

	tasks, err = uc.List(ctx, usecase.ListOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.Equal(t, repo.Len(), len(tasks))
}
