package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrCacheMiss    = errors.New("cache miss")
)

const DefaultCacheTTL = 5 * time.Minute

type TaskUseCase interface {
	Create(ctx context.Context, task entity.NewTask) (entity.Task, error)
	Get(ctx context.Context, id uuid.UUID) (entity.Task, error)
	List(ctx context.Context, opts ListOptions) ([]entity.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch entity.Patch) (entity.Task, error)
	Delete(ctx context.Context, id uuid.UUID) (entity.Task, error)
	DeleteAll(ctx context.Context) (int, error)
}

type TaskRepository interface {
	Insert(task entity.Task)
	FindByID(id uuid.UUID) (entity.Task, error)
	Update(id uuid.UUID, mutate func(*entity.Task)) (entity.Task, error)
	Delete(id uuid.UUID) (entity.Task, error)
	DeleteAll() int
	// Snapshot returns the tasks in insertion order and the store generation,
	// which changes with every mutation.
	Snapshot() ([]entity.Task, uint64)
	Generation() uint64
}

// CacheRepository caches the full task enumeration. GetTasks returns
// ErrCacheMiss when nothing is cached.
type CacheRepository interface {
	SetTasks(ctx context.Context, tasks []entity.Task, ttl time.Duration) error
	GetTasks(ctx context.Context) ([]entity.Task, error)
	Invalidate(ctx context.Context) error
}

type TaskUseCaseImpl struct {
	taskRepo  TaskRepository
	cacheRepo CacheRepository
	cacheTTL  time.Duration
	now       func() time.Time
	newID     func() (uuid.UUID, error)
}

type Option func(*TaskUseCaseImpl)

func WithClock(now func() time.Time) Option {
	return func(uc *TaskUseCaseImpl) { uc.now = now }
}

func WithIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(uc *TaskUseCaseImpl) { uc.newID = newID }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *TaskUseCaseImpl) { uc.cacheTTL = ttl }
}

func NewTaskUseCase(taskRepo TaskRepository, cacheRepo CacheRepository, opts ...Option) *TaskUseCaseImpl {
	uc := &TaskUseCaseImpl{
		taskRepo:  taskRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  DefaultCacheTTL,
		now:       time.Now,
		newID:     uuid.NewRandom,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *TaskUseCaseImpl) Create(ctx context.Context, n entity.NewTask) (entity.Task, error) {
	logger.Log.WithField("title", n.Title).Debug("Starting task creation")

	id, err := uc.newID()
	if err != nil {
		logger.Log.WithError(err).Error("Failed to generate task ID")
		return entity.Task{}, fmt.Errorf("generate task id: %w", err)
	}

	task := n.Build(id, uc.now())
	uc.taskRepo.Insert(task)
	uc.invalidate(ctx, "create")

	logger.Log.WithField("task_id", task.ID.String()).Info("Task created successfully")
	return task, nil
}

func (uc *TaskUseCaseImpl) Get(ctx context.Context, id uuid.UUID) (entity.Task, error) {
	task, err := uc.taskRepo.FindByID(id)
	if err != nil {
		logger.Log.WithField("task_id", id.String()).WithError(err).Warn("Failed to get task")
		return entity.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// List returns the stored tasks shaped by opts. The cached enumeration is
// used when present; otherwise the store is read and the cache refilled.
func (uc *TaskUseCaseImpl) List(ctx context.Context, opts ListOptions) ([]entity.Task, error) {
	tasks, err := uc.cacheRepo.GetTasks(ctx)
	switch {
	case err == nil:
		logger.Log.Debug("Tasks retrieved from cache")
	case errors.Is(err, ErrCacheMiss):
		logger.Log.Debug("Cache miss, retrieving from repository")
		tasks = uc.refill(ctx)
	default:
		logger.Log.WithError(err).Warn("Failed to read task cache")
		tasks = uc.refill(ctx)
	}

	result := ApplyListOptions(tasks, opts)
	logger.Log.WithFields(logrus.Fields{
		"status": opts.Status,
		"sortBy": opts.SortBy,
		"count":  len(result),
	}).Info("Tasks listed successfully")
	return result, nil
}

func (uc *TaskUseCaseImpl) Update(ctx context.Context, id uuid.UUID, patch entity.Patch) (entity.Task, error) {
	updated, err := uc.taskRepo.Update(id, patch.Apply)
	if err != nil {
		logger.Log.WithField("task_id", id.String()).WithError(err).Warn("Failed to update task")
		return entity.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	uc.invalidate(ctx, "update")

	logger.Log.WithField("task_id", id.String()).Info("Task updated successfully")
	return updated, nil
}

func (uc *TaskUseCaseImpl) Delete(ctx context.Context, id uuid.UUID) (entity.Task, error) {
	removed, err := uc.taskRepo.Delete(id)
	if err != nil {
		logger.Log.WithField("task_id", id.String()).WithError(err).Warn("Failed to delete task")
		return entity.Task{}, fmt.Errorf("delete task %s: %w", id, err)
	}
	uc.invalidate(ctx, "delete")

	logger.Log.WithField("task_id", id.String()).Info("Task deleted successfully")
	return removed, nil
}

func (uc *TaskUseCaseImpl) DeleteAll(ctx context.Context) (int, error) {
	count := uc.taskRepo.DeleteAll()
	uc.invalidate(ctx, "delete_all")

	logger.Log.WithField("count", count).Info("All tasks deleted")
	return count, nil
}

// refill caches a store snapshot. A mutation racing with the write may have
// invalidated the cache before SetTasks landed, so the entry is dropped again
// whenever the store moved on from the snapshot.
func (uc *TaskUseCaseImpl) refill(ctx context.Context) []entity.Task {
	tasks, gen := uc.taskRepo.Snapshot()
	if err := uc.cacheRepo.SetTasks(ctx, tasks, uc.cacheTTL); err != nil {
		logger.Log.WithError(err).Error("Failed to set tasks in cache")
		return tasks
	}
	if uc.taskRepo.Generation() != gen {
		logger.Log.Debug("Store changed during cache refill")
		uc.invalidate(ctx, "refill")
	}
	return tasks
}

// invalidate drops the cached enumeration. A failure is logged only: the
// store is the source of truth and the cache entry expires on its own.
func (uc *TaskUseCaseImpl) invalidate(ctx context.Context, operation string) {
	if err := uc.cacheRepo.Invalidate(ctx); err != nil {
		logger.Log.WithField("operation", operation).WithError(err).Error("Failed to invalidate cache")
	}
}
