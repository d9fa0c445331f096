package memory

import (
	"sync"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/KarpovAlexandrGo/task-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrTaskNotFound = usecase.ErrTaskNotFound

// TaskRepository keeps tasks in insertion order. Every operation holds mu,
// so at most one writer touches the slice at a time. gen is bumped by every
// successful mutation.
type TaskRepository struct {
	mu     sync.Mutex
	tasks  []entity.Task
	gen    uint64
	now    func() time.Time
	logger *logrus.Logger
}

func NewTaskRepository(now func() time.Time) *TaskRepository {
	if now == nil {
		now = time.Now
	}
	return &TaskRepository{
		now:    now,
		logger: logger.Log,
	}
}

func (r *TaskRepository) Insert(task entity.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = append(r.tasks, task)
	r.gen++
}

func (r *TaskRepository) FindByID(id uuid.UUID) (entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.notFound("FindByID", id)
		return entity.Task{}, ErrTaskNotFound
	}
	return r.tasks[i], nil
}

// Update applies mutate to the stored task and refreshes UpdatedAt. The
// mutator must not change ID or CreatedAt.
func (r *TaskRepository) Update(id uuid.UUID, mutate func(*entity.Task)) (entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.notFound("Update", id)
		return entity.Task{}, ErrTaskNotFound
	}

	task := r.tasks[i]
	mutate(&task)
	task.ID = r.tasks[i].ID
	task.CreatedAt = r.tasks[i].CreatedAt
	task.UpdatedAt = r.now()
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}
	r.tasks[i] = task
	r.gen++
	return task, nil
}

func (r *TaskRepository) Delete(id uuid.UUID) (entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.notFound("Delete", id)
		return entity.Task{}, ErrTaskNotFound
	}
	removed := r.tasks[i]
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	r.gen++
	return removed, nil
}

// DeleteAll empties the repository and reports how many tasks it held.
func (r *TaskRepository) DeleteAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.tasks)
	r.tasks = nil
	r.gen++
	return n
}

// All returns a copy of the tasks in insertion order.
func (r *TaskRepository) All() []entity.Task {
	tasks, _ := r.Snapshot()
	return tasks
}

// Snapshot returns a copy of the tasks together with the generation they
// were read at.
func (r *TaskRepository) Snapshot() ([]entity.Task, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, r.gen
}

func (r *TaskRepository) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.gen
}

func (r *TaskRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tasks)
}

func (r *TaskRepository) indexOf(id uuid.UUID) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *TaskRepository) notFound(method string, id uuid.UUID) {
	r.logger.WithFields(logrus.Fields{
		"method":  method,
		"task_id": id.String(),
	}).Debug("Task not found")
}
