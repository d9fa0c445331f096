package http

import (
	"net/http"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// TaskHandler serves the task REST API.
type TaskHandler struct {
	taskUseCase usecase.TaskUseCase
	now         func() time.Time
}

// NewTaskHandler builds a handler. now drives the due date rules; nil means
// time.Now.
func NewTaskHandler(taskUseCase usecase.TaskUseCase, now func() time.Time) *TaskHandler {
	if now == nil {
		now = time.Now
	}
	return &TaskHandler{
		taskUseCase: taskUseCase,
		now:         now,
	}
}

// RegisterRoutes mounts the task routes with their validation chains.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/tasks", func(r chi.Router) {
		r.With(decodeTaskInput, h.ValidateCreateTask).Post("/", h.CreateTask)
		r.Get("/", h.ListTasks)
		r.Delete("/", h.DeleteAllTasks)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(ValidateTaskID)
			r.Get("/", h.GetTask)
			r.With(decodeTaskInput, h.ValidateUpdateTask, h.ValidateHighPriorityConstraint).Put("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
		})
	})
}

// CreateTask creates a task.
// @Summary      Create a task
// @Description  Creates a task. HIGH priority tasks need a due date within 7 days.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task body     TaskRequest true "Task fields"
// @Success      201  {object} entity.Task
// @Failure      400  {object} ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	n, err := taskInputFrom(r.Context()).NewTask(h.now().Location())
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	task, err := h.taskUseCase.Create(r.Context(), n)
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, task)
}

// ListTasks lists tasks.
// @Summary      List tasks
// @Description  Lists tasks in creation order, optionally filtered by status and sorted by due date.
// @Tags         tasks
// @Produce      json
// @Param        status  query    string false "Status filter, case-insensitive" Enums(TODO, IN_PROGRESS, COMPLETED)
// @Param        sortBy  query    string false "Due date ordering" Enums(dueDate:asc, dueDate:desc)
// @Success      200     {object} ListResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tasks, err := h.taskUseCase.List(r.Context(), usecase.ListOptions{
		Status: query.Get("status"),
		SortBy: query.Get("sortBy"),
	})
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ListResponse{Count: len(tasks), Tasks: tasks})
}

// GetTask returns one task.
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id   path     string true "Task ID"
// @Success      200  {object} entity.Task
// @Failure      400  {object} ErrorResponse
// @Failure      404  {object} ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskUseCase.Get(r.Context(), taskIDFrom(r.Context()))
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update.
// @Summary      Update a task
// @Description  Changes only the supplied fields. Setting priority to HIGH requires a due date in the same request.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id   path     string      true "Task ID"
// @Param        task body     TaskRequest true "Fields to change"
// @Success      200  {object} entity.Task
// @Failure      400  {object} ErrorResponse
// @Failure      404  {object} ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	patch, err := taskInputFrom(r.Context()).Patch(h.now().Location())
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	task, err := h.taskUseCase.Update(r.Context(), taskIDFrom(r.Context()), patch)
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, task)
}

// DeleteTask removes one task.
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path     string true "Task ID"
// @Success      200  {object} DeleteResponse
// @Failure      400  {object} ErrorResponse
// @Failure      404  {object} ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskUseCase.Delete(r.Context(), taskIDFrom(r.Context()))
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DeleteResponse{Message: msgTaskDeleted, Task: task})
}

// DeleteAllTasks empties the store.
// @Summary      Delete all tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {object} DeleteAllResponse
// @Router       /api/tasks [delete]
func (h *TaskHandler) DeleteAllTasks(w http.ResponseWriter, r *http.Request) {
	count, err := h.taskUseCase.DeleteAll(r.Context())
	if err != nil {
		respondWithUseCaseError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DeleteAllResponse{Message: msgAllTasksDeleted, Count: count})
}
