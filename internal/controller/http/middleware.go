package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type ctxKey int

const (
	taskIDKey ctxKey = iota
	taskInputKey
)

// ValidateTaskID rejects malformed path ids before any store lookup and
// stores the parsed id in the request context.
func ValidateTaskID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := entity.ValidateID(chi.URLParam(r, "id"))
		if err != nil {
			rejected(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), taskIDKey, id)))
	})
}

// decodeTaskInput reads the JSON body once and shares it with the
// validators and the handler that follow.
func decodeTaskInput(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to read request body")
			respondWithError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		in, err := entity.ParseTaskInput(body)
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to decode request body")
			respondWithError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), taskInputKey, in)))
	})
}

func (h *TaskHandler) ValidateCreateTask(next http.Handler) http.Handler {
	return h.validateInput(entity.ValidateCreate, next)
}

func (h *TaskHandler) ValidateUpdateTask(next http.Handler) http.Handler {
	return h.validateInput(entity.ValidateUpdate, next)
}

func (h *TaskHandler) ValidateHighPriorityConstraint(next http.Handler) http.Handler {
	return h.validateInput(entity.ValidateHighPriority, next)
}

func (h *TaskHandler) validateInput(check func(entity.TaskInput, time.Time) error, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := check(taskInputFrom(r.Context()), h.now()); err != nil {
			rejected(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rejected(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Warn("Request validation failed")
	respondWithUseCaseError(w, r, err)
}

func taskIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(taskIDKey).(uuid.UUID)
	return id
}

func taskInputFrom(ctx context.Context) entity.TaskInput {
	in, _ := ctx.Value(taskInputKey).(entity.TaskInput)
	return in
}
