package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/KarpovAlexandrGo/task-service/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	msgTaskNotFound    = "Task not found"
	msgInvalidBody     = "Invalid request body"
	msgInternalError   = "Internal server error"
	msgTaskDeleted     = "Task deleted successfully"
	msgAllTasksDeleted = "All tasks deleted successfully"
)

// TaskRequest documents the create and update body. Requests are decoded
// into entity.TaskInput, which keeps each field's presence and raw value.
type TaskRequest struct {
	Title       string `json:"title,omitempty" maxLength:"200" example:"Buy milk"`
	Description string `json:"description,omitempty" maxLength:"1000" example:"2% from the corner shop"`
	Status      string `json:"status,omitempty" enums:"TODO,IN_PROGRESS,COMPLETED"`
	Priority    string `json:"priority,omitempty" enums:"LOW,MEDIUM,HIGH"`
	DueDate     string `json:"dueDate,omitempty" example:"2026-12-31"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ListResponse struct {
	Count int           `json:"count"`
	Tasks []entity.Task `json:"tasks"`
}

type DeleteResponse struct {
	Message string      `json:"message"`
	Task    entity.Task `json:"task"`
}

type DeleteAllResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Log.WithError(err).Error("Failed to encode response")
		}
	}
}

// respondWithUseCaseError maps use case errors onto status codes. Anything
// unrecognised is logged and reported as a generic 500.
func respondWithUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondWithError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, usecase.ErrTaskNotFound):
		respondWithError(w, http.StatusNotFound, msgTaskNotFound)
	default:
		logger.Log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).WithError(err).Error("Unexpected error while handling request")
		respondWithError(w, http.StatusInternalServerError, msgInternalError)
	}
}
