package memory

import (
	"context"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
)

// NoopCache stands in for the list cache when Redis is not configured.
type NoopCache struct{}

func (NoopCache) SetTasks(context.Context, []entity.Task, time.Duration) error { return nil }

func (NoopCache) GetTasks(context.Context) ([]entity.Task, error) { return nil, usecase.ErrCacheMiss }

func (NoopCache) Invalidate(context.Context) error { return nil }
