package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KarpovAlexandrGo/task-service/internal/entity"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/redis/go-redis/v9"
)

const tasksKeyPrefix = "tasks:all"

// Options configures the list cache. Instance scopes the cached list to the
// store of one process.
type Options struct {
	Addr     string
	Password string
	DB       int
	Instance string
}

type CacheRepository struct {
	client *redis.Client
	key    string
}

func NewCacheRepository(opts Options) *CacheRepository {
	key := tasksKeyPrefix
	if opts.Instance != "" {
		key += ":" + opts.Instance
	}
	return &CacheRepository{
		client: redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}),
		key:    key,
	}
}

func (c *CacheRepository) SetTasks(ctx context.Context, tasks []entity.Task, ttl time.Duration) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	return c.client.Set(ctx, c.key, data, ttl).Err()
}

func (c *CacheRepository) GetTasks(ctx context.Context) ([]entity.Task, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrCacheMiss
	} else if err != nil {
		return nil, err
	}

	var tasks []entity.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("unmarshal cached tasks: %w", err)
	}
	return tasks, nil
}

func (c *CacheRepository) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

// Ping checks the connection to Redis.
func (c *CacheRepository) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheRepository) Close() error {
	return c.client.Close()
}
