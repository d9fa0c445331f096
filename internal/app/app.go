package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/KarpovAlexandrGo/task-service/docs" // swagger spec
	controller "github.com/KarpovAlexandrGo/task-service/internal/controller/http"
	"github.com/KarpovAlexandrGo/task-service/internal/metrics"
	"github.com/KarpovAlexandrGo/task-service/internal/repo/memory"
	"github.com/KarpovAlexandrGo/task-service/internal/repo/redis"
	"github.com/KarpovAlexandrGo/task-service/internal/usecase"
	"github.com/KarpovAlexandrGo/task-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type App struct {
	Server          *http.Server
	wg              sync.WaitGroup
	shutdownTimeout time.Duration
	cacheRepo       usecase.CacheRepository
}

// NewApp loads the configuration and wires the service.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// New wires the service from an already loaded configuration.
func New(cfg Config) *App {
	taskRepo := memory.NewTaskRepository(time.Now)
	cacheRepo := initCache(cfg, uuid.NewString())
	taskUseCase := usecase.NewTaskUseCase(taskRepo, cacheRepo, usecase.WithCacheTTL(cfg.CacheTTL))

	m := metrics.New()
	m.TrackStoreSize(taskRepo.Len)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           setupRouter(cfg, taskUseCase, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		Server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		cacheRepo:       cacheRepo,
	}
}

// initCache connects to Redis when REDIS_ADDR is set. An unreachable Redis
// only disables caching. The cached list is keyed by instance so that a
// restarted or second process never serves another store's tasks.
func initCache(cfg Config, instance string) usecase.CacheRepository {
	if cfg.RedisAddr == "" {
		logger.Log.Info("REDIS_ADDR not set, task list cache disabled")
		return memory.NoopCache{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cache := redis.NewCacheRepository(redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Instance: instance,
	})
	if err := cache.Ping(ctx); err != nil {
		logger.Log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis unavailable, task list cache disabled")
		_ = cache.Close()
		return memory.NoopCache{}
	}

	logger.Log.WithFields(logrus.Fields{
		"addr":     cfg.RedisAddr,
		"instance": instance,
	}).Info("Connected to Redis successfully")
	return cache
}

func setupRouter(cfg Config, taskUC usecase.TaskUseCase, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()

	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		m.Middleware,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger.Log, NoColor: true}),
		middleware.Recoverer,
		middleware.Heartbeat("/health"),
		middleware.Timeout(cfg.RequestTimeout),
	)

	controller.NewTaskHandler(taskUC, time.Now).RegisterRoutes(router)

	router.Handle("/metrics", m.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return router
}

func (a *App) Run() error {
	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		select {
		case <-sig:
		case <-serverCtx.Done():
			return
		}
		logger.Log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(serverCtx, a.shutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Log.Error("Graceful shutdown timed out")
			}
			logger.Log.WithError(err).Error("HTTP server shutdown failed")
		}
	}()

	logger.Log.Info("Starting server on " + a.Server.Addr)
	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		serverStopCtx()
		a.wg.Wait()
		return fmt.Errorf("server failed: %w", err)
	}

	a.wg.Wait()
	a.closeCache()
	logger.Log.Info("Server stopped gracefully")
	return nil
}

func (a *App) closeCache() {
	c, ok := a.cacheRepo.(interface{ Close() error })
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close cache connection")
	}
}
