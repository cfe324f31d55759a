package main

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktracker/internal/infrastructure/redis"
	"github.com/fastygo/tasktracker/internal/metrics"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/router"
	"github.com/fastygo/tasktracker/internal/services"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/pkg/password"
	"github.com/fastygo/tasktracker/repository"
	boltRepo "github.com/fastygo/tasktracker/repository/bolt"
	"github.com/fastygo/tasktracker/repository/memory"
	"github.com/fastygo/tasktracker/repository/postgres"
	redisRepo "github.com/fastygo/tasktracker/repository/redis"
	"github.com/fastygo/tasktracker/usecase"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	profileUC "github.com/fastygo/tasktracker/usecase/profile"
	"github.com/fastygo/tasktracker/usecase/session"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(appCtx, cancel)

	mon := monitor.New(10*time.Second, zapLogger)

	var (
		userRepo  repository.UserRepository
		taskRepo  repository.TaskRepository
		statsRepo repository.TaskStatsRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		zapLogger.Warn("using in-memory storage; data is lost on restart")
		tasks := memory.NewTaskRepository()
		userRepo, taskRepo, statsRepo = memory.NewUserRepository(), tasks, tasks
	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Database, cfg.AppName, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		mon.WatchPostgres(pool)
		userRepo = postgres.NewUserRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)
		statsRepo = postgres.NewTaskStatsRepository(pool)
	}

	var store repository.SessionStore
	switch cfg.Session.Store {
	case config.SessionStoreBolt:
		boltStore, err := boltRepo.Open(cfg.Session.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open session store", zap.String("path", cfg.Session.BoltPath), zap.Error(err))
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return boltStore.Close()
		})
		mon.Register("bolt", boltStore.Ping, time.Second)
		store = boltStore
	case config.SessionStoreRedis:
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		mon.WatchRedis(redisClient)
		store = redisRepo.NewSessionStore(redisClient, cfg.Session.RedisPrefix)
	}

	registryOpts := []session.Option{session.WithLogger(zapLogger)}
	if store != nil {
		registryOpts = append(registryOpts, session.WithStore(store))
	}
	registry := session.New(cfg.Session.TTL, registryOpts...)
	if restored, err := registry.Restore(appCtx); err != nil {
		zapLogger.Warn("session restore failed; starting with no sessions", zap.Error(err))
	} else {
		zapLogger.Info("sessions restored", zap.Int("count", restored))
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(promRegistry)
	metrics.RegisterSessionGauge(promRegistry, registry.Len)

	sweeper, err := services.NewSessionSweeper(registry, cfg.Session.SweepInterval, zapLogger,
		services.WithSweepReporter(collector.SessionsSwept))
	if err != nil {
		zapLogger.Fatal("session sweeper setup failed", zap.Error(err))
	}
	sweeper.Start()
	manager.Register("session_sweeper", sweeper.Stop)

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var events usecase.AuthEvents = collector
	guard := authUC.NewGuard(registry, events, zapLogger)
	authUseCase := authUC.New(userRepo, registry, password.NewArgon2idHasher(), events, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, statsRepo, guard, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, registry, ctxAdapter, zapLogger),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = metrics.Handler(promRegistry)
	}

	authMiddleware := middleware.SessionAuth(guard, zapLogger)
	r := router.New(router.Info{Name: cfg.AppName, Version: version}, handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger)(collector.Middleware(r.Handler)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("session_store", cfg.Session.Store),
			zap.Duration("session_ttl", cfg.Session.TTL))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
