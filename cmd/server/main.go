// Command server runs the task manager API.
//
// @title                       Task Manager API
// @version                     1.0
// @description                 Task management API with JWT authentication and live admin role checks.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/config"
	"github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	"github.com/taskmanager/task-api/internal/infrastructure/db/redis"
	"github.com/taskmanager/task-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-api",
	})
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "task-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	users := mongo.NewUserRepository(db)
	tasks := mongo.NewTaskRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := tasks.EnsureIndexes(ctx); err != nil {
		return err
	}

	checks := map[string]handler.HealthCheck{"mongodb": mongo.Ping(db)}

	// The cache stays a nil interface unless Redis is enabled, which keeps
	// role lookups going straight to Mongo.
	var roleCache ports.RoleCache
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)
		checks["redis"] = redis.Ping(rdb)
		roleCache = redis.NewRoleCache(rdb)
	}

	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, service.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return err
	}
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)

	authService := service.NewAuthService(users, tokens, hasher, log)
	userService := service.NewUserService(users, hasher, roleCache, log)
	taskService := service.NewTaskService(tasks, users, log)
	roles := service.NewCachedRoleResolver(service.NewStoreRoleResolver(users), roleCache, cfg.Auth.RoleCacheTTL, log)

	if created, err := authService.BootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return err
	} else if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("bootstrap admin created")
	}

	router := api.NewRouter(api.Deps{
		Tokens:       tokens,
		Roles:        roles,
		AuthService:  authService,
		UserService:  userService,
		TaskService:  taskService,
		HealthChecks: checks,
		CORSOrigins:  cfg.CORSOrigins,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close failed")
	}
}
