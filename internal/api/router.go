package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskmanager/task-api/docs"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Deps is everything the router needs to build the HTTP surface.
type Deps struct {
	Tokens ports.TokenVerifier
	Roles  ports.RoleResolver

	AuthService ports.AuthService
	UserService ports.UserService
	TaskService ports.TaskService

	// HealthChecks are pinged by /health/ready. Leave disabled dependencies out.
	HealthChecks map[string]handler.HealthCheck

	CORSOrigins []string
	Logger      zerolog.Logger

	// Registry receives the HTTP metrics. Defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(d.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	taskHandler := handler.NewTaskHandler(d.TaskService)
	adminHandler := handler.NewAdminHandler(d.UserService, d.TaskService)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	authenticate := middleware.Auth(d.Tokens, d.Logger)
	requireAdmin := middleware.RequireAdmin(d.Roles, d.Logger)

	// --- Operational routes (no auth required) ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Task routes (any authenticated user) ---
	tasks := e.Group("/api/tasks", authenticate)
	tasks.POST("/add-task", taskHandler.Create)
	tasks.GET("/task", taskHandler.List)
	tasks.PUT("/update-task/:id", taskHandler.Update)
	tasks.DELETE("/delete-task/:id", taskHandler.Delete)

	// --- Admin routes (role re-read from the store on every request) ---
	admin := e.Group("/api/admin", authenticate, requireAdmin)
	admin.GET("/view-users", adminHandler.ListUsers)
	admin.POST("/add-user", adminHandler.CreateUser)
	admin.PUT("/update-user/:id", adminHandler.UpdateUser)
	admin.DELETE("/delete-user/:id", adminHandler.DeleteUser)
	admin.GET("/user/:id/tasks", adminHandler.ListUserTasks)
	admin.POST("/user/:id/tasks", adminHandler.CreateUserTask)
	admin.PUT("/user/:id/tasks/:taskId", adminHandler.UpdateUserTask)
	admin.DELETE("/user/:id/tasks/:taskId", adminHandler.DeleteUserTask)

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// requestLogger emits one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
