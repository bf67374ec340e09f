package api

import (
	"context"
	"fmt"

	"github.com/example/task-management-demo/modules/activity"
	"github.com/example/task-management-demo/modules/auth"
	"github.com/example/task-management-demo/modules/ratelimit"
	"github.com/example/task-management-demo/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	nanoid "github.com/jaevor/go-nanoid"
)

// requestIDLength is the length of generated X-Request-ID values.
const requestIDLength = 21

// APIModule is the HTTP API module.
type APIModule struct {
	app             *fiber.App
	port            int
	logger          types.Logger
	taskAdapter     task.TaskPort
	authAdapter     auth.AuthPort
	rateLimitModule *ratelimit.Module
	activityModule  *activity.Module
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule listening on port.
func NewModule(port int, logger types.Logger) *APIModule {
	return &APIModule{
		port:   port,
		logger: logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// SetRateLimitModule enables per-IP rate limiting on /api routes.
func (m *APIModule) SetRateLimitModule(module *ratelimit.Module) {
	m.rateLimitModule = module
}

// SetActivityModule serves the live task feed at /ws/tasks.
func (m *APIModule) SetActivityModule(module *activity.Module) {
	m.activityModule = module
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskAdapter == nil {
		return fmt.Errorf("task dependency not set")
	}
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}

	var limiter fiber.Handler
	if m.rateLimitModule != nil {
		limiter = m.rateLimitModule.Handler()
	}

	var feed fiber.Handler
	if m.activityModule != nil {
		feed = m.activityModule.Handler()
	}

	app, err := newApp(NewHandlers(m.taskAdapter, m.authAdapter, m.logger), limiter, feed)
	if err != nil {
		return err
	}
	m.app = app

	addr := fmt.Sprintf(":%d", m.port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", addr, "rateLimited", limiter != nil)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "HTTP server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// newApp builds the Fiber app with middleware and routes. limiter and feed may be nil.
func newApp(handlers *Handlers, limiter, feed fiber.Handler) (*fiber.App, error) {
	generateID, err := nanoid.Standard(requestIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create request id generator: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "taskd",
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: generateID,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	if feed != nil {
		app.Get("/ws/tasks", feed)
	}

	api := app.Group("/api")
	if limiter != nil {
		api.Use(limiter)
	}

	tasks := api.Group("/tasks")
	tasks.Get("/", handlers.ListTasks)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)

	api.Post("/auth/login", handlers.Login)

	return app, nil
}

// customErrorHandler renders Fiber errors as ErrorResponse.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
