// taskd is a task-tracking REST service built on the mono modular monolith framework.
//
// Modules:
// - auth: login stub backed by a users table
// - task: task store and business rules, exposed as request-reply services
// - audit: logs task lifecycle events
// - activity: streams task lifecycle events over WebSocket
// - rate-limiter: optional Redis sliding window per client IP
// - api: Fiber HTTP server
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/task-management-demo/config"
	"github.com/example/task-management-demo/modules/activity"
	"github.com/example/task-management-demo/modules/api"
	"github.com/example/task-management-demo/modules/audit"
	"github.com/example/task-management-demo/modules/auth"
	"github.com/example/task-management-demo/modules/ratelimit"
	"github.com/example/task-management-demo/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "taskd",
	Short: "Task tracking REST service",
	Long: `taskd serves a task-tracking REST API backed by SQLite or PostgreSQL.

Settings are read from an optional YAML file and then from environment
variables (HTTP_PORT, DB_DRIVER, DB_DSN, DB_DEBUG, REDIS_ADDR, DEFAULT_PRIORITY, ...).`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	log.Println("=== taskd - Task Management Service ===")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Configuration:")
	log.Printf("  HTTP Port: %d", cfg.HTTP.Port)
	log.Printf("  Database Driver: %s", cfg.Database.Driver)
	log.Printf("  Redis Address: %q", cfg.Redis.Addr)
	log.Printf("  Default Priority: %s", cfg.Task.DefaultPriority)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	logger := app.Logger()

	authModule := auth.NewModule(cfg.AuthModule(), logger.WithModule("auth"))
	taskModule := task.NewModule(cfg.TaskModule(), logger.WithModule("task"))
	auditModule := audit.NewModule(logger.WithModule("audit"))
	activityModule := activity.NewModule(logger.WithModule("activity"))
	apiModule := api.NewModule(cfg.HTTP.Port, logger.WithModule("api"))
	apiModule.SetActivityModule(activityModule)

	modules := []mono.Module{authModule, taskModule, auditModule, activityModule}

	if cfg.Redis.Addr != "" {
		rateLimitModule := ratelimit.NewModule(cfg.Redis.Addr, cfg.RateLimiter(), logger.WithModule("rate-limiter"))
		apiModule.SetRateLimitModule(rateLimitModule)
		modules = append(modules, rateLimitModule)
	} else {
		log.Println("REDIS_ADDR not set, rate limiting disabled")
	}

	modules = append(modules, apiModule)

	for _, m := range modules {
		if err := app.Register(m); err != nil {
			return fmt.Errorf("failed to register %s module: %w", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg.HTTP.Port)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  GET    /health              - Health check")
	log.Println("  GET    /api/tasks           - List tasks (?status=&page=&size=)")
	log.Println("  POST   /api/tasks           - Create a task")
	log.Println("  GET    /api/tasks/:id       - Get a task")
	log.Println("  PUT    /api/tasks/:id       - Update a task")
	log.Println("  DELETE /api/tasks/:id       - Delete a task")
	log.Println("  POST   /api/auth/login      - Login stub")
	log.Println("  GET    /ws/tasks            - Live task activity (WebSocket)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
