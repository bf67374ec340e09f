package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Module owns the Redis client used for rate limiting.
type Module struct {
	client     *redis.Client
	middleware *Middleware
	redisAddr  string
	logger     types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a rate limiting module. The Redis client connects lazily,
// so the middleware is usable before Start.
func NewModule(redisAddr string, config Config, logger types.Logger) *Module {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &Module{
		client:     client,
		middleware: NewMiddleware(NewSlidingWindowLimiter(client, config), logger),
		redisAddr:  redisAddr,
		logger:     logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start checks the Redis connection. An unreachable server is logged, not fatal.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.logger.Warn("Redis not reachable, rate limiting will fail open", "addr", m.redisAddr, "error", err)
		return nil
	}
	m.logger.Info("Rate limiter connected to Redis", "addr", m.redisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	m.logger.Info("Rate limiter stopped")
	return nil
}

// Health pings Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
			Details: map[string]any{"addr": m.redisAddr},
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"addr": m.redisAddr},
	}
}

// Handler returns the fiber middleware.
func (m *Module) Handler() fiber.Handler {
	return m.middleware.Handler()
}
