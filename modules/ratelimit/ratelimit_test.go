package ratelimit

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// redisClient returns a client for a local Redis or skips the test.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func cleanupKeys(t *testing.T, client *redis.Client, prefix string) {
	t.Helper()

	ctx := context.Background()
	keys, _ := client.Keys(ctx, prefix+"*").Result()
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	client := redisClient(t)
	prefix := "test:taskd:window:"
	cleanupKeys(t, client, prefix)
	t.Cleanup(func() { cleanupKeys(t, client, prefix) })

	limiter := NewSlidingWindowLimiter(client, Config{
		RequestsPerWindow: 5,
		WindowSize:        time.Minute,
		KeyPrefix:         prefix,
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "client")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !result.Allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
		if result.Remaining != 5-i-1 {
			t.Errorf("expected %d remaining, got %d", 5-i-1, result.Remaining)
		}
	}

	result, err := limiter.Allow(ctx, "client")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Error("6th request should be denied")
	}
	if result.RetryAfter <= 0 {
		t.Error("RetryAfter should be positive")
	}

	other, err := limiter.Allow(ctx, "other-client")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !other.Allowed {
		t.Error("a different key should have its own window")
	}
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	client := redisClient(t)
	prefix := "test:taskd:middleware:"
	cleanupKeys(t, client, prefix)
	t.Cleanup(func() { cleanupKeys(t, client, prefix) })

	limiter := NewSlidingWindowLimiter(client, Config{
		RequestsPerWindow: 2,
		WindowSize:        time.Minute,
		KeyPrefix:         prefix,
	})

	app := fiber.New()
	app.Use(NewMiddleware(limiter, &mockLogger{}).Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.StatusCode)
		}
		if resp.Header.Get("X-RateLimit-Limit") != "2" {
			t.Errorf("expected X-RateLimit-Limit 2, got %q", resp.Header.Get("X-RateLimit-Limit"))
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	// Nothing listens on port 1; every script run fails.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewSlidingWindowLimiter(client, DefaultConfig())

	app := fiber.New()
	app.Use(NewMiddleware(limiter, &mockLogger{}).Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if resp.Header.Get("X-RateLimit-Limit") != "" {
		t.Error("expected no rate limit headers when Redis is down")
	}
}

func TestModule_StartWithoutRedis(t *testing.T) {
	m := NewModule("127.0.0.1:1", DefaultConfig(), &mockLogger{})

	if m.Name() != "rate-limiter" {
		t.Errorf("expected name rate-limiter, got %q", m.Name())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Errorf("Start() should not fail without Redis, got %v", err)
	}
	if m.Health(ctx).Healthy {
		t.Error("expected unhealthy without Redis")
	}
	if m.Handler() == nil {
		t.Error("expected a handler")
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
