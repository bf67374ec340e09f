package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Middleware limits requests per client IP. Limiter errors let the request through.
type Middleware struct {
	limiter *SlidingWindowLimiter
	logger  types.Logger
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(limiter *SlidingWindowLimiter, logger types.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Handler returns the fiber handler.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Next()
		}

		result, err := m.limiter.Allow(c.Context(), ip)
		if err != nil {
			m.logger.Warn("Rate limiter unavailable, allowing request", "ip", ip, "error", err)
			return c.Next()
		}

		setRateLimitHeaders(c, result, m.limiter.Config().RequestsPerWindow)

		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}
		return c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":   "too_many_requests",
		"message": fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
	})
}
