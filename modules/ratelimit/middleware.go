package ratelimit

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Middleware limits requests per client IP and route.
type Middleware struct {
	limiter *SlidingWindowLimiter
}

// NewMiddleware creates a Middleware over limiter.
func NewMiddleware(limiter *SlidingWindowLimiter) *Middleware {
	return &Middleware{limiter: limiter}
}

// Handler returns the Fiber handler. Limiter errors let the request through.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Forbidden",
				"message": "Unable to determine client IP address",
			})
		}

		result, err := m.limiter.Allow(c.Context(), c.Path()+":"+ip)
		if err != nil {
			log.Printf("[rate-limiter] Warning: %v", err)
			c.Set("X-RateLimit-Error", err.Error())
			return c.Next()
		}

		setRateLimitHeaders(c, result, m.limiter.Config().RequestsPerWindow)

		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}
		return c.Next()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "rate_limited",
		"message":     fmt.Sprintf("Too many attempts. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
