package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// CodeRateLimited is the error code of a 429 answer.
const CodeRateLimited = "RATE_LIMITED"

var errNoLimiterStore = errors.New("rate limit store not configured")

// limitsEnforced is false for local development and the test suite, where
// repeated logins from one address are the norm.
func limitsEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return false
	}
	return true
}

func windowKey(resource, id string) string {
	return "rl:" + resource + ":" + id
}

// countAttempt adds one attempt to the fixed window of key and returns the
// new count together with the time left in the window.
func countAttempt(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	// A fresh key, or one left without expiry by an earlier failure.
	if incr.Val() == 1 || left < 0 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		left = window
	}
	return incr.Val(), left, nil
}

// CheckRateLimit reports whether id may make another request against
// resource within the current window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if !limitsEnforced() {
		return true, nil
	}
	if rdb == nil {
		return false, errNoLimiterStore
	}
	n, _, err := countAttempt(ctx, rdb, windowKey(resource, id), window)
	if err != nil {
		return false, err
	}
	return n <= int64(limit), nil
}

// RateLimit allows limit requests per window for each caller and fails open.
// name groups routes under one counter; it defaults to the request path.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy. Callers
// are keyed by user id once authenticated, by IP otherwise.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limitsEnforced() {
			return c.Next()
		}

		resource := c.Path()
		if len(name) > 0 && name[0] != "" {
			resource = name[0]
		}
		id := "ip:" + c.IP()
		if uid, ok := CurrentUserID(c); ok {
			id = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		err := errNoLimiterStore
		var (
			n    int64
			left time.Duration
		)
		if rdb != nil {
			n, left, err = countAttempt(c.UserContext(), rdb, windowKey(resource, id), window)
		}
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				slog.String("resource", resource), slog.String("error", err.Error()))
			if policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Service temporarily unavailable",
					Code:  models.CodeInternal,
				})
			}
			return c.Next()
		}

		remaining := max(int64(limit)-n, 0)
		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(left.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many attempts, please try again later",
				Code:  CodeRateLimited,
			})
		}
		return c.Next()
	}
}
