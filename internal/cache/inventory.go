package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/middleware"
)

// keyPrefix namespaces every key; bump the version when a cached shape changes.
const keyPrefix = "travelog:v1:"

// TagListKey holds the global tag listing served by GET /api/tags.
const TagListKey = keyPrefix + "tags"

// TagListTTL bounds how stale the listing can get if an invalidation is lost.
const TagListTTL = 10 * time.Minute

// Invalidate drops keys. Failures are logged; the TTL still expires them.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateTagList is called once a new tag row exists.
func InvalidateTagList(ctx context.Context) {
	Invalidate(ctx, TagListKey)
}
