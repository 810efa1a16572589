// Package cache provides an optional Redis read-through cache for student
// lookups. All operations are best-effort: cache failures degrade to store
// reads and are only logged.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"studentregistry/internal/student/models"
	"studentregistry/pkg/domain"
)

const keyPrefix = "student:"

// StudentCache caches current student rows by id. Entries are invalidated
// after every committed upsert, so a stale read window only exists between
// a concurrent upsert's commit and its invalidation.
type StudentCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func New(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *StudentCache {
	return &StudentCache{client: client, ttl: ttl, logger: logger}
}

func (c *StudentCache) Get(ctx context.Context, id domain.StudentID) (*models.Student, bool) {
	payload, err := c.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "cache get failed", "error", err)
		}
		return nil, false
	}
	var student models.Student
	if err := json.Unmarshal(payload, &student); err != nil {
		c.logger.WarnContext(ctx, "cache entry corrupt, dropping", "id", id.String(), "error", err)
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &student, true
}

func (c *StudentCache) Set(ctx context.Context, student *models.Student) {
	payload, err := json.Marshal(student)
	if err != nil {
		c.logger.WarnContext(ctx, "cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+student.ID.String(), payload, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "cache set failed", "error", err)
	}
}

func (c *StudentCache) Invalidate(ctx context.Context, id domain.StudentID) {
	if err := c.client.Del(ctx, keyPrefix+id.String()).Err(); err != nil {
		c.logger.DebugContext(ctx, "cache invalidate failed", "error", err)
	}
}
