package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "analytics:report"

// CachedReporter serves analytics from a short-lived Redis snapshot so
// dashboard polling does not rescan the instance table on every request.
// With a nil client it degrades to computing every report.
type CachedReporter struct {
	service *Service
	client  *redis.Client
	ttl     time.Duration
}

func NewCachedReporter(service *Service, client *redis.Client, ttl time.Duration) *CachedReporter {
	return &CachedReporter{service: service, client: client, ttl: ttl}
}

// Report returns the cached snapshot when fresh, otherwise recomputes and
// stores it. Cache failures are logged and never fail the request.
func (c *CachedReporter) Report(ctx context.Context) (*Report, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var report Report
			if err := json.Unmarshal(raw, &report); err == nil {
				return &report, nil
			}
			slog.WarnContext(ctx, "discarding malformed analytics cache entry")
		} else if err != redis.Nil {
			slog.WarnContext(ctx, "analytics cache read failed", "error", err)
		}
	}

	report, err := c.service.Report(ctx)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
				slog.WarnContext(ctx, "analytics cache write failed", "error", err)
			}
		}
	}
	return report, nil
}
