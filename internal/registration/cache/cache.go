package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"gatepass/internal/checkin"
	"gatepass/pkg/domain"
)

const (
	itemKeyPrefix = "cache:registrations:item:"
	dayKeyPrefix  = "cache:registrations:day:"
)

// Cache keeps resolved registration views in Redis so repeated scans of the
// same badge at a busy desk skip the database. It is strictly best-effort:
// every miss or Redis failure falls through to the system of record.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New returns nil when client is nil, which callers treat as cache-off.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func viewKey(regID domain.RegistrationID, dayID domain.EventDayID) string {
	return itemKeyPrefix + regID.String() + ":" + dayID.String()
}

// GetView returns a cached scan result, if present.
func (c *Cache) GetView(ctx context.Context, regID domain.RegistrationID, dayID domain.EventDayID) (checkin.ScanResult, bool) {
	if c == nil {
		return checkin.ScanResult{}, false
	}
	raw, err := c.client.Get(ctx, viewKey(regID, dayID)).Bytes()
	if err != nil {
		return checkin.ScanResult{}, false
	}
	var res checkin.ScanResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return checkin.ScanResult{}, false
	}
	return res, true
}

// SetView stores a scan result under both the registration item key and a
// per-day tag set so either axis can be invalidated.
func (c *Cache) SetView(ctx context.Context, res checkin.ScanResult) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	key := viewKey(res.RegistrationID, res.EventDayID)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return
	}
	dayKey := dayKeyPrefix + res.EventDayID.String()
	if err := c.client.SAdd(ctx, dayKey, key).Err(); err == nil {
		_ = c.client.Expire(ctx, dayKey, c.ttl).Err()
	}
}

// InvalidateRegistration drops every cached view of one registration. Called
// when its state changes out from under the cache: payment verification,
// fresh check-ins.
func (c *Cache) InvalidateRegistration(ctx context.Context, regID domain.RegistrationID) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, itemKeyPrefix+regID.String()+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
}

// InvalidateDay drops every cached view tagged with one event day.
func (c *Cache) InvalidateDay(ctx context.Context, dayID domain.EventDayID) {
	if c == nil {
		return
	}
	dayKey := dayKeyPrefix + dayID.String()
	keys, err := c.client.SMembers(ctx, dayKey).Result()
	if err != nil {
		return
	}
	for _, key := range keys {
		_ = c.client.Del(ctx, key).Err()
	}
	_ = c.client.Del(ctx, dayKey).Err()
}
