package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "availability:performance:"
	versionSuffix = ":version"

	// versions outlive entries by far so a reader never sees one reset mid-flight
	versionTTL = 24 * time.Hour
)

// Key is the cache key of one performance. Entries are never scoped to a user.
func Key(performanceID uuid.UUID) string {
	return keyPrefix + performanceID.String()
}

// VersionKey holds the invalidation counter of one performance.
func VersionKey(performanceID uuid.UUID) string {
	return Key(performanceID) + versionSuffix
}

// setIfVersion writes the entry only when no invalidation ran since the reader's Get.
var setIfVersion = redis.NewScript(`
	local current = redis.call('GET', KEYS[2])
	if (current or '0') ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
`)

// bumpVersion drops the entry and moves the counter so in-flight Sets are refused.
var bumpVersion = redis.NewScript(`
	for i = 1, #KEYS, 2 do
		redis.call('DEL', KEYS[i])
		redis.call('INCR', KEYS[i + 1])
		redis.call('PEXPIRE', KEYS[i + 1], ARGV[1])
	end
	return 1
`)

// store is the part of the redis client the cache needs.
type store interface {
	redis.Scripter
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// AvailabilityCache stores read-only availability views per performance.
// Booking decisions never read from it. All methods are no-ops on a nil cache
// or nil client.
type AvailabilityCache struct {
	rdb store
	ttl time.Duration
	log *zap.Logger
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *AvailabilityCache {
	c := newAvailabilityCache(nil, ttl, log)
	if rdb != nil {
		c.rdb = rdb
	}
	return c
}

func newAvailabilityCache(rdb store, ttl time.Duration, log *zap.Logger) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("component", "availability_cache")),
	}
}

func (c *AvailabilityCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get decodes the cached view into dst and reports whether it was a hit. On a
// miss it returns the version that a following Set must carry.
func (c *AvailabilityCache) Get(ctx context.Context, performanceID uuid.UUID, dst any) (bool, int64) {
	if !c.enabled() {
		return false, 0
	}

	vals, err := c.rdb.MGet(ctx, Key(performanceID), VersionKey(performanceID)).Result()
	if err != nil || len(vals) != 2 {
		c.log.Warn("Cache read failed", zap.Error(err), zap.String("performance_id", performanceID.String()))
		return false, -1
	}

	version := int64(0)
	if s, ok := vals[1].(string); ok {
		if version, err = strconv.ParseInt(s, 10, 64); err != nil {
			return false, -1
		}
	}

	entry, ok := vals[0].(string)
	if !ok {
		return false, version
	}
	if err := json.Unmarshal([]byte(entry), dst); err != nil {
		c.log.Warn("Cache entry corrupt", zap.Error(err), zap.String("performance_id", performanceID.String()))
		return false, version
	}
	return true, version
}

// Set stores v unless the performance was invalidated after the Get that
// returned version. A negative version never writes.
func (c *AvailabilityCache) Set(ctx context.Context, performanceID uuid.UUID, version int64, v any) {
	if !c.enabled() || version < 0 {
		return
	}

	bs, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("Cache encode failed", zap.Error(err))
		return
	}

	keys := []string{Key(performanceID), VersionKey(performanceID)}
	err = setIfVersion.Run(ctx, c.rdb, keys,
		strconv.FormatInt(version, 10), string(bs), c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		c.log.Warn("Cache write failed", zap.Error(err), zap.String("performance_id", performanceID.String()))
	}
}

// Invalidate drops the entries of the given performances and bumps their versions.
func (c *AvailabilityCache) Invalidate(ctx context.Context, performanceIDs ...uuid.UUID) {
	if !c.enabled() || len(performanceIDs) == 0 {
		return
	}

	keys := make([]string, 0, 2*len(performanceIDs))
	for _, id := range performanceIDs {
		keys = append(keys, Key(id), VersionKey(id))
	}
	if err := bumpVersion.Run(ctx, c.rdb, keys, versionTTL.Milliseconds()).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", zap.Error(err), zap.Strings("keys", keys))
	}
}
