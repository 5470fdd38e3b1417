package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestKeyIsScopedPerPerformance(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	if Key(a) == Key(b) {
		t.Fatal("different performances must not share a cache key")
	}
	if want := "availability:performance:" + a.String(); Key(a) != want {
		t.Errorf("Key() = %q, want %q", Key(a), want)
	}
	if VersionKey(a) == Key(a) {
		t.Error("version counter must not share the entry key")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	caches := map[string]*AvailabilityCache{
		"nil cache":  nil,
		"nil client": NewAvailabilityCache(nil, 0, zap.NewNop()),
	}

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			c.Set(ctx, id, 0, map[string]int{"tickets_available": 3})
			c.Invalidate(ctx, id)

			var dst map[string]int
			if hit, _ := c.Get(ctx, id, &dst); hit {
				t.Error("disabled cache reported a hit")
			}
		})
	}
}

// memRedis runs the cache scripts against a map.
type memRedis struct {
	redis.Scripter
	mu   sync.Mutex
	data map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}}
}

func (m *memRedis) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	vals := make([]any, len(keys))
	for i, k := range keys {
		if v, ok := m.data[k]; ok {
			vals[i] = v
		}
	}
	return redis.NewSliceResult(vals, nil)
}

func (m *memRedis) EvalSha(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch sha {
	case setIfVersion.Hash():
		current, ok := m.data[keys[1]]
		if !ok {
			current = "0"
		}
		if current != args[0].(string) {
			return redis.NewCmdResult(int64(0), nil)
		}
		m.data[keys[0]] = args[1].(string)
		return redis.NewCmdResult(int64(1), nil)

	case bumpVersion.Hash():
		for i := 0; i < len(keys); i += 2 {
			delete(m.data, keys[i])
			n, _ := strconv.Atoi(m.data[keys[i+1]])
			m.data[keys[i+1]] = strconv.Itoa(n + 1)
		}
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(nil, errors.New("NOSCRIPT unknown script"))
}

type view struct {
	TicketsAvailable int `json:"tickets_available"`
}

func TestAvailabilityCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		// between runs after the reader's Get and before its Set
		between func(c *AvailabilityCache, id uuid.UUID)
		wantHit bool
	}{
		{
			name:    "fresh read is cached",
			between: func(*AvailabilityCache, uuid.UUID) {},
			wantHit: true,
		},
		{
			name:    "write after invalidation is refused",
			between: func(c *AvailabilityCache, id uuid.UUID) { c.Invalidate(ctx, id) },
			wantHit: false,
		},
		{
			name:    "other performance invalidated",
			between: func(c *AvailabilityCache, _ uuid.UUID) { c.Invalidate(ctx, uuid.New()) },
			wantHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newAvailabilityCache(newMemRedis(), 0, zap.NewNop())
			id := uuid.New()

			var dst view
			hit, version := c.Get(ctx, id, &dst)
			if hit {
				t.Fatal("empty cache reported a hit")
			}

			tt.between(c, id)
			c.Set(ctx, id, version, view{TicketsAvailable: 100})

			hit, _ = c.Get(ctx, id, &dst)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && dst.TicketsAvailable != 100 {
				t.Errorf("tickets_available = %d, want 100", dst.TicketsAvailable)
			}
		})
	}
}

func TestAvailabilityCache_InvalidateDropsEntry(t *testing.T) {
	ctx := context.Background()
	c := newAvailabilityCache(newMemRedis(), 0, zap.NewNop())
	id := uuid.New()

	_, version := c.Get(ctx, id, &view{})
	c.Set(ctx, id, version, view{TicketsAvailable: 5})
	c.Invalidate(ctx, id)

	var dst view
	hit, next := c.Get(ctx, id, &dst)
	if hit {
		t.Fatal("entry survived invalidation")
	}
	if next == version {
		t.Errorf("version stayed at %d after invalidation", next)
	}

	c.Set(ctx, id, next, view{TicketsAvailable: 4})
	if hit, _ := c.Get(ctx, id, &dst); !hit || dst.TicketsAvailable != 4 {
		t.Errorf("hit=%v view=%+v, want the refreshed entry", hit, dst)
	}
}
