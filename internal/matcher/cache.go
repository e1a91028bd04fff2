package matcher

import (
	"strconv"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"beadify/internal/catalog"
	"beadify/internal/color"
)

// Cache запоминает результаты подбора по цвету. Каталог неизменяем,
// поэтому результат для одного и того же цвета и параметров всегда одинаков.
type Cache struct {
	repo   *catalog.Repository
	items  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats содержит счётчики попаданий и промахов.
type CacheStats struct {
	Hits   int64
	Misses int64
	Items  int
}

// NewCache создаёт кэш над каталогом. ttl <= 0 — записи не устаревают.
func NewCache(repo *catalog.Repository, ttl time.Duration) *Cache {
	expiration, cleanup := gocache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl*2
	}
	return &Cache{
		repo:  repo,
		items: gocache.New(expiration, cleanup),
	}
}

// Repository возвращает каталог, над которым построен кэш.
func (c *Cache) Repository() *catalog.Repository {
	return c.repo
}

func cacheKey(q color.RGB, opts Options) string {
	return q.Hex() + "|" + strconv.Itoa(opts.K) + "|" + strconv.FormatBool(opts.AvailableOnly)
}

// Find возвращает варианты для цвета, считая их только при первом обращении.
// Возвращаемый срез общий для всех вызывающих, менять его нельзя.
func (c *Cache) Find(q color.RGB, opts Options) ([]Match, error) {
	key := cacheKey(q, opts)
	if v, ok := c.items.Get(key); ok {
		c.hits.Add(1)
		return v.([]Match), nil
	}
	c.misses.Add(1)

	matches, err := Find(c.repo, q, opts)
	if err != nil {
		return nil, err
	}
	c.items.Set(key, matches, gocache.DefaultExpiration)
	return matches, nil
}

// Stats возвращает текущие счётчики.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Items:  c.items.ItemCount(),
	}
}

// Flush очищает кэш, счётчики не сбрасываются.
func (c *Cache) Flush() {
	c.items.Flush()
}
