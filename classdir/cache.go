package classdir

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL     = time.Minute
	defaultCacheCleanup = 5 * time.Minute
)

// CachedDirectory memoizes lookups of another Directory. Misses are cached
// too, so reactions in unregistered channels do not hit the table each time.
type CachedDirectory struct {
	next    Directory
	cache   *cache.Cache
	sfGroup singleflight.Group // collapses concurrent misses for one key
}

var _ Directory = (*CachedDirectory)(nil)

func NewCachedDirectory(next Directory, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedDirectory{
		next:  next,
		cache: cache.New(ttl, defaultCacheCleanup),
	}
}

func (d *CachedDirectory) FindByChannel(ctx context.Context, channelID string) (*ClassRecord, error) {
	return d.lookup(ctx, "channel#"+channelID, func() (*ClassRecord, error) {
		return d.next.FindByChannel(ctx, channelID)
	})
}

func (d *CachedDirectory) FindByCode(ctx context.Context, classCode string) (*ClassRecord, error) {
	return d.lookup(ctx, "code#"+classCode, func() (*ClassRecord, error) {
		return d.next.FindByCode(ctx, classCode)
	})
}

func (d *CachedDirectory) FindByRole(ctx context.Context, roleID string) (*ClassRecord, error) {
	return d.lookup(ctx, "role#"+roleID, func() (*ClassRecord, error) {
		return d.next.FindByRole(ctx, roleID)
	})
}

// Flush drops every cached lookup.
func (d *CachedDirectory) Flush() {
	d.cache.Flush()
}

func (d *CachedDirectory) lookup(ctx context.Context, key string, load func() (*ClassRecord, error)) (*ClassRecord, error) {
	if cached, found := d.cache.Get(key); found {
		if class, ok := cached.(*ClassRecord); ok {
			return copyRecord(class), nil
		}
	}

	v, err, _ := d.sfGroup.Do(key, func() (interface{}, error) {
		if cached, found := d.cache.Get(key); found {
			return cached, nil
		}
		class, err := load()
		if err != nil {
			return nil, err
		}
		d.cache.SetDefault(key, class)
		return class, nil
	})
	if err != nil {
		return nil, err
	}
	class, _ := v.(*ClassRecord)
	return copyRecord(class), nil
}

func copyRecord(c *ClassRecord) *ClassRecord {
	if c == nil {
		return nil
	}
	cp := *c
	cp.ChannelIDs = append([]string(nil), c.ChannelIDs...)
	return &cp
}
