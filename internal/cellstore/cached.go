package cellstore

import (
	"context"
	"time"

	"github.com/2beens/elite30/internal/progress"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// freecache refuses entries above 1/1024 of its size, so the cache must fit
// the largest document a sheets cell can hold (4 bytes per rune).
const cacheSize = (MaxSheetCellChars*4 + 1024) * 1024

var cachedValueKey = []byte("progress::value")

// Cached is a read-through cache in front of another cell.
// Writes go to the wrapped cell first and then refresh the cached value.
type Cached struct {
	cell  progress.Cell
	cache *freecache.Cache
	ttl   int // seconds
}

func NewCached(cell progress.Cell, ttl time.Duration) *Cached {
	return &Cached{
		cell:  cell,
		cache: freecache.NewCache(cacheSize),
		ttl:   int(ttl.Seconds()),
	}
}

func (c *Cached) Read(ctx context.Context) (string, error) {
	if cached, err := c.cache.Get(cachedValueKey); err == nil {
		log.Tracef("progress value found in cache")
		return string(cached), nil
	}

	value, err := c.cell.Read(ctx)
	if err != nil {
		return "", err
	}

	c.set(value)
	return value, nil
}

func (c *Cached) Write(ctx context.Context, value string) error {
	if err := c.cell.Write(ctx, value); err != nil {
		// the remote state is unknown now
		c.cache.Del(cachedValueKey)
		return err
	}
	c.set(value)
	return nil
}

func (c *Cached) Clear(ctx context.Context) error {
	c.cache.Del(cachedValueKey)
	if err := c.cell.Clear(ctx); err != nil {
		return err
	}
	c.set("")
	return nil
}

// set caches the value, or drops the cached one if that fails, so an older
// value is never served after a newer one was written.
func (c *Cached) set(value string) {
	if err := c.cache.Set(cachedValueKey, []byte(value), c.ttl); err != nil {
		c.cache.Del(cachedValueKey)
		log.Errorf("failed to cache progress value (%d bytes): %s", len(value), err)
	}
}
