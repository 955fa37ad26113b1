package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Key addresses a cached extraction by document content and OCR flag.
type Key struct {
	Sum      [sha256.Size]byte
	ForceOCR bool
}

// NewKey hashes data into a cache key.
func NewKey(data []byte, forceOCR bool) Key {
	return Key{Sum: sha256.Sum256(data), ForceOCR: forceOCR}
}

func (k Key) String() string {
	mode := "native"
	if k.ForceOCR {
		mode = "ocr"
	}
	return hex.EncodeToString(k.Sum[:]) + ":" + mode
}

// Cache is a bounded LRU of extractions. Concurrent requests for the same
// key share a single computation.
type Cache struct {
	entries *lru.Cache[Key, Extraction]
	group   singleflight.Group
}

// NewCache creates a cache holding at most size extractions.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[Key, Extraction](size)
	if err != nil {
		return nil, fmt.Errorf("creating extraction cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Do returns the cached extraction for key, computing it with fn on a miss.
// Extractions cut short by context cancellation are returned but not stored.
// fn runs under the context of whichever caller started the flight, so a
// waiter whose own ctx is still live reruns a result that was canceled.
func (c *Cache) Do(ctx context.Context, key Key, fn func() Extraction) Extraction {
	if ex, ok := c.entries.Get(key); ok {
		return ex
	}

	ran := false
	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		ran = true
		if ex, ok := c.entries.Get(key); ok {
			return ex, nil
		}
		ex := fn()
		if cacheable(ex) {
			c.entries.Add(key, ex)
		}
		return ex, nil
	})

	ex := v.(Extraction)
	if !ran && errors.Is(ex.Err, context.Canceled) && ctx.Err() == nil {
		ex = fn()
		if cacheable(ex) {
			c.entries.Add(key, ex)
		}
	}
	return ex
}

// Len returns the number of stored extractions.
func (c *Cache) Len() int { return c.entries.Len() }

func cacheable(ex Extraction) bool {
	return !errors.Is(ex.Err, context.Canceled) && !errors.Is(ex.Err, context.DeadlineExceeded)
}
