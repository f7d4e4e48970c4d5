// Package dedup keeps the set of tracking numbers already submitted to the
// marketplace in an embedded pebble store, separate from the Job Store, so a
// number is never confirmed twice even after batches are purged.
package dedup

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"

	"github.com/cockroachdb/pebble"
)

var keyPrefix = []byte("tn/")

// Cache implements ports.DedupCache.
type Cache struct {
	db *pebble.DB
}

// Open opens (or creates) the cache directory.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errs.NewValueIsRequiredError("dedup cache dir")
	}

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open dedup cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Contains(_ context.Context, trackingNumber string) (bool, error) {
	_, closer, err := c.db.Get(key(trackingNumber))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	_ = closer.Close()
	return true, nil
}

// Add records trackingNumber durably before returning.
func (c *Cache) Add(_ context.Context, trackingNumber string) error {
	if trackingNumber == "" {
		return errs.NewValueIsRequiredError("trackingNumber")
	}
	if err := c.db.Set(key(trackingNumber), nil, pebble.Sync); err != nil {
		return fmt.Errorf("dedup add: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func key(trackingNumber string) []byte {
	k := make([]byte, 0, len(keyPrefix)+len(trackingNumber))
	k = append(k, keyPrefix...)
	return append(k, trackingNumber...)
}
