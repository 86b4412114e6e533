package provider

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/sirupsen/logrus"
)

// lapCacheVersion defines the version of the cached lap encoding
const lapCacheVersion = 1

// Cached serves laps from a CacheStore and falls back to the wrapped provider on a miss.
// Past sessions do not change, so entries never go stale.
type Cached struct {
	inner contract.SessionProvider
	store contract.CacheStore
}

var _ contract.SessionProvider = &Cached{} // Compile-time check

// NewCached wraps inner with store.
func NewCached(inner contract.SessionProvider, store contract.CacheStore) *Cached {
	return &Cached{inner: inner, store: store}
}

// Laps implements the SessionProvider interface.
func (c *Cached) Laps(ctx context.Context, ref schema.SessionRef) ([]schema.LapRecord, error) {
	key := cacheKey(ref)
	if laps := c.checkCacheHit(key); laps != nil {
		contract.LogDebug("Lap cache hit", logrus.Fields{"season": ref.Season, "event": ref.Event, "laps": len(laps)})
		return laps, nil
	}

	laps, err := c.inner.Laps(ctx, ref)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(laps); err == nil {
		if err := c.store.Set(key, data, lapCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache laps", err)
		}
	}
	return laps, nil
}

// checkCacheHit returns cached laps, or nil on a miss or version mismatch.
func (c *Cached) checkCacheHit(key string) []schema.LapRecord {
	data, version, _, err := c.store.Get(key)
	if err != nil || version != lapCacheVersion {
		return nil
	}
	var laps []schema.LapRecord
	if err := json.Unmarshal(data, &laps); err != nil || len(laps) == 0 {
		return nil
	}
	return laps
}

// cacheKey hashes the normalized session reference.
func cacheKey(ref schema.SessionRef) string {
	key := fmt.Sprintf("laps:%d:%s:%s", ref.Season,
		strings.ToLower(strings.TrimSpace(ref.Event)),
		strings.ToLower(strings.TrimSpace(ref.Session)))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
