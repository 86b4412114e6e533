// Package provider supplies historical lap records from OpenF1, local files or the lap cache.
package provider

import (
	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
)

// New builds the configured provider, wrapping it with the lap cache when one is available.
func New(cfg *contract.Config, mgr contract.CacheManager) (contract.SessionProvider, error) {
	var inner contract.SessionProvider
	switch cfg.Provider {
	case schema.FileProvider:
		// Local files are already offline, so they skip the cache
		return NewFile(cfg.LapsFile), nil
	case schema.OpenF1Provider, "":
		inner = NewOpenF1(cfg.OpenF1URL, cfg.HTTPTimeout)
	default:
		return nil, schema.NewConfigurationError("unsupported provider: %s", cfg.Provider)
	}

	if mgr == nil {
		return inner, nil
	}
	store := mgr.GetLapStore()
	if store == nil {
		return inner, nil
	}
	return NewCached(inner, store), nil
}

// fail wraps err as a DataUnavailableError for ref.
func fail(ref schema.SessionRef, err error) error {
	return &schema.DataUnavailableError{Session: ref, Err: err}
}
