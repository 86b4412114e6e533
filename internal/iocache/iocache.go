// Package iocache is for caching lap data and recording prediction runs.
package iocache

import (
	"sync"

	"github.com/huangsam/podium/internal/contract"
)

// CacheStoreManager manages the lap cache and the run history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	laps         contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetLapStore returns the lap CacheStore. It is nil when caching was not initialized.
func (mgr *CacheStoreManager) GetLapStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.laps
}

// GetHistoryStore returns the run HistoryStore. It is nil when history is disabled.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
