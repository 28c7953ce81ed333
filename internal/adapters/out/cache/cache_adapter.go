package cache

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

// CacheAdapter хранит разрешенные слоты по ключу (дата, врач).
// Записи после вставки не изменяются, только вытесняются LRU или инвалидируются.
type CacheAdapter struct {
	cache  *lru.Cache[string, *domain.SlotEntry]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	slotsCache, err := lru.New[string, *domain.SlotEntry](cfg.Cache.SlotsSize)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.SlotsSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		cache:  slotsCache,
		logger: logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *CacheAdapter) GetSlots(ctx context.Context, key string) (*domain.SlotEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache.Get(key)
	if !exists {
		c.logger.Debug("cache.slots.get.miss", out.LogFields{
			"key": key,
		})
		return nil, false
	}

	c.logger.Debug("cache.slots.get.hit", out.LogFields{
		"key":        key,
		"slotsCount": len(entry.Slots),
	})
	return entry, true
}

func (c *CacheAdapter) StoreSlots(ctx context.Context, key string, entry *domain.SlotEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// При гонке по одному ключу оставляем уже вставленную запись,
	// выданные наружу записи должны оставаться неизменными
	if _, exists := c.cache.Get(key); exists {
		return
	}

	c.logger.Debug("cache.slots.store", out.LogFields{
		"key":        key,
		"slotsCount": len(entry.Slots),
	})

	c.cache.Add(key, entry)
}

func (c *CacheAdapter) InvalidateKey(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
}

// InvalidateDoctor убирает все закэшированные даты врача
func (c *CacheAdapter) InvalidateDoctor(ctx context.Context, doctorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	suffix := "|" + doctorID
	removed := 0
	for _, key := range c.cache.Keys() {
		if strings.HasSuffix(key, suffix) {
			c.cache.Remove(key)
			removed++
		}
	}

	c.logger.Debug("cache.slots.invalidate_doctor", out.LogFields{
		"doctorId": doctorID,
		"removed":  removed,
	})
}

func (c *CacheAdapter) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()

	c.logger.Debug("cache.slots.invalidate_all", nil)
}
