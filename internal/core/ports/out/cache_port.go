package out

import (
	"context"

	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
)

type CachePort interface {
	// Кэширование слотов, ключ - domain.SlotCacheKey
	GetSlots(ctx context.Context, key string) (*domain.SlotEntry, bool)
	StoreSlots(ctx context.Context, key string, entry *domain.SlotEntry)

	// Инвалидация
	InvalidateKey(ctx context.Context, key string)
	InvalidateDoctor(ctx context.Context, doctorID string)
	InvalidateAll(ctx context.Context)
}
