package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
	"golang.org/x/sync/singleflight"
)

type AvailabilityService struct {
	backendPort out.BackendPort
	cachePort   out.CachePort
	logger      out.LoggerPort
	cfg         *config.Config

	// Схлопывание конкурентных запросов слотов по одному ключу
	flight singleflight.Group

	// Даты, по которым уже идет прогрев
	preloadMu  sync.Mutex
	preloading map[string]struct{}
}

func NewAvailabilityService(
	backendPort out.BackendPort,
	cachePort out.CachePort,
	cfg *config.Config,
	logger out.LoggerPort,
) *AvailabilityService {
	return &AvailabilityService{
		backendPort: backendPort,
		cachePort:   cachePort,
		cfg:         cfg,
		logger:      logger.WithModule("AvailabilityService"),
		preloading:  make(map[string]struct{}),
	}
}

func (s *AvailabilityService) cacheEnabled() bool {
	return s.cachePort != nil && s.cfg.Cache.Enabled
}

// GetSlots возвращает слоты на дату для врача.
// Попадание в кэш не ходит в сеть. Промах идет в бэкенд ровно один раз на ключ:
// конкурентные промахи по одному ключу ждут общий запрос.
// Ошибка бэкенда не кэшируется: вызывающему возвращается пустой транзиентный
// результат, следующий вызов по этому же ключу повторит запрос.
func (s *AvailabilityService) GetSlots(ctx context.Context, date time.Time, doctorID string) (*domain.SlotEntry, error) {
	if date.IsZero() {
		return nil, domain.ErrInvalidDate
	}

	key := domain.SlotCacheKey(date, doctorID)

	if s.cacheEnabled() {
		if entry, exists := s.cachePort.GetSlots(ctx, key); exists {
			s.logger.Debug("slots.get.cache.hit", out.LogFields{
				"key":        key,
				"slotsCount": len(entry.Slots),
			})
			return entry, nil
		}
	}

	s.logger.Debug("slots.get.cache.miss", out.LogFields{
		"key": key,
	})

	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		// Пока ждали очередь, запись могла появиться
		if s.cacheEnabled() {
			if entry, exists := s.cachePort.GetSlots(ctx, key); exists {
				return entry, nil
			}
		}

		entry, err := s.backendPort.GetTimeSlots(ctx, date, doctorID)
		if err != nil {
			return nil, err
		}

		if s.cacheEnabled() {
			s.cachePort.StoreSlots(ctx, key, entry)
		}

		return entry, nil
	})

	if err != nil {
		s.logger.Warn("slots.get.fetch_failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})

		// Транзиентный пустой результат, в кэш не пишем
		return &domain.SlotEntry{
			Date:     date.Format("2006-01-02"),
			DoctorID: doctorID,
			Slots:    []domain.TimeSlot{},
			Source:   domain.SlotSourceUnavailable,
		}, nil
	}

	if shared {
		s.logger.Debug("slots.get.flight.shared", out.LogFields{
			"key": key,
		})
	}

	return v.(*domain.SlotEntry), nil
}

// PreloadForDate прогревает кэш слотов на дату для набора врачей.
// Повторный прогрев той же даты, пока идет текущий - no-op.
// Ошибки по отдельным врачам не прерывают прогрев и не возвращаются наверх.
func (s *AvailabilityService) PreloadForDate(ctx context.Context, date time.Time, doctorIDs []string) error {
	if date.IsZero() {
		return domain.ErrInvalidDate
	}

	day := date.Format("2006-01-02")

	s.preloadMu.Lock()
	if _, busy := s.preloading[day]; busy {
		s.preloadMu.Unlock()
		s.logger.Debug("slots.preload.already_running", out.LogFields{
			"date": day,
		})
		return nil
	}
	s.preloading[day] = struct{}{}
	s.preloadMu.Unlock()

	defer func() {
		s.preloadMu.Lock()
		delete(s.preloading, day)
		s.preloadMu.Unlock()
	}()

	s.logger.Info("slots.preload.started", out.LogFields{
		"date":         day,
		"doctorsCount": len(doctorIDs),
	})

	var wg sync.WaitGroup
	for _, id := range doctorIDs {
		wg.Add(1)
		go func(doctorID string) {
			defer wg.Done()

			if _, err := s.GetSlots(ctx, date, doctorID); err != nil {
				s.logger.Warn("slots.preload.doctor_failed", out.LogFields{
					"date":     day,
					"doctorId": doctorID,
					"error":    err.Error(),
				})
			}
		}(id)
	}
	wg.Wait()

	s.logger.Info("slots.preload.finished", out.LogFields{
		"date": day,
	})

	return nil
}

func (s *AvailabilityService) ListAvailabilities(ctx context.Context, filters out.AvailabilityFilters) ([]domain.AvailabilityRecord, error) {
	records, err := s.backendPort.ListAvailabilities(ctx, filters)
	if err != nil {
		s.logger.Error("availability.list.fetch_failed", out.LogFields{
			"doctorId": filters.DoctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("availability.list.fetch_failed: %w", err)
	}

	return records, nil
}

// CreateAvailability проверяет кандидата на дубликат и создает запись на бэкенде.
// При конфликте возвращает ErrDuplicateSchedule, запись при этом не создается.
func (s *AvailabilityService) CreateAvailability(ctx context.Context, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error) {
	existing, err := s.backendPort.ListAvailabilities(ctx, out.AvailabilityFilters{DoctorID: doctorID})
	if err != nil {
		return nil, fmt.Errorf("availability.create.list_failed: %w", err)
	}

	if conflict := s.FindConflict(payload, existing); conflict != nil {
		s.logger.Info("availability.create.duplicate_rejected", out.LogFields{
			"doctorId":   doctorID,
			"conflictId": conflict.ID,
		})
		return conflict, ErrDuplicateSchedule
	}

	record, err := s.backendPort.CreateAvailability(ctx, doctorID, payload)
	if err != nil {
		s.logger.Error("availability.create.failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("availability.create.failed: %w", err)
	}

	// Расписание врача поменялось, закэшированные слоты больше не актуальны
	if err := s.InvalidateDoctorCache(ctx, doctorID); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *AvailabilityService) UpdateAvailability(ctx context.Context, recordID uuid.UUID, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error) {
	record, err := s.backendPort.UpdateAvailability(ctx, recordID, payload)
	if err != nil {
		s.logger.Error("availability.update.failed", out.LogFields{
			"recordId": recordID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("availability.update.failed: %w", err)
	}

	if err := s.InvalidateDoctorCache(ctx, doctorID); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *AvailabilityService) DeleteAvailability(ctx context.Context, recordID uuid.UUID, doctorID string) error {
	if err := s.backendPort.DeleteAvailability(ctx, recordID); err != nil {
		s.logger.Error("availability.delete.failed", out.LogFields{
			"recordId": recordID,
			"error":    err.Error(),
		})
		return fmt.Errorf("availability.delete.failed: %w", err)
	}

	return s.InvalidateDoctorCache(ctx, doctorID)
}

func (s *AvailabilityService) InvalidateDoctorCache(ctx context.Context, doctorID string) error {
	if !s.cacheEnabled() {
		return nil
	}

	s.cachePort.InvalidateDoctor(ctx, doctorID)

	return nil
}

func (s *AvailabilityService) InvalidateAllSlotsCache(ctx context.Context) error {
	if !s.cacheEnabled() {
		return nil
	}

	s.cachePort.InvalidateAll(ctx)

	return nil
}
