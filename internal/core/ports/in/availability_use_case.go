package in

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

type AvailabilityUseCase interface {
	// Сопоставление записей доступности с календарной датой.
	// Возвращает все подошедшие записи, без дедупликации по врачу.
	MatchForDate(date time.Time, records []domain.AvailabilityRecord) ([]domain.AvailabilityRecord, error)

	// Календарное окно с подошедшими записями по дням
	BuildCalendar(ctx context.Context, anchor time.Time, days int, filters out.AvailabilityFilters) ([]domain.CalendarDay, error)

	// Слоты на дату для врача, с кэшем и схлопыванием конкурентных запросов
	GetSlots(ctx context.Context, date time.Time, doctorID string) (*domain.SlotEntry, error)

	// Прогрев кэша слотов на дату для набора врачей
	PreloadForDate(ctx context.Context, date time.Time, doctorIDs []string) error

	// Проверка кандидата на дубликат существующего расписания
	FindConflict(candidate out.AvailabilityPayload, existing []domain.AvailabilityRecord) *domain.AvailabilityRecord

	// Проксирование операций бэкенда с инвалидацией кэша на мутациях
	ListAvailabilities(ctx context.Context, filters out.AvailabilityFilters) ([]domain.AvailabilityRecord, error)
	CreateAvailability(ctx context.Context, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error)
	UpdateAvailability(ctx context.Context, recordID uuid.UUID, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error)
	DeleteAvailability(ctx context.Context, recordID uuid.UUID, doctorID string) error

	// Инвалидация кэша, используется AMQP-слушателем
	InvalidateDoctorCache(ctx context.Context, doctorID string) error
	InvalidateAllSlotsCache(ctx context.Context) error
}
