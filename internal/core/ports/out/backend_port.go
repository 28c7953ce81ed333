package out

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/json_types"
)

// Конверт ответа HMS-бэкенда
type BackendEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type AvailabilityFilters struct {
	DoctorID string
	Search   string
}

// Тело мутации записи доступности, поля в том виде, в котором их принимает бэкенд
type AvailabilityPayload struct {
	Period        domain.AvailabilityPeriod `json:"period"`
	Days          []domain.WeekdayName      `json:"days,omitempty"`
	TimeSlots     []domain.TimeSlot         `json:"time_slots,omitempty"`
	CustomDates   []domain.CustomDateEntry  `json:"custom_dates,omitempty"`
	AvailableDate *json_types.Date          `json:"available_date,omitempty"`
}

type BackendPort interface {
	// Методы для работы с записями доступности
	ListAvailabilities(ctx context.Context, filters AvailabilityFilters) ([]domain.AvailabilityRecord, error)
	CreateAvailability(ctx context.Context, doctorID string, payload AvailabilityPayload) (*domain.AvailabilityRecord, error)
	UpdateAvailability(ctx context.Context, recordID uuid.UUID, payload AvailabilityPayload) (*domain.AvailabilityRecord, error)
	DeleteAvailability(ctx context.Context, recordID uuid.UUID) error

	// Разрешенные слоты на конкретную дату для конкретного врача
	GetTimeSlots(ctx context.Context, date time.Time, doctorID string) (*domain.SlotEntry, error)
}
