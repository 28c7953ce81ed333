package domain

import (
	"time"

	"github.com/suchimauz/hms-availability-resolver/internal/core/json_types"
)

type SlotSource string

const (
	SlotSourceRecurring SlotSource = "recurring"
	SlotSourceCustom    SlotSource = "custom"

	// Слоты недоступны из-за временной ошибки бэкенда,
	// не путать с реальным пустым днем
	SlotSourceUnavailable SlotSource = "unavailable"
)

type TimeSlot struct {
	StartTime json_types.ClockTime `json:"start_time"`
	EndTime   json_types.ClockTime `json:"end_time"`
}

// SlotEntry - значение кэша слотов для пары (дата, врач).
// После создания запись не изменяется.
type SlotEntry struct {
	Date     string     `json:"date"`
	DoctorID string     `json:"doctor_id"`
	Slots    []TimeSlot `json:"slots"`
	Source   SlotSource `json:"source"`
}

// Ключ кэша слотов: "<YYYY-MM-DD>|<doctorId>"
func SlotCacheKey(date time.Time, doctorID string) string {
	return date.Format("2006-01-02") + "|" + doctorID
}
