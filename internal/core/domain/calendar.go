package domain

import (
	"github.com/suchimauz/hms-availability-resolver/internal/core/json_types"
)

// CalendarDay - один день календарного окна с подошедшими записями доступности.
// DoctorsCount считается по уникальным врачам: на одну дату для одного врача
// может подойти несколько записей (повторяющееся правило + дата-исключение),
// и в счетчике они не должны задваиваться.
type CalendarDay struct {
	Date         json_types.Date      `json:"date"`
	Weekday      WeekdayName          `json:"weekday"`
	Records      []AvailabilityRecord `json:"records"`
	DoctorsCount int                  `json:"doctors_count"`
}
