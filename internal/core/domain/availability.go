package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/hms-availability-resolver/internal/core/json_types"
)

var ErrInvalidDate = errors.New("invalid date")

type AvailabilityPeriod string

const (
	AvailabilityPeriodEveryday AvailabilityPeriod = "everyday"
	AvailabilityPeriodWeekdays AvailabilityPeriod = "weekdays"
	AvailabilityPeriodWeekend  AvailabilityPeriod = "weekend"
	AvailabilityPeriodCustom   AvailabilityPeriod = "custom"
)

type WeekdayName string

const (
	WeekdayNameMonday    WeekdayName = "monday"
	WeekdayNameTuesday   WeekdayName = "tuesday"
	WeekdayNameWednesday WeekdayName = "wednesday"
	WeekdayNameThursday  WeekdayName = "thursday"
	WeekdayNameFriday    WeekdayName = "friday"
	WeekdayNameSaturday  WeekdayName = "saturday"
	WeekdayNameSunday    WeekdayName = "sunday"
)

var WeekdayNameMap = map[time.Weekday]WeekdayName{
	time.Monday:    WeekdayNameMonday,
	time.Tuesday:   WeekdayNameTuesday,
	time.Wednesday: WeekdayNameWednesday,
	time.Thursday:  WeekdayNameThursday,
	time.Friday:    WeekdayNameFriday,
	time.Saturday:  WeekdayNameSaturday,
	time.Sunday:    WeekdayNameSunday,
}

func WeekdayOf(date time.Time) WeekdayName {
	return WeekdayNameMap[date.Weekday()]
}

func (w WeekdayName) IsWeekend() bool {
	return w == WeekdayNameSaturday || w == WeekdayNameSunday
}

type CustomDateEntry struct {
	Date      json_types.Date `json:"date"`
	TimeSlots []TimeSlot      `json:"time_slots"`
}

// Форма записи доступности. Запись находится ровно в одной из трех форм,
// проверять нужно строго в этом порядке: дата-исключение, мульти-дата, повторяющаяся.
type AvailabilityShape string

const (
	AvailabilityShapeDateOverride AvailabilityShape = "date_override"
	AvailabilityShapeMultiCustom  AvailabilityShape = "multi_custom"
	AvailabilityShapeRecurring    AvailabilityShape = "recurring"
)

type AvailabilityRecord struct {
	ID            uuid.UUID          `json:"id"`
	DoctorID      string             `json:"doctor_id"`
	Period        AvailabilityPeriod `json:"period"`
	Days          []WeekdayName      `json:"days,omitempty"`
	AvailableDate *json_types.Date   `json:"available_date,omitempty"`
	CustomDates   []CustomDateEntry  `json:"custom_dates,omitempty"`
	TimeSlots     []TimeSlot         `json:"time_slots,omitempty"`
}

func (r *AvailabilityRecord) Shape() AvailabilityShape {
	if r.AvailableDate != nil && !r.AvailableDate.Date.IsZero() {
		return AvailabilityShapeDateOverride
	}
	if len(r.CustomDates) > 0 {
		return AvailabilityShapeMultiCustom
	}
	return AvailabilityShapeRecurring
}

// NormalizedPeriod приводит период к нижнему регистру для сравнения,
// бэкенд присылает и 'Weekdays', и 'weekdays'
func (r *AvailabilityRecord) NormalizedPeriod() AvailabilityPeriod {
	return AvailabilityPeriod(strings.ToLower(string(r.Period)))
}
