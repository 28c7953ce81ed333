package services

import (
	"slices"
	"strings"
	"time"

	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
)

// MatchForDate возвращает все записи доступности, подходящие под дату.
// На одну дату для одного врача может подойти несколько записей
// (повторяющееся правило и дата-исключение не вытесняют друг друга),
// дедупликация - забота вызывающего.
func (s *AvailabilityService) MatchForDate(date time.Time, records []domain.AvailabilityRecord) ([]domain.AvailabilityRecord, error) {
	if date.IsZero() {
		return nil, domain.ErrInvalidDate
	}

	matched := make([]domain.AvailabilityRecord, 0)
	for _, record := range records {
		if recordMatchesDate(date, &record) {
			matched = append(matched, record)
		}
	}

	return matched, nil
}

func recordMatchesDate(date time.Time, record *domain.AvailabilityRecord) bool {
	switch record.Shape() {
	case domain.AvailabilityShapeDateOverride:
		// Точная дата перекрывает period/days целиком
		return record.AvailableDate.SameDay(date)
	case domain.AvailabilityShapeMultiCustom:
		for _, entry := range record.CustomDates {
			if entry.Date.SameDay(date) {
				return true
			}
		}
		return false
	}

	weekday := domain.WeekdayOf(date)

	switch record.NormalizedPeriod() {
	case domain.AvailabilityPeriodEveryday:
		return true
	case domain.AvailabilityPeriodWeekdays:
		return !weekday.IsWeekend()
	case domain.AvailabilityPeriodWeekend:
		return weekday.IsWeekend()
	}

	// Неизвестный период - не ошибка, проверяем явный набор дней
	if len(record.Days) > 0 {
		return slices.Contains(normalizeWeekdays(record.Days), weekday)
	}

	return false
}

func normalizeWeekdays(days []domain.WeekdayName) []domain.WeekdayName {
	normalized := make([]domain.WeekdayName, 0, len(days))
	for _, day := range days {
		normalized = append(normalized, domain.WeekdayName(strings.ToLower(string(day))))
	}
	return normalized
}
