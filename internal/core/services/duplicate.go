package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

var ErrDuplicateSchedule = errors.New("duplicate schedule")

// FindConflict ищет среди существующих записей дубликат кандидата.
// Для не-custom периодов дубликат - совпадение периода и набора слотов.
// Для custom - совпадение набора дней недели и набора слотов.
// Кандидат с периодом custom и пустым набором дней никогда не конфликтует,
// такие отсекаются валидацией раньше.
// Возвращает первую совпавшую запись или nil.
func (s *AvailabilityService) FindConflict(candidate out.AvailabilityPayload, existing []domain.AvailabilityRecord) *domain.AvailabilityRecord {
	candidatePeriod := strings.ToLower(string(candidate.Period))
	candidateSlots := canonicalSlots(candidate.TimeSlots)

	if candidatePeriod != string(domain.AvailabilityPeriodCustom) {
		for i := range existing {
			record := &existing[i]
			if string(record.NormalizedPeriod()) == candidatePeriod && canonicalSlots(record.TimeSlots) == candidateSlots {
				return record
			}
		}
		return nil
	}

	candidateDays := canonicalDaySet(candidate.Days)
	if candidateDays == "" {
		return nil
	}

	for i := range existing {
		record := &existing[i]
		if canonicalDaySet(record.Days) == candidateDays && canonicalSlots(record.TimeSlots) == candidateSlots {
			return record
		}
	}

	return nil
}

// canonicalSlots приводит набор слотов к канонической строке:
// сортировка по началу, пары "start-end" через запятую.
// Два набора равны, если равны их канонические строки, порядок не важен.
func canonicalSlots(slots []domain.TimeSlot) string {
	pairs := make([]string, 0, len(slots))
	for _, slot := range slots {
		pairs = append(pairs, slot.StartTime.String()+"-"+slot.EndTime.String())
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// canonicalDaySet приводит набор дней недели к канонической строке:
// нижний регистр, сортировка, через запятую
func canonicalDaySet(days []domain.WeekdayName) string {
	normalized := make([]string, 0, len(days))
	for _, day := range days {
		normalized = append(normalized, strings.ToLower(string(day)))
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}
