package services

import (
	"context"
	"fmt"
	"time"

	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/json_types"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
	"github.com/suchimauz/hms-availability-resolver/internal/utils"
)

// BuildWindow возвращает size последовательных календарных дат начиная с anchor
// включительно. Каждая дата - локальная полночь, сдвиг через AddDate,
// чтобы переходы летнего/зимнего времени не давали дрейфа.
func BuildWindow(anchor time.Time, size int) []time.Time {
	window := make([]time.Time, 0, size)
	start := utils.StartCurrentDay(anchor)
	for i := 0; i < size; i++ {
		window = append(window, utils.AddDays(start, i))
	}
	return window
}

// Advance сдвигает якорь окна на size дней вперед
func Advance(anchor time.Time, size int) time.Time {
	return utils.AddDays(anchor, size)
}

// Retreat сдвигает якорь окна на size дней назад
func Retreat(anchor time.Time, size int) time.Time {
	return utils.AddDays(anchor, -size)
}

// Today возвращает начало текущего дня
func Today() time.Time {
	return utils.StartCurrentDay(time.Now())
}

// BuildCalendar строит календарное окно: на каждую дату окна - подошедшие записи
// и количество уникальных врачей. Счетчик группируется по врачу, потому что
// одному врачу на одну дату может подойти несколько записей.
func (s *AvailabilityService) BuildCalendar(ctx context.Context, anchor time.Time, days int, filters out.AvailabilityFilters) ([]domain.CalendarDay, error) {
	if anchor.IsZero() {
		return nil, domain.ErrInvalidDate
	}

	if days <= 0 {
		days = s.cfg.Calendar.WindowDays
	}

	records, err := s.backendPort.ListAvailabilities(ctx, filters)
	if err != nil {
		s.logger.Error("calendar.build.list_failed", out.LogFields{
			"anchor": anchor.Format("2006-01-02"),
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("calendar.build.list_failed: %w", err)
	}

	calendar := make([]domain.CalendarDay, 0, days)
	for _, date := range BuildWindow(anchor, days) {
		matched, err := s.MatchForDate(date, records)
		if err != nil {
			return nil, err
		}

		doctors := make(map[string]struct{})
		for _, record := range matched {
			doctors[record.DoctorID] = struct{}{}
		}

		calendar = append(calendar, domain.CalendarDay{
			Date:         json_types.NewDate(date),
			Weekday:      domain.WeekdayOf(date),
			Records:      matched,
			DoctorsCount: len(doctors),
		})
	}

	s.logger.Debug("calendar.build.finished", out.LogFields{
		"anchor":       anchor.Format("2006-01-02"),
		"days":         days,
		"recordsCount": len(records),
	})

	return calendar, nil
}
