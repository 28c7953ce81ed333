package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/json_types"
)

func dateOverrideRecord(doctorID, day string, slots ...domain.TimeSlot) domain.AvailabilityRecord {
	overrideDate := json_types.NewDate(date(day))
	return domain.AvailabilityRecord{
		DoctorID:      doctorID,
		Period:        "weekdays",
		AvailableDate: &overrideDate,
		TimeSlots:     slots,
	}
}

func TestMatchForDate_DateOverride(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	// Точная дата матчится независимо от period/days
	record := dateOverrideRecord("1", "2024-06-08")
	record.Period = "weekdays"

	matched, err := service.MatchForDate(date("2024-06-08"), []domain.AvailabilityRecord{record})
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = service.MatchForDate(date("2024-06-09"), []domain.AvailabilityRecord{record})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatchForDate_WeekdayWeekendPartition(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	weekdaysRecord := domain.AvailabilityRecord{DoctorID: "1", Period: "weekdays"}
	weekendRecord := domain.AvailabilityRecord{DoctorID: "1", Period: "weekend"}
	records := []domain.AvailabilityRecord{weekdaysRecord, weekendRecord}

	// 2024-06-10 - понедельник
	for i := 0; i < 14; i++ {
		day := date("2024-06-10").AddDate(0, 0, i)
		matched, err := service.MatchForDate(day, records)
		require.NoError(t, err)

		// На любую дату подходит ровно одна из двух записей
		require.Len(t, matched, 1, "date %s", day.Format("2006-01-02"))

		if domain.WeekdayOf(day).IsWeekend() {
			assert.Equal(t, domain.AvailabilityPeriod("weekend"), matched[0].Period)
		} else {
			assert.Equal(t, domain.AvailabilityPeriod("weekdays"), matched[0].Period)
		}
	}
}

func TestMatchForDate_EverydayCoversWholeWindow(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	records := []domain.AvailabilityRecord{{DoctorID: "1", Period: "Everyday"}}

	for _, day := range BuildWindow(date("2024-06-01"), 30) {
		matched, err := service.MatchForDate(day, records)
		require.NoError(t, err)
		assert.Len(t, matched, 1)
	}
}

func TestMatchForDate_CustomDaysFallback(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	records := []domain.AvailabilityRecord{{
		DoctorID: "1",
		Period:   "custom",
		Days:     []domain.WeekdayName{"Monday", "friday"},
	}}

	for _, day := range BuildWindow(date("2024-06-03"), 28) {
		matched, err := service.MatchForDate(day, records)
		require.NoError(t, err)

		weekday := domain.WeekdayOf(day)
		if weekday == domain.WeekdayNameMonday || weekday == domain.WeekdayNameFriday {
			assert.Len(t, matched, 1, "date %s", day.Format("2006-01-02"))
		} else {
			assert.Empty(t, matched, "date %s", day.Format("2006-01-02"))
		}
	}
}

func TestMatchForDate_UnknownPeriodFallsThroughToDays(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	records := []domain.AvailabilityRecord{{
		DoctorID: "1",
		Period:   "biweekly",
		Days:     []domain.WeekdayName{"tuesday"},
	}}

	// 2024-06-11 - вторник
	matched, err := service.MatchForDate(date("2024-06-11"), records)
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = service.MatchForDate(date("2024-06-12"), records)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatchForDate_UnknownPeriodWithoutDaysNeverMatches(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	records := []domain.AvailabilityRecord{{DoctorID: "1", Period: "biweekly"}}

	matched, err := service.MatchForDate(date("2024-06-11"), records)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatchForDate_MultiCustomDates(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	records := []domain.AvailabilityRecord{{
		DoctorID: "1",
		Period:   "custom",
		CustomDates: []domain.CustomDateEntry{
			{Date: json_types.NewDate(date("2024-06-12")), TimeSlots: []domain.TimeSlot{mustSlot("10:00", "11:00")}},
			{Date: json_types.NewDate(date("2024-06-20")), TimeSlots: []domain.TimeSlot{mustSlot("12:00", "13:00")}},
		},
	}}

	matched, err := service.MatchForDate(date("2024-06-20"), records)
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = service.MatchForDate(date("2024-06-13"), records)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

// Повторяющееся правило и дата-исключение на тот же день возвращаются оба,
// исключение не вытесняет правило
func TestMatchForDate_OverrideDoesNotSuppressRecurring(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	records := []domain.AvailabilityRecord{
		{
			DoctorID:  "1",
			Period:    "everyday",
			TimeSlots: []domain.TimeSlot{mustSlot("08:00", "09:00")},
		},
		dateOverrideRecord("1", "2024-06-10", mustSlot("14:00", "15:00")),
	}

	matched, err := service.MatchForDate(date("2024-06-10"), records)
	require.NoError(t, err)
	require.Len(t, matched, 2)
}

func TestMatchForDate_InvalidDate(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	_, err := service.MatchForDate(time.Time{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
