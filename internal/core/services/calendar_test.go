package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
	"github.com/suchimauz/hms-availability-resolver/internal/utils"
)

func TestBuildWindow_Contiguity(t *testing.T) {
	anchor := date("2024-06-10")
	window := BuildWindow(anchor, 30)

	require.Len(t, window, 30)
	assert.True(t, window[0].Equal(anchor))

	// Каждая следующая дата ровно на один календарный день позже предыдущей
	for i := 1; i < len(window); i++ {
		assert.True(t, window[i].Equal(window[i-1].AddDate(0, 0, 1)),
			"window[%d]=%s window[%d]=%s", i-1, window[i-1], i, window[i])
	}
}

func TestBuildWindow_AnchorTimeTruncated(t *testing.T) {
	anchor := time.Date(2024, 6, 10, 15, 42, 7, 0, time.Local)
	window := BuildWindow(anchor, 7)

	require.Len(t, window, 7)
	for _, day := range window {
		assert.Equal(t, day, utils.StartCurrentDay(day))
	}
}

func TestAdvanceRetreat_Symmetric(t *testing.T) {
	anchor := date("2024-06-10")

	advanced := Advance(anchor, 30)
	assert.True(t, advanced.Equal(date("2024-07-10")))

	// Retreat - обратная операция к Advance
	assert.True(t, Retreat(advanced, 30).Equal(anchor))
}

func TestToday_StartOfDay(t *testing.T) {
	today := Today()
	assert.Equal(t, today, utils.StartCurrentDay(today))
	assert.Equal(t, time.Now().Format("2006-01-02"), today.Format("2006-01-02"))
}

func TestBuildCalendar_GroupsDoctors(t *testing.T) {
	// У врача 1 на 2024-06-10 подходят обе записи: everyday и дата-исключение.
	// В записях дня обе, в счетчике врачей - один.
	backend := &fakeBackend{records: []domain.AvailabilityRecord{
		{
			DoctorID:  "1",
			Period:    "everyday",
			TimeSlots: []domain.TimeSlot{mustSlot("08:00", "09:00")},
		},
		dateOverrideRecord("1", "2024-06-10", mustSlot("14:00", "15:00")),
		{
			DoctorID:  "2",
			Period:    "weekend",
			TimeSlots: []domain.TimeSlot{mustSlot("10:00", "11:00")},
		},
	}}
	service := newTestService(backend, nil)

	calendar, err := service.BuildCalendar(context.Background(), date("2024-06-10"), 7, out.AvailabilityFilters{})
	require.NoError(t, err)
	require.Len(t, calendar, 7)

	// 2024-06-10 - понедельник
	monday := calendar[0]
	assert.Equal(t, "2024-06-10", monday.Date.String())
	assert.Len(t, monday.Records, 2)
	assert.Equal(t, 1, monday.DoctorsCount)

	// 2024-06-15 - суббота: everyday врача 1 и weekend врача 2
	saturday := calendar[5]
	assert.Len(t, saturday.Records, 2)
	assert.Equal(t, 2, saturday.DoctorsCount)
}

func TestBuildCalendar_DefaultWindowSize(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	calendar, err := service.BuildCalendar(context.Background(), date("2024-06-10"), 0, out.AvailabilityFilters{})
	require.NoError(t, err)
	assert.Len(t, calendar, service.cfg.Calendar.WindowDays)
}

func TestBuildCalendar_InvalidAnchor(t *testing.T) {
	service := newTestService(&fakeBackend{}, nil)

	_, err := service.BuildCalendar(context.Background(), time.Time{}, 7, out.AvailabilityFilters{})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
