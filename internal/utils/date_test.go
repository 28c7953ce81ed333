package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCurrentDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 42, 7, 123, time.Local)
	start := StartCurrentDay(now)

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local), start)
}

func TestStartNextDay(t *testing.T) {
	now := time.Date(2024, 6, 30, 23, 59, 0, 0, time.Local)
	next := StartNextDay(now)

	// Переход через границу месяца
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local), next)
}

func TestAddDays(t *testing.T) {
	start := time.Date(2024, 2, 27, 10, 0, 0, 0, time.Local)

	// Високосный февраль
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), AddDays(start, 2))
	assert.Equal(t, time.Date(2024, 2, 25, 0, 0, 0, 0, time.Local), AddDays(start, -2))
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local), parsed)

	parsed, err = ParseDate("2024-06-10T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, parsed.UTC().Hour())

	_, err = ParseDate("10.06.2024")
	assert.Error(t, err)
}
