package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

func parseDate(str string) (time.Time, error) {
	// Сначала пробуем дату без времени, бэкенд присылает даты в формате YYYY-MM-DD
	parsedDate, err := time.ParseInLocation("2006-01-02", str, time.Local)
	if err != nil {
		// Если не удалось, пробуем RFC3339 и дату со временем без таймзоны
		parsedDate, err = time.Parse(time.RFC3339, str)
		if err != nil {
			parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, time.Local)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
			}
		}
	}

	return parsedDate, nil
}

type Date struct {
	Date time.Time
}

func NewDate(t time.Time) Date {
	return Date{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

func (t *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedDate, err := parseDate(str)
	if err != nil {
		return err
	}

	*t = Date{Date: parsedDate}
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format("2006-01-02"))
}

func (t Date) String() string {
	return t.Date.Format("2006-01-02")
}

// SameDay сравнивает только календарные дни, время и таймзона не участвуют
func (t Date) SameDay(other time.Time) bool {
	return t.String() == other.Format("2006-01-02")
}
