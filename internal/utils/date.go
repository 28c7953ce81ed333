package utils

import (
	"fmt"
	"time"
)

// StartCurrentDay возвращает новую дату с временем 00:00, таймзона остается прежней.
func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartNextDay возвращает новую дату, где день увеличен на 1, время установлено на 00:00, а таймзона остается прежней.
func StartNextDay(t time.Time) time.Time {
	newDate := t.AddDate(0, 0, 1)
	return StartCurrentDay(newDate)
}

// AddDays сдвигает дату на days календарных дней вперед (или назад при отрицательном days),
// время устанавливается на 00:00. Сдвиг через AddDate, а не через 24h-интервалы,
// чтобы переходы на летнее/зимнее время не ломали календарь.
func AddDays(t time.Time, days int) time.Time {
	newDate := t.AddDate(0, 0, days)
	return StartCurrentDay(newDate)
}

// ParseDate парсит дату из строки в формате YYYY-MM-DD, если не удается, то пробует RFC3339
func ParseDate(str string) (time.Time, error) {
	parsedDate, err := time.ParseInLocation("2006-01-02", str, time.Local)
	if err != nil {
		parsedDate, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
		}
	}

	return parsedDate, nil
}
