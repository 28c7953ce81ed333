package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime - время внутри дня в формате HH:MM.
// Строковое представление всегда с ведущими нулями, поэтому
// лексикографическое сравнение совпадает с хронологическим.
type ClockTime struct {
	Time time.Time
}

func NewClockTime(str string) (ClockTime, error) {
	parsedTime, err := time.Parse("15:04", str)
	if err != nil {
		return ClockTime{}, fmt.Errorf("failed to parse clock time: %v", err)
	}
	return ClockTime{Time: parsedTime}, nil
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])
	parsedTime, err := time.Parse("15:04", str)
	if err != nil {
		// Бэкенд местами присылает время с секундами
		parsedTime, err = time.Parse("15:04:05", str)
		if err != nil {
			return fmt.Errorf("failed to parse clock time: %v", err)
		}
	}
	*t = ClockTime{Time: parsedTime}
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format("15:04"))
}

func (t ClockTime) String() string {
	return t.Time.Format("15:04")
}
