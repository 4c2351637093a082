package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Timestamp хранит момент времени и сериализуется в JSON как число
// миллисекунд Unix. При разборе принимаются также строки ISO 8601.
type Timestamp struct {
	time.Time
}

// NewTimestamp создаёт Timestamp с точностью до миллисекунд.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{time.UnixMilli(t.UnixMilli())}
}

// MarshalJSON реализует json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, t.UnixMilli(), 10), nil
}

// UnmarshalJSON реализует json.Unmarshaler. Нераспознанное значение
// превращается в нулевое время без ошибки.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = parseTime(data)
	return nil
}

// Date хранит дату (например, срок действия купона). Полночь UTC
// сериализуется как "2006-01-02", прочие моменты как RFC 3339.
type Date struct {
	time.Time
}

// NewDate создаёт Date из момента времени.
func NewDate(t time.Time) Date {
	return Date{t}
}

// ParseDate разбирает дату в одном из поддерживаемых форматов.
func ParseDate(s string) (Date, bool) {
	t, ok := parseTimeString(s)
	return Date{t}, ok
}

// MarshalJSON реализует json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	u := d.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return json.Marshal(u.Format(time.DateOnly))
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// UnmarshalJSON реализует json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	d.Time = parseTime(data)
	return nil
}

func parseTime(data []byte) time.Time {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return time.Time{}
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return time.Time{}
		}
		t, _ := parseTimeString(s)
		return t
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StringList: список строк, который в хранилище может встретиться
// как JSON-массив или как строка со значениями через запятую.
type StringList []string

// UnmarshalJSON реализует json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitList(s)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// SplitList разбивает строку по запятым и переводам строк, отбрасывая пустые элементы.
func SplitList(s string) StringList {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	var out StringList
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
