package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout формат календарной даты ISO-8601
const DateLayout = "2006-01-02"

// Date календарная дата без времени, сериализуется как "YYYY-MM-DD"
type Date struct {
	time.Time
}

// NewDate создает дату в UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf обрезает время до календарного дня
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate принимает "YYYY-MM-DD" или RFC 3339
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddMonths сдвигает дату на n календарных месяцев.
// День месяца сохраняется, если он существует, иначе берется последний день.
func AddMonths(d Date, n int) Date {
	y, m, day := d.Date()
	total := int(m) - 1 + n
	year := y + floorDiv(total, 12)
	month := time.Month(total-floorDiv(total, 12)*12 + 1)
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// AddDays сдвигает дату на n дней
func AddDays(d Date, n int) Date {
	return DateOf(d.AddDate(0, 0, n))
}

// DaysInMonth возвращает количество дней в месяце
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthsBetween возвращает число полных календарных месяцев от from до to.
// Отрицательное, если to раньше from.
func MonthsBetween(from, to Date) int {
	if to.Before(from.Time) {
		return -MonthsBetween(to, from)
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if AddMonths(from, months).After(to.Time) {
		months--
	}
	return months
}

// DaysBetween возвращает число дней от from до to
func DaysBetween(from, to Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
