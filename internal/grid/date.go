package grid

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the layout used for full dates.
const DateFormat = "2006-01-02"

// Date is a calendar day without time or location.
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate returns the date for year, month and day without normalizing it.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// ParseDate parses "YYYY-MM-DD" or the "YYYY-MM" shorthand. The shorthand
// yields the first day of the month and reports partial = true.
func ParseDate(s string) (d Date, partial bool, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 2 && len(parts) != 3 {
		return Date{}, false, fmt.Errorf("invalid date %q", s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, false, fmt.Errorf("invalid date %q", s)
		}
		nums[i] = n
	}

	d = Date{Year: nums[0], Month: nums[1], Day: 1}
	partial = len(nums) == 2
	if !partial {
		d.Day = nums[2]
	}
	if !d.Valid() {
		return Date{}, false, fmt.Errorf("invalid date %q", s)
	}
	return d, partial, nil
}

// DaysIn returns the number of days in month of year.
func DaysIn(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// Weekday returns the day of week of d, 0 = Sunday through 6 = Saturday.
func Weekday(d Date) int {
	return int(d.Time().Weekday())
}

// Valid reports whether d names an existing calendar day.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= DaysIn(d.Year, d.Month)
}

// Time returns d at noon UTC, which keeps formatting stable across zones.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 12, 0, 0, 0, time.UTC)
}

// Next returns the following day, rolling over month and year.
func (d Date) Next() Date {
	d.Day++
	if d.Day > DaysIn(d.Year, d.Month) {
		d.Day = 1
		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
	return d
}

// Prev returns the preceding day, rolling back month and year.
func (d Date) Prev() Date {
	d.Day--
	if d.Day < 1 {
		d.Month--
		if d.Month < 1 {
			d.Month = 12
			d.Year--
		}
		d.Day = DaysIn(d.Year, d.Month)
	}
	return d
}

// AddDays moves d by n days in either direction.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0 or +1 depending on the chronological order of d and other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmp.Compare(d.Year, other.Year)
	case d.Month != other.Month:
		return cmp.Compare(d.Month, other.Month)
	default:
		return cmp.Compare(d.Day, other.Day)
	}
}

// MonthKey returns the key of the month containing d.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year, Month: d.Month}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only full dates are accepted.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, partial, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	if partial {
		return fmt.Errorf("invalid date %q: day is missing", string(b))
	}
	*d = parsed
	return nil
}

// MonthKey identifies one calendar month.
type MonthKey struct {
	Year  int
	Month int
}

// ParseMonthKey parses "YYYY-MM" (or "YYYY-M").
func ParseMonthKey(s string) (MonthKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return MonthKey{}, fmt.Errorf("invalid month %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 || year < 1 {
		return MonthKey{}, fmt.Errorf("invalid month %q", s)
	}
	return MonthKey{Year: year, Month: month}, nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// Before reports whether k is an earlier month than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Days returns the number of days in the month.
func (k MonthKey) Days() int {
	return DaysIn(k.Year, k.Month)
}
