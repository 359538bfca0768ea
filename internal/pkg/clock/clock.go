// Package clock holds the wall-clock and duration helpers shared by the
// timesheet domain: times of day without a date, "HH:MM" hour quantities and
// the signed duration formats used for display and export.
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:MM")
	ErrInvalidHours     = errors.New("invalid hours, expected HH:MM")
)

// TimeOfDay is a wall-clock time stored as seconds since midnight.
type TimeOfDay int32

const secondsPerDay = 24 * 60 * 60

// New builds a TimeOfDay from hour and minute. Out of range values wrap.
func New(hour, minute int) TimeOfDay {
	s := (hour*3600 + minute*60) % secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	return TimeOfDay(s)
}

// Parse accepts "H:MM", "HH:MM" and "HH:MM:SS".
func Parse(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

// MustParse is Parse for literals; it panics on malformed input.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FromTime drops the date part of t.
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// FromMicroseconds converts the representation used by PostgreSQL TIME columns.
func FromMicroseconds(us int64) TimeOfDay {
	return TimeOfDay((us / 1_000_000) % secondsPerDay)
}

func (t TimeOfDay) Microseconds() int64 { return int64(t) * 1_000_000 }

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// Duration is the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// On places t on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, date.Location())
}

func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

var hoursRegex = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// ParseHours reads an "HH:MM" quantity of hours such as a leave request
// length. Minutes must be below 60.
func ParseHours(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if !hoursRegex.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHours, s)
	}
	h, m, _ := strings.Cut(s, ":")
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	if minutes >= 60 {
		return 0, fmt.Errorf("%w: minutes must be below 60", ErrInvalidHours)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// FormatSigned renders d as "[-]H:MM", the way balances are shown to people.
func FormatSigned(d time.Duration) string {
	sign, h, m, _ := split(d)
	return fmt.Sprintf("%s%d:%02d", sign, h, m)
}

// FormatHMS renders d as "[-]HH:MM:SS". Hours are not capped at 24.
func FormatHMS(d time.Duration) string {
	sign, h, m, s := split(d)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

func split(d time.Duration) (sign string, h, m, s int64) {
	total := int64(d / time.Second)
	if total < 0 {
		sign = "-"
		total = -total
	}
	return sign, total / 3600, total % 3600 / 60, total % 60
}
