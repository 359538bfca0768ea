package clock

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  TimeOfDay
	}{
		{"07:00", New(7, 0)},
		{"7:05", New(7, 5)},
		{" 18:30 ", New(18, 30)},
		{"23:59:59", TimeOfDay(23*3600 + 59*60 + 59)},
		{"00:00", 0},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		if err != nil {
			t.Errorf("Parse(%q) returned error %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.input, got, c.want)
		}
	}

	invalid := []string{"", "24:00", "12:60", "noon", "1230", "12:5"}
	for _, s := range invalid {
		if _, err := Parse(s); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidTimeOfDay", s, err)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	cases := []struct {
		input TimeOfDay
		want  string
	}{
		{New(7, 0), "07:00"},
		{New(17, 45), "17:45"},
		{TimeOfDay(8*3600 + 15), "08:00:15"},
	}
	for _, c := range cases {
		if got := c.input.String(); got != c.want {
			t.Errorf("%d.String() = %q, want %q", int32(c.input), got, c.want)
		}
	}
}

func TestTimeOfDayOn(t *testing.T) {
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	got := New(9, 15).On(date)
	want := time.Date(2024, time.March, 1, 9, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
}

func TestMicrosecondsRoundTrip(t *testing.T) {
	tod := New(13, 37)
	if got := FromMicroseconds(tod.Microseconds()); got != tod {
		t.Errorf("FromMicroseconds(Microseconds()) = %v, want %v", got, tod)
	}
}

func TestParseHours(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"08:00", 8 * time.Hour},
		{"1:30", 90 * time.Minute},
		{"00:00", 0},
		{"12:05", 12*time.Hour + 5*time.Minute},
	}
	for _, c := range cases {
		got, err := ParseHours(c.input)
		if err != nil {
			t.Errorf("ParseHours(%q) returned error %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseHours(%q) = %v, want %v", c.input, got, c.want)
		}
	}

	invalid := []string{"", "8", "8h", "08:60", "123:00", "-1:00", "08:5"}
	for _, s := range invalid {
		if _, err := ParseHours(s); !errors.Is(err, ErrInvalidHours) {
			t.Errorf("ParseHours(%q) error = %v, want ErrInvalidHours", s, err)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	cases := []struct {
		input time.Duration
		want  string
	}{
		{0, "0:00"},
		{9*time.Hour + 30*time.Minute, "9:30"},
		{-3 * time.Hour, "-3:00"},
		{-45 * time.Minute, "-0:45"},
		{125 * time.Hour, "125:00"},
	}
	for _, c := range cases {
		if got := FormatSigned(c.input); got != c.want {
			t.Errorf("FormatSigned(%v) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestFormatHMS(t *testing.T) {
	cases := []struct {
		input time.Duration
		want  string
	}{
		{0, "00:00:00"},
		{8*time.Hour + 30*time.Minute, "08:30:00"},
		{-time.Hour, "-01:00:00"},
		{30*time.Hour + 5*time.Second, "30:00:05"},
	}
	for _, c := range cases {
		if got := FormatHMS(c.input); got != c.want {
			t.Errorf("FormatHMS(%v) = %q, want %q", c.input, got, c.want)
		}
	}
}
