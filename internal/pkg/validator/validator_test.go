package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidDateRange(t *testing.T) {
	if _, _, ok := IsValidDateRange("2024-03-01", "2024-03-31"); !ok {
		t.Errorf("IsValidDateRange(2024-03-01, 2024-03-31) = false, want true")
	}
	if _, _, ok := IsValidDateRange("2024-03-01", "2024-03-01"); !ok {
		t.Errorf("IsValidDateRange on a single day = false, want true")
	}
	invalid := [][2]string{
		{"2024-03-31", "2024-03-01"},
		{"2024-03-01", ""},
		{"", "2024-03-01"},
	}
	for _, r := range invalid {
		if _, _, ok := IsValidDateRange(r[0], r[1]); ok {
			t.Errorf("IsValidDateRange(%q, %q) = true, want false", r[0], r[1])
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"admin", "j.garcia", "rrhh_2024", "ana-belen"}
	invalid := []string{"ab", "", "with space", "ñandu", "this-username-is-way-too-long-to-be-accepted-by-the-check"}
	for _, u := range valid {
		if !IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = true, want false", u)
		}
	}
}

func TestIsValidAffiliationNumber(t *testing.T) {
	valid := []string{"1", "281234567890"}
	invalid := []string{"", "28-1234", "12345678901234567890123", "abc"}
	for _, n := range valid {
		if !IsValidAffiliationNumber(n) {
			t.Errorf("IsValidAffiliationNumber(%q) = false, want true", n)
		}
	}
	for _, n := range invalid {
		if IsValidAffiliationNumber(n) {
			t.Errorf("IsValidAffiliationNumber(%q) = true, want false", n)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0190f5a2-7c3e-7b21-9d4f-2a6b8c0e1f34",
		"550E8400-E29B-41D4-A716-446655440000",
	}
	invalid := []string{"", "abc", "123", "550e8400e29b41d4a716446655440000", "550e8400-e29b-41d4-a716-44665544000g"}
	for _, s := range valid {
		if !IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidUUID(s) {
			t.Errorf("IsValidUUID(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "entry", Message: "invalid"},
		{Field: "hours", Message: "required"},
	}
	got := errs.Error()
	want := "entry: invalid; hours: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "entry", Message: "invalid"},
		{Field: "hours", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"entry": "invalid", "hours": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() = %v, want nil", errs.Err())
	}
	errs.Add("date", "is required")
	if errs.Err() == nil {
		t.Errorf("ValidationErrors.Err() = nil after Add, want error")
	}
}

func TestIsValidPassword(t *testing.T) {
	if IsValidPassword("short") {
		t.Errorf("IsValidPassword(short) = true, want false")
	}
	if !IsValidPassword("contraseña") {
		t.Errorf("IsValidPassword(contraseña) = false, want true")
	}
}

func TestParseYearMonth(t *testing.T) {
	now := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

	y, m, errs := ParseYearMonth("", "", now)
	if len(errs) != 0 || y != 2024 || m != time.May {
		t.Errorf("ParseYearMonth defaults = %d-%d %v, want 2024-5", y, m, errs)
	}

	y, m, errs = ParseYearMonth("2023", "2", now)
	if len(errs) != 0 || y != 2023 || m != time.February {
		t.Errorf("ParseYearMonth(2023, 2) = %d-%d %v", y, m, errs)
	}

	_, _, errs = ParseYearMonth("abc", "13", now)
	got := errs.ToMap()
	if _, ok := got["year"]; !ok {
		t.Errorf("ParseYearMonth(abc, 13) missing year error: %v", got)
	}
	if _, ok := got["month"]; !ok {
		t.Errorf("ParseYearMonth(abc, 13) missing month error: %v", got)
	}
}
