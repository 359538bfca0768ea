package validator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when no error was collected, so callers can `return errs.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Record ids are UUIDs of any version; rows created before v7 ids keep theirs.
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(strings.ToLower(id))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidDateRange parses both bounds and checks start is not after end.
func IsValidDateRange(start, end string) (time.Time, time.Time, bool) {
	s, okStart := IsValidDate(start)
	e, okEnd := IsValidDate(end)
	if !okStart || !okEnd || s.After(e) {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}

func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

// Username validation: 3-50 chars, A-Z, a-z, 0-9, ., _, -
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)

func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// Affiliation numbers printed by punch clocks are plain digit runs.
func IsValidAffiliationNumber(number string) bool {
	if number == "" || len(number) > 20 {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

const MinPasswordLength = 8

func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// ParseYearMonth reads optional year and month query values. Empty values
// keep the fallback; the returned errors are keyed by field.
func ParseYearMonth(year, month string, fallback time.Time) (int, time.Month, ValidationErrors) {
	var errs ValidationErrors
	y, m := fallback.Year(), fallback.Month()
	if year != "" {
		n, err := strconv.Atoi(year)
		if err != nil || n < 1970 || n > 9999 {
			errs.Add("year", "year must be a valid number")
		}
		y = n
	}
	if month != "" {
		n, err := strconv.Atoi(month)
		if err != nil || n < 1 || n > 12 {
			errs.Add("month", "month must be between 1 and 12")
		}
		m = time.Month(n)
	}
	return y, m, errs
}
