package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidPolicy      = errors.New("invalid working-time policy")
)
