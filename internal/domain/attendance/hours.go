package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

// Policy is the fixed set of working-time rules. It is built once at startup
// and passed by value to whoever needs it.
type Policy struct {
	// OfficialStart is the earliest credited time; earlier punches are clamped.
	OfficialStart clock.TimeOfDay
	// LunchDeduction is removed from days whose gross time reaches LunchThreshold.
	LunchDeduction time.Duration
	LunchThreshold time.Duration
	// StandardShift is the net time that yields a zero overtime delta.
	StandardShift time.Duration
	// ForcedExitTime is stored as the exit of days that never got a clock-out.
	ForcedExitTime clock.TimeOfDay
}

func DefaultPolicy() Policy {
	return Policy{
		OfficialStart:  clock.New(7, 0),
		LunchDeduction: 30 * time.Minute,
		LunchThreshold: 6 * time.Hour,
		StandardShift:  9*time.Hour + 30*time.Minute,
		ForcedExitTime: clock.New(17, 0),
	}
}

func (p Policy) Validate() error {
	switch {
	case p.LunchDeduction < 0:
		return fmt.Errorf("%w: lunch deduction must not be negative", ErrInvalidPolicy)
	case p.LunchThreshold < p.LunchDeduction:
		return fmt.Errorf("%w: lunch threshold must be at least the lunch deduction", ErrInvalidPolicy)
	case p.StandardShift <= 0 || p.StandardShift > 24*time.Hour:
		return fmt.Errorf("%w: standard shift must be between 0 and 24h", ErrInvalidPolicy)
	}
	return nil
}

// DayHours is the outcome of one computed day.
type DayHours struct {
	EffectiveEntry clock.TimeOfDay
	Gross          time.Duration
	Net            time.Duration
	OvertimeDelta  time.Duration
	LunchDeducted  bool
	Overnight      bool
	// ZeroLength marks entry == exit after clamping. Such a day is charged as
	// a fully missed shift.
	ZeroLength bool
}

// ComputeDayHours turns one day's punches into net worked time and the signed
// overtime delta against the standard shift. It has no side effects.
func (p Policy) ComputeDayHours(workDate time.Time, entry, exit clock.TimeOfDay) DayHours {
	effective := entry
	if effective < p.OfficialStart {
		effective = p.OfficialStart
	}

	start := effective.On(workDate)
	end := exit.On(workDate)

	res := DayHours{EffectiveEntry: effective}
	if !end.After(start) {
		if end.Equal(start) {
			res.ZeroLength = true
			res.OvertimeDelta = -p.StandardShift
			return res
		}
		end = end.AddDate(0, 0, 1)
		res.Overnight = true
	}

	res.Gross = end.Sub(start)
	res.Net = res.Gross
	if res.Gross >= p.LunchThreshold {
		res.Net -= p.LunchDeduction
		res.LunchDeducted = true
	}
	if res.Net < 0 {
		res.Net = 0
	}
	res.OvertimeDelta = res.Net - p.StandardShift
	return res
}
