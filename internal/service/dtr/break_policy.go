package dtr

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/validator"
)

// BreakDefaults is the presentation policy that fills blank break fields with
// fixed clock times on days the employee both timed in and timed out. It is
// applied to report rows only; segmented records keep their blanks.
type BreakDefaults struct {
	BreakOutHour, BreakOutMinute int
	BreakInHour, BreakInMinute   int
}

// ParseBreakDefaults reads two "HH:MM" clock values.
func ParseBreakDefaults(breakOut, breakIn string) (BreakDefaults, error) {
	if !validator.IsValidClock(breakOut) {
		return BreakDefaults{}, fmt.Errorf("invalid break-out default %q, use HH:MM", breakOut)
	}
	if !validator.IsValidClock(breakIn) {
		return BreakDefaults{}, fmt.Errorf("invalid break-in default %q, use HH:MM", breakIn)
	}

	out, err := time.Parse("15:04", breakOut)
	if err != nil {
		return BreakDefaults{}, fmt.Errorf("invalid break-out default %q: %w", breakOut, err)
	}
	in, err := time.Parse("15:04", breakIn)
	if err != nil {
		return BreakDefaults{}, fmt.Errorf("invalid break-in default %q: %w", breakIn, err)
	}
	return BreakDefaults{
		BreakOutHour:   out.Hour(),
		BreakOutMinute: out.Minute(),
		BreakInHour:    in.Hour(),
		BreakInMinute:  in.Minute(),
	}, nil
}

// Apply returns a copy of rec with blank breaks filled, and whether anything was filled.
func (d BreakDefaults) Apply(rec dtr.DailyAttendanceRecord, loc *time.Location) (dtr.DailyAttendanceRecord, bool) {
	if rec.TimeIn == nil || rec.TimeOut == nil {
		return rec, false
	}
	if rec.BreakOut != nil && rec.BreakIn != nil {
		return rec, false
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", rec.Date, loc)
	if err != nil {
		return rec, false
	}

	if rec.BreakOut == nil {
		t := time.Date(day.Year(), day.Month(), day.Day(), d.BreakOutHour, d.BreakOutMinute, 0, 0, loc)
		rec.BreakOut = &t
	}
	if rec.BreakIn == nil {
		t := time.Date(day.Year(), day.Month(), day.Day(), d.BreakInHour, d.BreakInMinute, 0, 0, loc)
		rec.BreakIn = &t
	}
	return rec, true
}
