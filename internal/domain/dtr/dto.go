package dtr

import (
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/validator"
)

// ========================================
// RESOLVE
// ========================================

type ResolveRequest struct {
	DeviceCode string `json:"device_code"`
	Name       string `json:"name"`
}

type ResolveResponse struct {
	DigitKey     string          `json:"digit_key"`
	NameKey      string          `json:"name_key"`
	EmployeeKey  *string         `json:"employee_key,omitempty"`
	EmployeeID   *string         `json:"employee_id,omitempty"`
	EmployeeName string          `json:"employee_name"`
	Confidence   MatchConfidence `json:"confidence"`
	Ambiguous    bool            `json:"ambiguous"`
	Candidates   int             `json:"candidates"`
}

// ========================================
// SEGMENT
// ========================================

type SegmentRequest struct {
	Timestamps []string `json:"timestamps"`

	// Parsed by Validate.
	Instants []time.Time `json:"-"`
}

func (r *SegmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Timestamps) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamps",
			Message: "at least one timestamp is required",
		})
	}

	r.Instants = r.Instants[:0]
	for _, raw := range r.Timestamps {
		t, ok := validator.IsValidDateTime(raw)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamps",
				Message: "invalid timestamp format, use RFC3339: " + raw,
			})
			continue
		}
		r.Instants = append(r.Instants, t)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SegmentResponse struct {
	Date             string  `json:"date"`
	TimeIn           *string `json:"time_in"`
	BreakOut         *string `json:"break_out"`
	BreakIn          *string `json:"break_in"`
	TimeOut          *string `json:"time_out"`
	SourcePunchCount int     `json:"source_punch_count"`
}

// ========================================
// RECONCILE
// ========================================

type ReconcileRequest struct {
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	EmployeeIDs       []string `json:"employee_ids,omitempty"`
	VerifyPhantomRows bool     `json:"verify_phantom_rows"`
	IncludeInactive   bool     `json:"include_inactive"`
	FillBreaks        bool     `json:"fill_breaks"`
}

func (r *ReconcileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "invalid date format, use YYYY-MM-DD",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "invalid date format, use YYYY-MM-DD",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Window returns the half-open instant range [start 00:00, end+1 00:00) in loc.
// Call Validate first; ordering problems are reported as ErrInvalidDateRange.
func (r *ReconcileRequest) Window(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", r.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation("2006-01-02", r.EndDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if end.Sub(start) > 366*24*time.Hour {
		return time.Time{}, time.Time{}, ErrDateRangeTooLong
	}
	return start, end.AddDate(0, 0, 1), nil
}

type AttendanceRow struct {
	EmployeeKey      string  `json:"employee_key"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     string  `json:"employee_name"`
	Date             string  `json:"date"`
	TimeIn           *string `json:"time_in"`
	BreakOut         *string `json:"break_out"`
	BreakIn          *string `json:"break_in"`
	TimeOut          *string `json:"time_out"`
	BreaksDefaulted  bool    `json:"breaks_defaulted"`
	SourcePunchCount int     `json:"source_punch_count"`
}

type UnresolvedPunchResponse struct {
	DeviceCode string `json:"device_code"`
	RawName    string `json:"raw_name"`
	DigitKey   string `json:"digit_key"`
	NameKey    string `json:"name_key"`
	Timestamp  string `json:"timestamp"`
	Ambiguous  bool   `json:"ambiguous"`
	Candidates int    `json:"candidates"`
}

type ReconcileResponse struct {
	StartDate  string                    `json:"start_date"`
	EndDate    string                    `json:"end_date"`
	Records    []AttendanceRow           `json:"records"`
	Unresolved []UnresolvedPunchResponse `json:"unresolved"`
	Invalid    []punch.InvalidRow        `json:"invalid"`
	Stats      ReconcileStats            `json:"stats"`
}
