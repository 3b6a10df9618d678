package dtr

import "errors"

var (
	ErrInvalidDateRange    = errors.New("date range end must not be before its start")
	ErrDateRangeTooLong    = errors.New("date range must not exceed 366 days")
	ErrNoPunches           = errors.New("at least one punch timestamp is required")
	ErrPunchesSpanManyDays = errors.New("punches must fall on the same calendar day")
	ErrNilRosterIndex      = errors.New("roster index is required")
)
