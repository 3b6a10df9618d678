package dtr

import (
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
)

// UnknownEmployeeName labels punches that could not be matched to a roster member.
// It is a display label only and never a roster identity.
const UnknownEmployeeName = "Unknown Employee"

type MatchConfidence string

const (
	MatchExactDigit  MatchConfidence = "exact-digit"
	MatchSuffixDigit MatchConfidence = "suffix-digit"
	MatchName        MatchConfidence = "name-match"
	MatchUnresolved  MatchConfidence = "unresolved"
)

// Resolution is the outcome of matching one device code / name pair against the roster.
// Identity is nil when the match is unresolved, including the ambiguous case.
type Resolution struct {
	Identity   *roster.EmployeeIdentity
	Confidence MatchConfidence
	Ambiguous  bool
	Candidates int
}

func (r Resolution) Resolved() bool {
	return r.Identity != nil
}

// DisplayName returns the matched employee's name or the unknown label.
func (r Resolution) DisplayName() string {
	if r.Identity == nil {
		return UnknownEmployeeName
	}
	return r.Identity.FullName
}

type ResolvedPunch struct {
	Punch punch.RawPunch
	Resolution
}

// DailyAttendanceRecord is the segmented attendance of one employee on one local calendar day.
type DailyAttendanceRecord struct {
	EmployeeKey      string
	EmployeeID       string
	EmployeeName     string
	Date             string
	TimeIn           *time.Time
	BreakOut         *time.Time
	BreakIn          *time.Time
	TimeOut          *time.Time
	SourcePunchCount int
}

// HasAnyPunch reports whether at least one of the four fields is set.
func (r DailyAttendanceRecord) HasAnyPunch() bool {
	return r.TimeIn != nil || r.BreakOut != nil || r.BreakIn != nil || r.TimeOut != nil
}

type ReconcileStats struct {
	TotalPunches     int `json:"total_punches"`
	ResolvedPunches  int `json:"resolved_punches"`
	UnresolvedCount  int `json:"unresolved_punches"`
	AmbiguousCount   int `json:"ambiguous_punches"`
	InvalidCount     int `json:"invalid_punches"`
	RecordCount      int `json:"records"`
	DroppedRecords   int `json:"dropped_records"`
	ExactDigitCount  int `json:"exact_digit_matches"`
	SuffixDigitCount int `json:"suffix_digit_matches"`
	NameMatchCount   int `json:"name_matches"`
}

type ReconcileResult struct {
	Records    []DailyAttendanceRecord
	Unresolved []ResolvedPunch
	Invalid    []punch.InvalidRow
	Dropped    []DailyAttendanceRecord
	Stats      ReconcileStats
}
