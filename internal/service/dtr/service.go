package dtr

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
)

type DTRServiceImpl struct {
	punch.PunchRepository
	roster.RosterRepository
	location      *time.Location
	workers       int
	breakDefaults BreakDefaults
}

func NewDTRService(
	punchRepo punch.PunchRepository,
	rosterRepo roster.RosterRepository,
	location *time.Location,
	workers int,
	breakDefaults BreakDefaults,
) dtr.DTRService {
	if location == nil {
		location = time.UTC
	}
	return &DTRServiceImpl{
		PunchRepository:  punchRepo,
		RosterRepository: rosterRepo,
		location:         location,
		workers:          workers,
		breakDefaults:    breakDefaults,
	}
}

// loadIndex builds a fresh roster index for one batch.
func (s *DTRServiceImpl) loadIndex(ctx context.Context, includeInactive bool) (*RosterIndex, error) {
	employees, err := s.RosterRepository.ListEmployees(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	idx := NewRosterIndex(employees)
	if idx.Len() == 0 {
		slog.Warn("Roster index is empty, every punch will be unresolved", "include_inactive", includeInactive)
	}
	return idx, nil
}

// ResolveIdentity implements dtr.DTRService.
func (s *DTRServiceImpl) ResolveIdentity(ctx context.Context, req dtr.ResolveRequest) (dtr.ResolveResponse, error) {
	idx, err := s.loadIndex(ctx, false)
	if err != nil {
		return dtr.ResolveResponse{}, err
	}

	digitKey := NormalizeDigits(req.DeviceCode)
	nameKey := NormalizeName(req.Name)
	res := ResolveKeys(idx, digitKey, nameKey)

	resp := dtr.ResolveResponse{
		DigitKey:     digitKey,
		NameKey:      nameKey,
		EmployeeName: res.DisplayName(),
		Confidence:   res.Confidence,
		Ambiguous:    res.Ambiguous,
		Candidates:   res.Candidates,
	}
	if res.Resolved() {
		key := res.Identity.Key()
		employeeID := res.Identity.EmployeeID
		resp.EmployeeKey = &key
		resp.EmployeeID = &employeeID
	}
	return resp, nil
}

// SegmentDay implements dtr.DTRService.
func (s *DTRServiceImpl) SegmentDay(ctx context.Context, req dtr.SegmentRequest) (dtr.SegmentResponse, error) {
	if err := req.Validate(); err != nil {
		return dtr.SegmentResponse{}, err
	}
	if len(req.Instants) == 0 {
		return dtr.SegmentResponse{}, dtr.ErrNoPunches
	}

	date := req.Instants[0].In(s.location).Format("2006-01-02")
	for _, t := range req.Instants[1:] {
		if t.In(s.location).Format("2006-01-02") != date {
			return dtr.SegmentResponse{}, dtr.ErrPunchesSpanManyDays
		}
	}

	seg := SegmentDay(req.Instants, s.location)
	return dtr.SegmentResponse{
		Date:             date,
		TimeIn:           clockPtr(seg.TimeIn, s.location),
		BreakOut:         clockPtr(seg.BreakOut, s.location),
		BreakIn:          clockPtr(seg.BreakIn, s.location),
		TimeOut:          clockPtr(seg.TimeOut, s.location),
		SourcePunchCount: seg.SourcePunchCount,
	}, nil
}

// ReconcileRange implements dtr.DTRService.
func (s *DTRServiceImpl) ReconcileRange(ctx context.Context, req dtr.ReconcileRequest) (dtr.ReconcileResult, error) {
	if err := req.Validate(); err != nil {
		return dtr.ReconcileResult{}, err
	}
	from, to, err := req.Window(s.location)
	if err != nil {
		return dtr.ReconcileResult{}, err
	}

	idx, err := s.loadIndex(ctx, req.IncludeInactive)
	if err != nil {
		return dtr.ReconcileResult{}, err
	}

	punches, err := s.PunchRepository.Query(ctx, punch.PunchFilter{From: from, To: to})
	if err != nil {
		return dtr.ReconcileResult{}, fmt.Errorf("failed to query punches: %w", err)
	}

	result, err := Reconcile(idx, punches, ReconcileOptions{
		Location:    s.location,
		Workers:     s.workers,
		EmployeeIDs: req.EmployeeIDs,
	})
	if err != nil {
		return dtr.ReconcileResult{}, err
	}

	if req.VerifyPhantomRows && len(result.Records) > 0 {
		filter := corroborationFilter(idx, result.Records, punches, from, to)
		corroborating, err := s.PunchRepository.Query(ctx, filter)
		if err != nil {
			return dtr.ReconcileResult{}, fmt.Errorf("failed to query corroborating punches: %w", err)
		}
		result.Records, result.Dropped = VerifyRecords(idx, result.Records, corroborating, s.location)
		result.Stats.RecordCount = len(result.Records)
		result.Stats.DroppedRecords = len(result.Dropped)
		if len(result.Dropped) > 0 {
			slog.Warn("Dropped attendance rows without corroborating punches",
				"dropped", len(result.Dropped), "start_date", req.StartDate, "end_date", req.EndDate)
		}
	}

	slog.Info("Reconciled biometric punches",
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"punches", result.Stats.TotalPunches,
		"records", result.Stats.RecordCount,
		"unresolved", result.Stats.UnresolvedCount,
		"invalid", result.Stats.InvalidCount,
	)
	return result, nil
}

// AttendanceReport implements dtr.DTRService.
func (s *DTRServiceImpl) AttendanceReport(ctx context.Context, req dtr.ReconcileRequest) (dtr.ReconcileResponse, error) {
	result, err := s.ReconcileRange(ctx, req)
	if err != nil {
		return dtr.ReconcileResponse{}, err
	}

	resp := dtr.ReconcileResponse{
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Records:    make([]dtr.AttendanceRow, 0, len(result.Records)),
		Unresolved: make([]dtr.UnresolvedPunchResponse, 0, len(result.Unresolved)),
		Invalid:    result.Invalid,
		Stats:      result.Stats,
	}
	for _, rec := range result.Records {
		defaulted := false
		if req.FillBreaks {
			rec, defaulted = s.breakDefaults.Apply(rec, s.location)
		}
		resp.Records = append(resp.Records, s.mapRecordToRow(rec, defaulted))
	}
	for _, rp := range result.Unresolved {
		resp.Unresolved = append(resp.Unresolved, dtr.UnresolvedPunchResponse{
			DeviceCode: rp.Punch.DeviceCode,
			RawName:    rp.Punch.RawName,
			DigitKey:   rp.Punch.DigitKey,
			NameKey:    rp.Punch.NameKey,
			Timestamp:  rp.Punch.Timestamp.In(s.location).Format(time.RFC3339),
			Ambiguous:  rp.Ambiguous,
			Candidates: rp.Candidates,
		})
	}
	return resp, nil
}

func (s *DTRServiceImpl) mapRecordToRow(rec dtr.DailyAttendanceRecord, breaksDefaulted bool) dtr.AttendanceRow {
	return dtr.AttendanceRow{
		EmployeeKey:      rec.EmployeeKey,
		EmployeeID:       rec.EmployeeID,
		EmployeeName:     rec.EmployeeName,
		Date:             rec.Date,
		TimeIn:           clockPtr(rec.TimeIn, s.location),
		BreakOut:         clockPtr(rec.BreakOut, s.location),
		BreakIn:          clockPtr(rec.BreakIn, s.location),
		TimeOut:          clockPtr(rec.TimeOut, s.location),
		BreaksDefaulted:  breaksDefaulted,
		SourcePunchCount: rec.SourcePunchCount,
	}
}

// corroborationFilter asks the punch store for every row in the window that
// carries a digit or name key seen in this run or belonging to a record's employee.
func corroborationFilter(idx *RosterIndex, records []dtr.DailyAttendanceRecord, punches []punch.RawPunch, from, to time.Time) punch.PunchFilter {
	digitKeys := make(map[string]struct{})
	nameKeys := make(map[string]struct{})

	employees := make(map[string]struct{}, len(records))
	for _, rec := range records {
		employees[rec.EmployeeKey] = struct{}{}
	}
	for _, emp := range idx.employees {
		if _, ok := employees[emp.Key()]; !ok {
			continue
		}
		for _, key := range digitKeysOf(emp) {
			digitKeys[key] = struct{}{}
		}
		if emp.NormalizedName != "" {
			nameKeys[emp.NormalizedName] = struct{}{}
		}
	}
	for _, p := range punches {
		p = withKeys(p)
		if p.DigitKey != "" {
			digitKeys[p.DigitKey] = struct{}{}
		}
		if p.NameKey != "" {
			nameKeys[p.NameKey] = struct{}{}
		}
	}

	return punch.PunchFilter{
		DigitKeys: sortedKeys(digitKeys),
		NameKeys:  sortedKeys(nameKeys),
		From:      from,
		To:        to,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clockPtr formats t as local "HH:MM", or nil.
func clockPtr(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format("15:04")
	return &s
}
