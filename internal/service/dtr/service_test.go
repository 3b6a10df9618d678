package dtr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc    dtr.DTRService
	punch  *fakePunchRepository
	roster *fakeRosterRepository
	loc    *time.Location
}

func newServiceFixture(t *testing.T, extra ...punch.RawPunch) *serviceFixture {
	t.Helper()
	loc := manilaLocation(t)
	punches := newFakePunchRepository(append(samplePunches(loc), extra...)...)
	rosterRepo := &fakeRosterRepository{employees: testRoster()}
	defaults, err := ParseBreakDefaults("12:00", "13:00")
	require.NoError(t, err)

	return &serviceFixture{
		svc:    NewDTRService(punches, rosterRepo, loc, 2, defaults),
		punch:  punches,
		roster: rosterRepo,
		loc:    loc,
	}
}

func TestDTRService_ReconcileRange(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.svc.ReconcileRange(context.Background(), dtr.ReconcileRequest{StartDate: "2024-03-04", EndDate: "2024-03-05"})
	require.NoError(t, err)

	assert.Len(t, result.Records, 3)
	assert.Len(t, result.Unresolved, 1)
	assert.Empty(t, result.Dropped)
	require.Len(t, f.punch.queries, 1)
	assert.True(t, f.punch.queries[0].From.Equal(at(f.loc, "2024-03-04", "00:00")))
	assert.True(t, f.punch.queries[0].To.Equal(at(f.loc, "2024-03-06", "00:00")))
	assert.Equal(t, []bool{false}, f.roster.calls)
}

func TestDTRService_ReconcileRange_SingleDayWindow(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.svc.ReconcileRange(context.Background(), dtr.ReconcileRequest{StartDate: "2024-03-05", EndDate: "2024-03-05"})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "2024-03-05", result.Records[0].Date)
}

func TestDTRService_ReconcileRange_VerifyDropsUncorroborated(t *testing.T) {
	f := newServiceFixture(t)
	// The second read no longer sees Jose's punches.
	f.punch.recheck = func(rows []punch.RawPunch) []punch.RawPunch {
		var out []punch.RawPunch
		for _, p := range rows {
			if p.DeviceCode != "03-0947" {
				out = append(out, p)
			}
		}
		return out
	}

	result, err := f.svc.ReconcileRange(context.Background(), dtr.ReconcileRequest{
		StartDate:         "2024-03-04",
		EndDate:           "2024-03-05",
		VerifyPhantomRows: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "emp-a", result.Records[0].EmployeeKey)
	assert.Len(t, result.Dropped, 2)
	assert.Equal(t, 1, result.Stats.RecordCount)
	assert.Equal(t, 2, result.Stats.DroppedRecords)
	assert.Len(t, result.Unresolved, 1)

	require.Len(t, f.punch.queries, 2)
	recheck := f.punch.queries[1]
	assert.Equal(t, []string{"30946", "30947", "555"}, recheck.DigitKeys)
	assert.Equal(t, []string{"jose rizal", "maria cruz", "visitor"}, recheck.NameKeys)
	assert.True(t, recheck.From.Equal(f.punch.queries[0].From))
}

func TestDTRService_ReconcileRange_VerifyKeepsCorroborated(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.svc.ReconcileRange(context.Background(), dtr.ReconcileRequest{
		StartDate:         "2024-03-04",
		EndDate:           "2024-03-05",
		VerifyPhantomRows: true,
	})
	require.NoError(t, err)
	assert.Len(t, result.Records, 3)
	assert.Empty(t, result.Dropped)
}

func TestDTRService_ReconcileRange_IncludeInactive(t *testing.T) {
	f := newServiceFixture(t, rawPunch("88-1000", "", at(manilaLocation(t), "2024-03-04", "08:00")))

	active, err := f.svc.ReconcileRange(context.Background(), dtr.ReconcileRequest{StartDate: "2024-03-04", EndDate: "2024-03-04"})
	require.NoError(t, err)
	assert.Len(t, active.Unresolved, 2)

	all, err := f.svc.ReconcileRange(context.Background(), dtr.ReconcileRequest{StartDate: "2024-03-04", EndDate: "2024-03-04", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all.Unresolved, 1)
	assert.Len(t, all.Records, len(active.Records)+1)
}

func TestDTRService_ReconcileRange_Errors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReconcileRange(ctx, dtr.ReconcileRequest{EndDate: "2024-03-04"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "start_date")

	_, err = f.svc.ReconcileRange(ctx, dtr.ReconcileRequest{StartDate: "2024-03-05", EndDate: "2024-03-04"})
	assert.ErrorIs(t, err, dtr.ErrInvalidDateRange)

	_, err = f.svc.ReconcileRange(ctx, dtr.ReconcileRequest{StartDate: "2024-01-01", EndDate: "2025-01-02"})
	assert.ErrorIs(t, err, dtr.ErrDateRangeTooLong)

	_, err = f.svc.ReconcileRange(ctx, dtr.ReconcileRequest{StartDate: "2024-01-01", EndDate: "2025-01-01"})
	assert.NoError(t, err)

	f.roster.err = errors.New("roster offline")
	_, err = f.svc.ReconcileRange(ctx, dtr.ReconcileRequest{StartDate: "2024-03-04", EndDate: "2024-03-04"})
	assert.ErrorContains(t, err, "roster offline")

	f.roster.err = nil
	f.punch.err = errors.New("punch store offline")
	_, err = f.svc.ReconcileRange(ctx, dtr.ReconcileRequest{StartDate: "2024-03-04", EndDate: "2024-03-04"})
	assert.ErrorContains(t, err, "punch store offline")
}

func TestDTRService_AttendanceReport(t *testing.T) {
	loc := manilaLocation(t)
	f := newServiceFixture(t,
		rawPunch("1234567", "", at(loc, "2024-03-04", "08:00")),
		rawPunch("1234567", "", at(loc, "2024-03-04", "17:00")),
	)

	req := dtr.ReconcileRequest{StartDate: "2024-03-04", EndDate: "2024-03-05"}
	plain, err := f.svc.AttendanceReport(context.Background(), req)
	require.NoError(t, err)

	req.FillBreaks = true
	filled, err := f.svc.AttendanceReport(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, plain.Records, 4)
	require.Len(t, filled.Records, 4)

	byName := func(rows []dtr.AttendanceRow, name, date string) dtr.AttendanceRow {
		for _, row := range rows {
			if row.EmployeeName == name && row.Date == date {
				return row
			}
		}
		t.Fatalf("row %s %s not found", name, date)
		return dtr.AttendanceRow{}
	}

	ana := byName(plain.Records, "Ana Santos", "2024-03-04")
	assert.Nil(t, ana.BreakOut)
	assert.False(t, ana.BreaksDefaulted)

	ana = byName(filled.Records, "Ana Santos", "2024-03-04")
	require.NotNil(t, ana.BreakOut)
	assert.Equal(t, "12:00", *ana.BreakOut)
	assert.Equal(t, "13:00", *ana.BreakIn)
	assert.True(t, ana.BreaksDefaulted)

	maria := byName(filled.Records, "Maria Cruz", "2024-03-04")
	assert.Equal(t, "12:01", *maria.BreakOut)
	assert.False(t, maria.BreaksDefaulted)

	jose := byName(filled.Records, "Jose Rizal", "2024-03-04")
	assert.Equal(t, "08:10", *jose.TimeIn)
	assert.Nil(t, jose.BreakOut)
	assert.Nil(t, jose.TimeOut)

	require.Len(t, filled.Unresolved, 1)
	assert.Equal(t, "555", filled.Unresolved[0].DeviceCode)
	assert.Equal(t, "2024-03-04T09:00:00+08:00", filled.Unresolved[0].Timestamp)
	assert.Equal(t, "2024-03-04", filled.StartDate)
}

func TestDTRService_ResolveIdentity(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.svc.ResolveIdentity(context.Background(), dtr.ResolveRequest{DeviceCode: "30946"})
	require.NoError(t, err)
	require.NotNil(t, resp.EmployeeKey)
	assert.Equal(t, "emp-a", *resp.EmployeeKey)
	assert.Equal(t, "03-0946", *resp.EmployeeID)
	assert.Equal(t, "Maria Cruz", resp.EmployeeName)
	assert.Equal(t, dtr.MatchExactDigit, resp.Confidence)
	assert.Equal(t, "30946", resp.DigitKey)

	resp, err = f.svc.ResolveIdentity(context.Background(), dtr.ResolveRequest{DeviceCode: "555", Name: "Visitor"})
	require.NoError(t, err)
	assert.Nil(t, resp.EmployeeKey)
	assert.Equal(t, dtr.UnknownEmployeeName, resp.EmployeeName)
	assert.Equal(t, "visitor", resp.NameKey)
}

func TestDTRService_SegmentDay(t *testing.T) {
	f := newServiceFixture(t)

	resp, err := f.svc.SegmentDay(context.Background(), dtr.SegmentRequest{Timestamps: []string{
		"2024-03-04T17:10:00+08:00",
		"2024-03-04T07:55:00+08:00",
		"2024-03-04T04:01:00Z",
		"2024-03-04T12:58:00+08:00",
	}})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, "07:55", *resp.TimeIn)
	assert.Equal(t, "12:01", *resp.BreakOut)
	assert.Equal(t, "12:58", *resp.BreakIn)
	assert.Equal(t, "17:10", *resp.TimeOut)
	assert.Equal(t, 4, resp.SourcePunchCount)

	_, err = f.svc.SegmentDay(context.Background(), dtr.SegmentRequest{Timestamps: []string{
		"2024-03-04T07:55:00+08:00",
		"2024-03-05T07:55:00+08:00",
	}})
	assert.ErrorIs(t, err, dtr.ErrPunchesSpanManyDays)

	_, err = f.svc.SegmentDay(context.Background(), dtr.SegmentRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
