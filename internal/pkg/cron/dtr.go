package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
)

// maxReportedCodes caps how many unresolved device codes one log line carries.
const maxReportedCodes = 20

type DTRJobs struct {
	dtrService dtr.DTRService
	location   *time.Location
	interval   time.Duration
	now        func() time.Time
}

func NewDTRJobs(dtrService dtr.DTRService, location *time.Location, interval time.Duration) *DTRJobs {
	if location == nil {
		location = time.UTC
	}
	return &DTRJobs{
		dtrService: dtrService,
		location:   location,
		interval:   interval,
		now:        time.Now,
	}
}

func (j *DTRJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "reconcile_previous_day",
		Interval: j.interval,
		Timeout:  10 * time.Minute,
		Fn:       j.ReconcilePreviousDay,
	})
}

// ReconcilePreviousDay reconciles yesterday's punches with the phantom-row
// guard on and logs the outcome, listing device codes that matched nobody so
// HR can fix the roster before payroll cut-off.
func (j *DTRJobs) ReconcilePreviousDay(ctx context.Context) error {
	day := j.now().In(j.location).AddDate(0, 0, -1).Format("2006-01-02")

	slog.Info("Cron: Starting biometric reconciliation", "date", day)

	result, err := j.dtrService.ReconcileRange(ctx, dtr.ReconcileRequest{
		StartDate:         day,
		EndDate:           day,
		VerifyPhantomRows: true,
	})
	if err != nil {
		return fmt.Errorf("failed to reconcile %s: %w", day, err)
	}

	slog.Info("Cron: Biometric reconciliation finished",
		"date", day,
		"punches", result.Stats.TotalPunches,
		"records", result.Stats.RecordCount,
		"dropped", result.Stats.DroppedRecords,
		"unresolved", result.Stats.UnresolvedCount,
		"ambiguous", result.Stats.AmbiguousCount,
		"invalid", result.Stats.InvalidCount,
	)

	if codes := UnresolvedCodes(result.Unresolved); len(codes) > 0 {
		slog.Warn("Cron: Unresolved biometric identities", "date", day, "count", len(codes), "codes", codes)
	}
	return nil
}

// UnresolvedCodes lists the distinct device codes (or raw names when the code
// is blank) among unresolved punches, sorted and capped.
func UnresolvedCodes(punches []dtr.ResolvedPunch) []string {
	seen := make(map[string]struct{})
	for _, rp := range punches {
		code := rp.Punch.DeviceCode
		if code == "" {
			code = rp.Punch.RawName
		}
		if code == "" {
			continue
		}
		seen[code] = struct{}{}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	if len(codes) > maxReportedCodes {
		codes = codes[:maxReportedCodes]
	}
	return codes
}
