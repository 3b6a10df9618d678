package dtr

import (
	"runtime"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
	"golang.org/x/sync/errgroup"
)

const reasonMalformedTimestamp = "malformed timestamp"

// ReconcileOptions tunes one in-memory reconciliation run.
type ReconcileOptions struct {
	Location *time.Location
	// Workers bounds concurrent day segmentation. Zero means GOMAXPROCS.
	Workers int
	// EmployeeIDs restricts the produced records to these employees, matched
	// against the roster key or the organization-issued employee ID.
	EmployeeIDs []string
}

// dayGroup is every resolved punch of one employee on one local day.
type dayGroup struct {
	identity *roster.EmployeeIdentity
	date     string
	times    []time.Time
}

// Reconcile resolves punches against idx, groups them per employee and local
// day, and segments every group. Unresolved and malformed punches are returned
// on the side lists; they never abort the run.
func Reconcile(idx *RosterIndex, punches []punch.RawPunch, opts ReconcileOptions) (dtr.ReconcileResult, error) {
	if idx == nil {
		return dtr.ReconcileResult{}, dtr.ErrNilRosterIndex
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	filter := make(map[string]struct{}, len(opts.EmployeeIDs))
	for _, id := range opts.EmployeeIDs {
		filter[id] = struct{}{}
	}

	result := dtr.ReconcileResult{
		Records:    []dtr.DailyAttendanceRecord{},
		Unresolved: []dtr.ResolvedPunch{},
		Invalid:    []punch.InvalidRow{},
		Dropped:    []dtr.DailyAttendanceRecord{},
	}
	result.Stats.TotalPunches = len(punches)

	groups := make(map[string]*dayGroup)
	for _, p := range punches {
		p = withKeys(p)
		if !p.HasValidTimestamp() {
			result.Invalid = append(result.Invalid, punch.NewInvalidRow(p, reasonMalformedTimestamp))
			continue
		}

		res := ResolveKeys(idx, p.DigitKey, p.NameKey)
		countMatch(&result.Stats, res)
		if !res.Resolved() {
			result.Unresolved = append(result.Unresolved, dtr.ResolvedPunch{Punch: p, Resolution: res})
			continue
		}
		if len(filter) > 0 && !inFilter(filter, res.Identity) {
			continue
		}

		date := p.Timestamp.In(loc).Format("2006-01-02")
		key := groupKey(res.Identity.Key(), date)
		g, ok := groups[key]
		if !ok {
			g = &dayGroup{identity: res.Identity, date: date}
			groups[key] = g
		}
		g.times = append(g.times, p.Timestamp)
	}
	result.Stats.InvalidCount = len(result.Invalid)

	ordered := make([]*dayGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.identity.FullName != b.identity.FullName {
			return a.identity.FullName < b.identity.FullName
		}
		if a.identity.Key() != b.identity.Key() {
			return a.identity.Key() < b.identity.Key()
		}
		return a.date < b.date
	})

	result.Records = segmentGroups(ordered, loc, opts.Workers)
	result.Stats.RecordCount = len(result.Records)
	return result, nil
}

// segmentGroups runs SegmentDay for every group on a bounded worker pool.
// Groups share nothing but the read-only identities, so no locking is needed.
func segmentGroups(groups []*dayGroup, loc *time.Location, workers int) []dtr.DailyAttendanceRecord {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	records := make([]dtr.DailyAttendanceRecord, len(groups))

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, g := range groups {
		eg.Go(func() error {
			seg := SegmentDay(g.times, loc)
			records[i] = dtr.DailyAttendanceRecord{
				EmployeeKey:      g.identity.Key(),
				EmployeeID:       g.identity.EmployeeID,
				EmployeeName:     g.identity.FullName,
				Date:             g.date,
				TimeIn:           seg.TimeIn,
				BreakOut:         seg.BreakOut,
				BreakIn:          seg.BreakIn,
				TimeOut:          seg.TimeOut,
				SourcePunchCount: seg.SourcePunchCount,
			}
			return nil
		})
	}
	_ = eg.Wait()
	return records
}

// VerifyRecords drops records whose (employee, day) has no corroborating punch
// in an independently fetched punch set. Corroborating punches are resolved
// against the same index so the comparison uses the same identity rules.
func VerifyRecords(idx *RosterIndex, records []dtr.DailyAttendanceRecord, corroborating []punch.RawPunch, loc *time.Location) (kept, dropped []dtr.DailyAttendanceRecord) {
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[string]struct{}, len(corroborating))
	for _, p := range corroborating {
		p = withKeys(p)
		if !p.HasValidTimestamp() {
			continue
		}
		res := ResolveKeys(idx, p.DigitKey, p.NameKey)
		if !res.Resolved() {
			continue
		}
		seen[groupKey(res.Identity.Key(), p.Timestamp.In(loc).Format("2006-01-02"))] = struct{}{}
	}

	kept = make([]dtr.DailyAttendanceRecord, 0, len(records))
	dropped = []dtr.DailyAttendanceRecord{}
	for _, rec := range records {
		if _, ok := seen[groupKey(rec.EmployeeKey, rec.Date)]; ok && rec.HasAnyPunch() {
			kept = append(kept, rec)
			continue
		}
		dropped = append(dropped, rec)
	}
	return kept, dropped
}

func groupKey(employeeKey, date string) string {
	return employeeKey + "|" + date
}

func inFilter(filter map[string]struct{}, emp *roster.EmployeeIdentity) bool {
	if _, ok := filter[emp.Key()]; ok {
		return true
	}
	_, ok := filter[emp.EmployeeID]
	return ok
}

func countMatch(stats *dtr.ReconcileStats, res dtr.Resolution) {
	switch res.Confidence {
	case dtr.MatchExactDigit:
		stats.ExactDigitCount++
	case dtr.MatchSuffixDigit:
		stats.SuffixDigitCount++
	case dtr.MatchName:
		stats.NameMatchCount++
	}
	if res.Resolved() {
		stats.ResolvedPunches++
		return
	}
	stats.UnresolvedCount++
	if res.Ambiguous {
		stats.AmbiguousCount++
	}
}
