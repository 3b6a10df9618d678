package dtr

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
)

// fakePunchRepository is an in-memory punch store with the same natural-key
// conflict rule as the database.
type fakePunchRepository struct {
	mu      sync.Mutex
	punches []punch.RawPunch
	keys    map[string]struct{}
	queries []punch.PunchFilter
	// recheck, when set, replaces the result of every query after the first.
	recheck func(rows []punch.RawPunch) []punch.RawPunch
	err     error
}

func newFakePunchRepository(seed ...punch.RawPunch) *fakePunchRepository {
	r := &fakePunchRepository{keys: make(map[string]struct{})}
	for _, p := range seed {
		r.punches = append(r.punches, withKeys(p))
	}
	return r
}

func (r *fakePunchRepository) Query(_ context.Context, filter punch.PunchFilter) ([]punch.RawPunch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.queries = append(r.queries, filter)

	digits := toSet(filter.DigitKeys)
	names := toSet(filter.NameKeys)
	var out []punch.RawPunch
	for _, p := range r.punches {
		if p.Timestamp.Before(filter.From) || !p.Timestamp.Before(filter.To) {
			continue
		}
		if len(digits) > 0 || len(names) > 0 {
			_, d := digits[p.DigitKey]
			_, n := names[p.NameKey]
			if !d && !n {
				continue
			}
		}
		out = append(out, p)
	}
	if len(r.queries) > 1 && r.recheck != nil {
		out = r.recheck(out)
	}
	return out, nil
}

func (r *fakePunchRepository) BulkInsert(_ context.Context, punches []punch.RawPunch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var inserted int64
	for _, p := range punches {
		key := p.DedupeKey + "@" + p.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, dup := r.keys[key]; dup {
			continue
		}
		r.keys[key] = struct{}{}
		r.punches = append(r.punches, p)
		inserted++
	}
	return inserted, nil
}

type fakeRosterRepository struct {
	employees []roster.EmployeeIdentity
	err       error
	calls     []bool
}

func (r *fakeRosterRepository) ListEmployees(_ context.Context, includeInactive bool) ([]roster.EmployeeIdentity, error) {
	r.calls = append(r.calls, includeInactive)
	if r.err != nil {
		return nil, r.err
	}
	var out []roster.EmployeeIdentity
	for _, emp := range r.employees {
		if emp.Active || includeInactive {
			out = append(out, emp)
		}
	}
	return out, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// testRoster is a small office roster shared by the service tests.
func testRoster() []roster.EmployeeIdentity {
	return []roster.EmployeeIdentity{
		{ID: "emp-a", EmployeeID: "03-0946", FullName: "Maria Cruz", Active: true},
		{ID: "emp-b", EmployeeID: "03-0947", FullName: "Jose Rizal", Active: true},
		{ID: "emp-c", EmployeeID: "1234567", FullName: "Ana Santos", Active: true},
		{ID: "emp-d", EmployeeID: "88-1000", FullName: "Pedro Penduko", Active: false},
	}
}

func at(loc *time.Location, day, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, loc)
	if err != nil {
		panic(err)
	}
	return t
}

func rawPunch(code, name string, ts time.Time) punch.RawPunch {
	return punch.RawPunch{DeviceCode: code, RawName: name, Timestamp: ts, RawTimestamp: ts.Format(time.RFC3339)}
}

func withID(emp roster.EmployeeIdentity, id string) roster.EmployeeIdentity {
	emp.ID = id
	return emp
}
