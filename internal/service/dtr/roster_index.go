package dtr

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
)

const (
	// minSuffixDigits is the shortest digit key allowed to take part in a suffix match.
	minSuffixDigits = 3
	// maxSuffixDelta is the largest length difference tolerated between suffix-matched keys.
	maxSuffixDelta = 3
)

// RosterIndex is a read-only lookup structure over one roster snapshot.
//
// Construction is O(n·k) for n employees with k codes each. The index is never
// mutated after NewRosterIndex returns, so one instance can serve any number
// of concurrent resolution batches. Candidate slices are always returned in
// roster order, which keeps resolution deterministic.
type RosterIndex struct {
	employees []roster.EmployeeIdentity
	byDigits  map[string][]int
	bySuffix  map[string][]int
	byName    map[string][]int
	names     []string
}

// NewRosterIndex indexes employees by normalized digit codes and normalized name.
// Employees with neither a digit code nor a usable name are left out.
func NewRosterIndex(employees []roster.EmployeeIdentity) *RosterIndex {
	idx := &RosterIndex{
		employees: make([]roster.EmployeeIdentity, 0, len(employees)),
		byDigits:  make(map[string][]int, len(employees)),
		bySuffix:  make(map[string][]int, len(employees)*maxSuffixDelta),
		byName:    make(map[string][]int, len(employees)),
	}

	for _, emp := range employees {
		if emp.NormalizedName == "" {
			emp.NormalizedName = NormalizeName(emp.FullName)
		}
		keys := digitKeysOf(emp)
		if len(keys) == 0 && emp.NormalizedName == "" {
			continue
		}

		pos := len(idx.employees)
		idx.employees = append(idx.employees, emp)

		for _, key := range keys {
			idx.byDigits[key] = append(idx.byDigits[key], pos)
			for m := max(minSuffixDigits, len(key)-maxSuffixDelta); m < len(key); m++ {
				suffix := key[len(key)-m:]
				idx.bySuffix[suffix] = append(idx.bySuffix[suffix], pos)
			}
		}

		if emp.NormalizedName != "" {
			if _, seen := idx.byName[emp.NormalizedName]; !seen {
				idx.names = append(idx.names, emp.NormalizedName)
			}
			idx.byName[emp.NormalizedName] = append(idx.byName[emp.NormalizedName], pos)
		}
	}

	sort.Strings(idx.names)
	return idx
}

// Len returns the number of indexed employees.
func (idx *RosterIndex) Len() int {
	return len(idx.employees)
}

// LookupByDigits returns employees whose normalized employee ID, alternate ID
// or employee number equals key.
func (idx *RosterIndex) LookupByDigits(key string) []*roster.EmployeeIdentity {
	if key == "" {
		return nil
	}
	return idx.collect(idx.byDigits[key])
}

// SuffixLookupByDigits returns employees with a digit key that ends with key,
// or that key ends with, excluding exact equality. The shorter of the two keys
// must have at least minSuffixDigits digits and the lengths may differ by at
// most maxSuffixDelta.
func (idx *RosterIndex) SuffixLookupByDigits(key string) []*roster.EmployeeIdentity {
	if len(key) < minSuffixDigits {
		return nil
	}

	// Roster keys that are longer than key and end with it.
	var positions []int
	positions = append(positions, idx.bySuffix[key]...)

	// Roster keys that are shorter than key and are its suffix.
	for m := max(minSuffixDigits, len(key)-maxSuffixDelta); m < len(key); m++ {
		positions = append(positions, idx.byDigits[key[len(key)-m:]]...)
	}
	return idx.collect(positions)
}

// LookupByName returns employees whose normalized name contains nameKey or is
// contained in it.
func (idx *RosterIndex) LookupByName(nameKey string) []*roster.EmployeeIdentity {
	if nameKey == "" {
		return nil
	}
	var positions []int
	for _, name := range idx.names {
		if strings.Contains(name, nameKey) || strings.Contains(nameKey, name) {
			positions = append(positions, idx.byName[name]...)
		}
	}
	return idx.collect(positions)
}

// collect dedupes positions and returns the employees in roster order.
// positions may alias index storage, so it is copied before sorting.
func (idx *RosterIndex) collect(positions []int) []*roster.EmployeeIdentity {
	if len(positions) == 0 {
		return nil
	}
	positions = append([]int(nil), positions...)
	sort.Ints(positions)
	out := make([]*roster.EmployeeIdentity, 0, len(positions))
	prev := -1
	for _, pos := range positions {
		if pos == prev {
			continue
		}
		prev = pos
		out = append(out, &idx.employees[pos])
	}
	return out
}

// digitKeysOf returns the distinct normalized digit keys of every code an employee can punch under.
func digitKeysOf(emp roster.EmployeeIdentity) []string {
	codes := emp.Codes()
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		key := NormalizeDigits(code)
		if key == "" {
			continue
		}
		dup := false
		for _, k := range keys {
			if k == key {
				dup = true
				break
			}
		}
		if !dup {
			keys = append(keys, key)
		}
	}
	return keys
}
