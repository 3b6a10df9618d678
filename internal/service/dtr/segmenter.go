package dtr

import (
	"sort"
	"time"
)

const (
	noonHour          = 12
	timeOutFromHour   = 14
	lunchWindowStart  = 11
	lunchWindowEnd    = 13
	breakOutLatestMin = 30
)

// DaySegments is the four-field DTR layout of one employee's day.
// A nil field means no punch was classified into it.
type DaySegments struct {
	TimeIn           *time.Time
	BreakOut         *time.Time
	BreakIn          *time.Time
	TimeOut          *time.Time
	SourcePunchCount int
}

// SegmentDay classifies one employee's punches for one local calendar day
// using only the local time of day in loc. Device state labels are ignored.
//
//   - time-in is the earliest punch before 12:00
//   - time-out is the latest punch at or after 14:00
//   - a lone punch that is neither becomes time-out
//   - of the remaining punches, those between 11:00 and 13:59 are break
//     candidates: with two or more the earliest is break-out and the latest
//     break-in; a single one is break-out up to 12:30 and break-in after
//
// It never fails and never invents times: missing data stays nil.
func SegmentDay(punches []time.Time, loc *time.Location) DaySegments {
	if loc == nil {
		loc = time.UTC
	}
	seg := DaySegments{SourcePunchCount: len(punches)}
	if len(punches) == 0 {
		return seg
	}

	sorted := make([]time.Time, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	for i := range sorted {
		if sorted[i].In(loc).Hour() < noonHour {
			seg.TimeIn = &sorted[i]
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].In(loc).Hour() >= timeOutFromHour {
			seg.TimeOut = &sorted[i]
			break
		}
	}

	if seg.TimeIn == nil && seg.TimeOut == nil && len(sorted) == 1 {
		if sorted[0].In(loc).Hour() >= noonHour {
			seg.TimeOut = &sorted[0]
		} else {
			seg.TimeIn = &sorted[0]
		}
	}

	var candidates []int
	for i, t := range sorted {
		if sameInstant(t, seg.TimeIn) || sameInstant(t, seg.TimeOut) {
			continue
		}
		if h := t.In(loc).Hour(); h >= lunchWindowStart && h <= lunchWindowEnd {
			candidates = append(candidates, i)
		}
	}

	switch {
	case len(candidates) >= 2:
		seg.BreakOut = &sorted[candidates[0]]
		seg.BreakIn = &sorted[candidates[len(candidates)-1]]
	case len(candidates) == 1:
		c := &sorted[candidates[0]]
		local := c.In(loc)
		if local.Hour() < noonHour || (local.Hour() == noonHour && local.Minute() <= breakOutLatestMin) {
			seg.BreakOut = c
		} else {
			seg.BreakIn = c
		}
	}

	return seg
}

func sameInstant(t time.Time, consumed *time.Time) bool {
	return consumed != nil && t.Equal(*consumed)
}
