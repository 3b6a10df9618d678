package dtr

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBreakDefaults(t *testing.T) {
	d, err := ParseBreakDefaults("12:00", "13:30")
	require.NoError(t, err)
	assert.Equal(t, BreakDefaults{BreakOutHour: 12, BreakOutMinute: 0, BreakInHour: 13, BreakInMinute: 30}, d)

	cases := []struct {
		breakOut, breakIn string
		want              BreakDefaults
	}{
		{"11:45", "12:15", BreakDefaults{BreakOutHour: 11, BreakOutMinute: 45, BreakInHour: 12, BreakInMinute: 15}},
		{"00:00", "23:59", BreakDefaults{BreakOutHour: 0, BreakOutMinute: 0, BreakInHour: 23, BreakInMinute: 59}},
	}
	for _, c := range cases {
		got, err := ParseBreakDefaults(c.breakOut, c.breakIn)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	for _, bad := range [][2]string{{"25:00", "13:00"}, {"12:00", "1pm"}, {"", "13:00"}, {"12:60", "13:00"}} {
		_, err := ParseBreakDefaults(bad[0], bad[1])
		assert.Error(t, err, bad)
	}
}

func TestBreakDefaults_Apply(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	d, err := ParseBreakDefaults("12:00", "13:00")
	require.NoError(t, err)

	in := at(loc, "2024-03-04", "08:00")
	out := at(loc, "2024-03-04", "17:00")
	lunch := at(loc, "2024-03-04", "12:10")

	t.Run("fills both breaks", func(t *testing.T) {
		rec, filled := d.Apply(dtr.DailyAttendanceRecord{Date: "2024-03-04", TimeIn: &in, TimeOut: &out}, loc)
		require.True(t, filled)
		assert.True(t, rec.BreakOut.Equal(at(loc, "2024-03-04", "12:00")))
		assert.True(t, rec.BreakIn.Equal(at(loc, "2024-03-04", "13:00")))
	})

	t.Run("keeps observed break", func(t *testing.T) {
		rec, filled := d.Apply(dtr.DailyAttendanceRecord{Date: "2024-03-04", TimeIn: &in, BreakOut: &lunch, TimeOut: &out}, loc)
		require.True(t, filled)
		assert.Same(t, &lunch, rec.BreakOut)
		assert.True(t, rec.BreakIn.Equal(at(loc, "2024-03-04", "13:00")))
	})

	t.Run("needs time-in and time-out", func(t *testing.T) {
		original := dtr.DailyAttendanceRecord{Date: "2024-03-04", TimeIn: &in}
		rec, filled := d.Apply(original, loc)
		assert.False(t, filled)
		assert.Nil(t, rec.BreakOut)
		assert.Nil(t, rec.BreakIn)
	})

	t.Run("complete record untouched", func(t *testing.T) {
		breakIn := at(loc, "2024-03-04", "12:55")
		_, filled := d.Apply(dtr.DailyAttendanceRecord{Date: "2024-03-04", TimeIn: &in, BreakOut: &lunch, BreakIn: &breakIn, TimeOut: &out}, loc)
		assert.False(t, filled)
	})

	t.Run("does not touch the source record", func(t *testing.T) {
		original := dtr.DailyAttendanceRecord{Date: "2024-03-04", TimeIn: &in, TimeOut: &out}
		_, _ = d.Apply(original, loc)
		assert.Nil(t, original.BreakOut)
	})
}
