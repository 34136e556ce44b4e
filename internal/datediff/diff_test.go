package datediff

import (
	"database/sql"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naive(t *testing.T, s string) Timestamp {
	t.Helper()
	ts, err := ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func aware(t *testing.T, s string) TimestampTZ {
	t.Helper()
	ts, err := ParseTimestampTZ(s)
	require.NoError(t, err)
	return ts
}

func TestDiff_MonthAndDayAcrossLeapFebruary(t *testing.T) {
	start := aware(t, "2024-01-01T00:00:00Z")
	end := aware(t, "2024-03-01T00:00:00Z")

	months, err := Diff(Month, start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(2), months)

	days, err := Diff(Day, start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(60), days)
}

func TestDiff_BoundaryCounts(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  map[Unit]int32
	}{
		{
			name:  "one second across new year",
			start: "2023-12-31T23:59:59",
			end:   "2024-01-01T00:00:00",
			want: map[Unit]int32{
				Year:        1,
				Month:       1,
				Day:         1,
				Hour:        1,
				Minute:      1,
				Second:      1,
				Millisecond: 1000,
				Microsecond: 1_000_000,
				Nanosecond:  1_000_000_000,
			},
		},
		{
			name:  "late in the day to early next day",
			start: "2024-05-10T23:00:00",
			end:   "2024-05-11T01:30:00",
			want: map[Unit]int32{
				Year:   0,
				Month:  0,
				Day:    1,
				Hour:   2,
				Minute: 150,
				Second: 9000,
			},
		},
		{
			name:  "same day different years",
			start: "2019-07-04T12:00:00",
			end:   "2024-07-04T12:00:00",
			want: map[Unit]int32{
				Year:   5,
				Month:  60,
				Day:    1827,
				Hour:   1827 * 24,
				Minute: 1827 * 24 * 60,
			},
		},
		{
			name:  "millisecond crossing a second",
			start: "2024-01-01T00:00:00.999",
			end:   "2024-01-01T00:00:01.001",
			want: map[Unit]int32{
				Second:      1,
				Millisecond: 2,
				Microsecond: 2000,
				Nanosecond:  2_000_000,
			},
		},
		{
			name:  "sub-microsecond span",
			start: "2024-01-01T00:00:00",
			end:   "2024-01-01T00:00:00.0000015",
			want: map[Unit]int32{
				Second:      0,
				Millisecond: 0,
				Microsecond: 1,
				Nanosecond:  1500,
			},
		},
		{
			name:  "sub-tick nanoseconds are truncated",
			start: "2024-01-01T00:00:00",
			end:   "2024-01-01T00:00:00.000001599",
			want: map[Unit]int32{
				Microsecond: 1,
				Nanosecond:  1500,
			},
		},
		{
			name:  "end before start",
			start: "2024-03-01T00:00:00",
			end:   "2023-11-15T08:00:00",
			want: map[Unit]int32{
				Year:  -1,
				Month: -4,
				Day:   -107,
				Hour:  -107*24 + 8,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start := naive(t, tc.start)
			end := naive(t, tc.end)
			for unit, want := range tc.want {
				got, err := Diff(unit, start, end)
				require.NoError(t, err, "unit %s", unit)
				assert.Equal(t, want, got, "unit %s", unit)
			}
		})
	}
}

func TestDiff_EqualInstantsAreZero(t *testing.T) {
	ts := naive(t, "2024-02-29T13:14:15.1617181")
	for _, unit := range Units() {
		got, err := Diff(unit, ts, ts)
		require.NoError(t, err)
		assert.Zero(t, got, "unit %s", unit)
	}
}

func TestDiff_Antisymmetric(t *testing.T) {
	// Short enough that nanoseconds fit in int32.
	start := naive(t, "2024-06-30T23:59:59.2500000")
	end := naive(t, "2024-07-01T00:00:01.1234567")

	for _, unit := range Units() {
		forward, err := Diff(unit, start, end)
		require.NoError(t, err)
		backward, err := Diff(unit, end, start)
		require.NoError(t, err)
		assert.Equal(t, forward, -backward, "unit %s", unit)
	}
}

func TestDiff_CascadeConsistency(t *testing.T) {
	start := naive(t, "2021-03-14T01:59:26.535")
	end := naive(t, "2021-04-02T18:07:03.141")
	s, e := start.naive(), end.naive()

	d, err := Diff(Day, start, end)
	require.NoError(t, err)
	h, err := Diff(Hour, start, end)
	require.NoError(t, err)
	m, err := Diff(Minute, start, end)
	require.NoError(t, err)
	sec, err := Diff(Second, start, end)
	require.NoError(t, err)
	ms, err := Diff(Millisecond, start, end)
	require.NoError(t, err)

	assert.Equal(t, 24*d+int32(e.Hour()-s.Hour()), h)
	assert.Equal(t, 60*h+int32(e.Minute()-s.Minute()), m)
	assert.Equal(t, 60*m+int32(e.Second()-s.Second()), sec)
	assert.Equal(t, 1000*sec+int32(e.Nanosecond()/1e6-s.Nanosecond()/1e6), ms)
}

func TestDiff_AwareMatchesNaiveUTC(t *testing.T) {
	// 2024-01-01T05:30:00+05:30 is midnight UTC; 2024-01-31T19:00:00-05:00 is
	// 2024-02-01T00:00:00 UTC.
	startTZ := aware(t, "2024-01-01T05:30:00+05:30")
	endTZ := aware(t, "2024-01-31T19:00:00-05:00")
	start := naive(t, "2024-01-01T00:00:00")
	end := naive(t, "2024-02-01T00:00:00")

	for _, unit := range []Unit{Year, Month, Day, Hour, Minute, Second} {
		want, err := Diff(unit, start, end)
		require.NoError(t, err)
		got, err := Diff(unit, startTZ, endTZ)
		require.NoError(t, err)
		assert.Equal(t, want, got, "unit %s", unit)
	}

	month, err := Diff(Month, startTZ, endTZ)
	require.NoError(t, err)
	assert.Equal(t, int32(1), month, "local calendar would say 0 months")
}

func TestDiff_NaiveIgnoresLocation(t *testing.T) {
	loc := time.FixedZone("test", 9*60*60)
	start := Timestamp{Time: time.Date(2024, 1, 1, 23, 0, 0, 0, loc)}
	end := Timestamp{Time: time.Date(2024, 1, 2, 1, 0, 0, 0, loc)}

	got, err := Diff(Day, start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)
}

func TestDiffNull_AbsentInputIsUnknown(t *testing.T) {
	present := sql.Null[Timestamp]{V: naive(t, "2024-01-01T00:00:00"), Valid: true}
	absent := sql.Null[Timestamp]{}

	for _, unit := range append(Units(), Unit(99)) {
		for _, pair := range [][2]sql.Null[Timestamp]{
			{absent, present},
			{present, absent},
			{absent, absent},
		} {
			got, err := DiffNull(unit, pair[0], pair[1])
			require.NoError(t, err, "unit %s", unit)
			assert.False(t, got.Valid, "unit %s", unit)
		}
	}
}

func TestDiffNull_PresentInputs(t *testing.T) {
	start := sql.Null[TimestampTZ]{V: aware(t, "2024-01-01T00:00:00Z"), Valid: true}
	end := sql.Null[TimestampTZ]{V: aware(t, "2024-03-01T00:00:00Z"), Valid: true}

	got, err := DiffNull(Day, start, end)
	require.NoError(t, err)
	assert.Equal(t, sql.Null[int32]{V: 60, Valid: true}, got)
}

func TestDiff_InvalidUnit(t *testing.T) {
	ts := naive(t, "2024-01-01T00:00:00")
	for _, unit := range []Unit{-1, 9, 42} {
		_, err := Diff(unit, ts, ts)
		require.Error(t, err)
		assert.True(t, IsInvalidUnit(err))
		assert.False(t, IsOverflow(err))
	}

	_, err := DiffNull(Unit(42), sql.Null[Timestamp]{V: ts, Valid: true}, sql.Null[Timestamp]{V: ts, Valid: true})
	assert.True(t, IsInvalidUnit(err))
}

func TestDiff_Overflow(t *testing.T) {
	tests := []struct {
		unit  Unit
		start string
		end   string
	}{
		{Second, "1900-01-01T00:00:00", "2000-01-01T00:00:00"},
		{Millisecond, "2024-01-01T00:00:00", "2024-02-01T00:00:00"},
		{Microsecond, "2024-01-01T00:00:00", "2024-01-01T01:00:00"},
		{Nanosecond, "2024-01-01T00:00:00", "2024-01-01T00:00:03"},
		{Nanosecond, "2024-01-01T00:00:03", "2024-01-01T00:00:00"},
		{Minute, "0001-01-01T00:00:00", "9999-12-31T23:59:59"},
	}

	for _, tc := range tests {
		t.Run(tc.unit.String(), func(t *testing.T) {
			_, err := Diff(tc.unit, naive(t, tc.start), naive(t, tc.end))
			require.Error(t, err)
			assert.True(t, IsOverflow(err), "got %v", err)

			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.unit, de.Unit)
		})
	}
}

func TestDiff_LargestRepresentableRange(t *testing.T) {
	start := naive(t, "0001-01-01T00:00:00")
	end := naive(t, "9999-12-31T23:59:59.9999999")

	days, err := Diff(Day, start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(3652058), days)

	hours, err := Diff(Hour, start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(3652058*24+23), hours)
}

func TestNarrow_Bounds(t *testing.T) {
	n, err := narrow(Second, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), n)

	_, err = narrow(Second, math.MaxInt32+1)
	assert.True(t, IsOverflow(err))

	_, err = narrow(Second, math.MinInt32-1)
	assert.True(t, IsOverflow(err))
}

func TestCheckedInt64(t *testing.T) {
	_, ok := add64(math.MaxInt64, 1)
	assert.False(t, ok)
	_, ok = sub64(math.MinInt64, 1)
	assert.False(t, ok)
	_, ok = mul64(math.MaxInt64/2+1, 2)
	assert.False(t, ok)
	_, ok = mul64(-1, math.MinInt64)
	assert.False(t, ok)

	v, ok := mul64(-3, 7)
	require.True(t, ok)
	assert.Equal(t, int64(-21), v)
}

func TestDiff_ConcurrentCallers(t *testing.T) {
	start := naive(t, "2024-01-01T00:00:00")
	end := naive(t, "2024-03-01T00:00:00")

	var wg sync.WaitGroup
	results := make([]int32, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := Diff(Day, start, end)
			if err == nil {
				results[i] = n
			}
		}(i)
	}
	wg.Wait()

	for _, n := range results {
		assert.Equal(t, int32(60), n)
	}
}
