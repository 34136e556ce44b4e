package store

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/roach88/datediff/internal/datediff"
)

// errSQLOverflow is the message the native function raises for results that
// do not fit a 32-bit integer.
var errSQLOverflow = errors.New("The datediff function resulted in an overflow.")

// IsOverflow reports whether err carries the overflow raised by the
// DATEDIFF function. The driver flattens function errors to their message.
func IsOverflow(err error) bool {
	return err != nil && strings.Contains(err.Error(), errSQLOverflow.Error())
}

const (
	sqlTicksPerSecond = int64(time.Second / 100)
	sqlNanosPerTick   = 100
)

// sqlDateDiff is the DATEDIFF scalar function installed on every connection.
//
// It counts boundaries directly: both instants are floored to the unit and
// the floors are subtracted. Either timestamp NULL gives NULL.
func sqlDateDiff(unit, start, end any) (any, error) {
	u, err := sqlUnit(unit)
	if err != nil {
		return nil, err
	}
	if start == nil || end == nil {
		return nil, nil
	}
	s, err := sqlInstant(start)
	if err != nil {
		return nil, err
	}
	e, err := sqlInstant(end)
	if err != nil {
		return nil, err
	}

	if u == datediff.Nanosecond {
		ticks := floorTo(datediff.Nanosecond, e) - floorTo(datediff.Nanosecond, s)
		if ticks > math.MaxInt32/sqlNanosPerTick+1 || ticks < math.MinInt32/sqlNanosPerTick-1 {
			return nil, errSQLOverflow
		}
		return sqlInt32(ticks * sqlNanosPerTick)
	}
	return sqlInt32(floorTo(u, e) - floorTo(u, s))
}

func sqlUnit(v any) (datediff.Unit, error) {
	var name string
	switch x := v.(type) {
	case string:
		name = x
	case []byte:
		name = string(x)
	default:
		return 0, fmt.Errorf("DATEDIFF: invalid datepart %v", v)
	}
	u, err := datediff.ParseUnit(name)
	if err != nil {
		return 0, fmt.Errorf("DATEDIFF: %w", err)
	}
	return u, nil
}

// sqlInstant reads a stored timestamp as a UTC instant. Offset-aware text is
// converted to UTC; naive text is taken as is.
func sqlInstant(v any) (time.Time, error) {
	var text string
	switch x := v.(type) {
	case string:
		text = x
	case []byte:
		text = string(x)
	case time.Time:
		return x.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("DATEDIFF: %T is not a timestamp", v)
	}
	if tz, err := datediff.ParseTimestampTZ(text); err == nil {
		return tz.Time.UTC(), nil
	}
	ts, err := datediff.ParseTimestamp(text)
	if err != nil {
		return time.Time{}, fmt.Errorf("DATEDIFF: %w", err)
	}
	return ts.Time, nil
}

// floorTo returns the number of whole units between 0001-01-01 and t, on a
// scale where consecutive units differ by one. Nanoseconds are counted in
// 100 ns ticks; the caller scales the difference.
func floorTo(u datediff.Unit, t time.Time) int64 {
	y := int64(t.Year())
	switch u {
	case datediff.Year:
		return y
	case datediff.Month:
		return y*12 + int64(t.Month()) - 1
	}

	day := civilDay(t)
	switch u {
	case datediff.Day:
		return day
	case datediff.Hour:
		return day*24 + int64(t.Hour())
	case datediff.Minute:
		return (day*24+int64(t.Hour()))*60 + int64(t.Minute())
	}

	secs := ((day*24+int64(t.Hour()))*60+int64(t.Minute()))*60 + int64(t.Second())
	nanos := int64(t.Nanosecond())
	switch u {
	case datediff.Second:
		return secs
	case datediff.Millisecond:
		return secs*1000 + nanos/int64(time.Millisecond)
	case datediff.Microsecond:
		return secs*1_000_000 + nanos/int64(time.Microsecond)
	default:
		return secs*sqlTicksPerSecond + nanos/sqlNanosPerTick
	}
}

// civilDay numbers calendar days, 0001-01-01 being day 0.
func civilDay(t time.Time) int64 {
	epoch := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return (midnight.Unix() - epoch.Unix()) / (24 * 60 * 60)
}

func sqlInt32(n int64) (any, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, errSQLOverflow
	}
	return n, nil
}
