package datediff

import (
	"database/sql"
	"math"
	"time"
)

const (
	secondsPerDay       = 24 * 60 * 60
	nanosecondsPerTick  = 100
	ticksPerSecond      = int64(time.Second / nanosecondsPerTick)
	ticksPerMicrosecond = int64(time.Microsecond / nanosecondsPerTick)
	nanosPerMillisecond = int(time.Millisecond)
)

// Diff returns the number of unit boundaries crossed between start and end.
// The result is negative when end precedes start.
func Diff[T Instant](unit Unit, start, end T) (int32, error) {
	return diff(unit, start.naive(), end.naive())
}

// DiffNull is Diff over nullable inputs. When either input is absent the
// result is absent and the error is nil, whatever the unit.
func DiffNull[T Instant](unit Unit, start, end sql.Null[T]) (sql.Null[int32], error) {
	if !start.Valid || !end.Valid {
		return sql.Null[int32]{}, nil
	}
	n, err := Diff(unit, start.V, end.V)
	if err != nil {
		return sql.Null[int32]{}, err
	}
	return sql.Null[int32]{V: n, Valid: true}, nil
}

func diff(unit Unit, start, end time.Time) (int32, error) {
	switch unit {
	case Year:
		return years(start, end)
	case Month:
		return months(start, end)
	case Day:
		return days(start, end)
	case Hour:
		return hours(start, end)
	case Minute:
		return minutes(start, end)
	case Second:
		return seconds(start, end)
	case Millisecond:
		return milliseconds(start, end)
	case Microsecond:
		return microseconds(start, end)
	case Nanosecond:
		return nanoseconds(start, end)
	default:
		return 0, invalidUnit(unit)
	}
}

func years(start, end time.Time) (int32, error) {
	return narrow(Year, int64(end.Year())-int64(start.Year()))
}

func months(start, end time.Time) (int32, error) {
	y, err := years(start, end)
	if err != nil {
		return 0, overflow(Month)
	}
	return cascade(Month, y, 12, int(end.Month())-int(start.Month()))
}

// days subtracts calendar dates; the time of day is truncated first.
func days(start, end time.Time) (int32, error) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	secs, ok := sub64(e.Unix(), s.Unix())
	if !ok {
		return 0, overflow(Day)
	}
	return narrow(Day, secs/secondsPerDay)
}

func hours(start, end time.Time) (int32, error) {
	d, err := days(start, end)
	if err != nil {
		return 0, overflow(Hour)
	}
	return cascade(Hour, d, 24, end.Hour()-start.Hour())
}

func minutes(start, end time.Time) (int32, error) {
	h, err := hours(start, end)
	if err != nil {
		return 0, overflow(Minute)
	}
	return cascade(Minute, h, 60, end.Minute()-start.Minute())
}

func seconds(start, end time.Time) (int32, error) {
	m, err := minutes(start, end)
	if err != nil {
		return 0, overflow(Second)
	}
	return cascade(Second, m, 60, end.Second()-start.Second())
}

func milliseconds(start, end time.Time) (int32, error) {
	s, err := seconds(start, end)
	if err != nil {
		return 0, overflow(Millisecond)
	}
	delta := end.Nanosecond()/nanosPerMillisecond - start.Nanosecond()/nanosPerMillisecond
	return cascade(Millisecond, s, 1000, delta)
}

// microseconds divides the raw tick difference; it does not cascade.
func microseconds(start, end time.Time) (int32, error) {
	ticks, ok := tickDiff(start, end)
	if !ok {
		return 0, overflow(Microsecond)
	}
	return narrow(Microsecond, ticks/ticksPerMicrosecond)
}

// nanoseconds multiplies the raw tick difference; it does not cascade.
func nanoseconds(start, end time.Time) (int32, error) {
	ticks, ok := tickDiff(start, end)
	if !ok {
		return 0, overflow(Nanosecond)
	}
	n, ok := mul64(ticks, nanosecondsPerTick)
	if !ok {
		return 0, overflow(Nanosecond)
	}
	return narrow(Nanosecond, n)
}

// tickDiff returns end - start in 100 ns ticks. Each instant is floored to a
// whole tick before subtracting.
func tickDiff(start, end time.Time) (int64, bool) {
	secs, ok := sub64(end.Unix(), start.Unix())
	if !ok {
		return 0, false
	}
	ticks, ok := mul64(secs, ticksPerSecond)
	if !ok {
		return 0, false
	}
	frac := int64(end.Nanosecond()/nanosecondsPerTick - start.Nanosecond()/nanosecondsPerTick)
	return add64(ticks, frac)
}

// cascade computes coarse*factor + delta, checking both steps.
func cascade(unit Unit, coarse int32, factor int64, delta int) (int32, error) {
	scaled, err := narrow(unit, int64(coarse)*factor)
	if err != nil {
		return 0, err
	}
	return narrow(unit, int64(scaled)+int64(delta))
}

func narrow(unit Unit, n int64) (int32, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, overflow(unit)
	}
	return int32(n), nil
}

func add64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func sub64(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}
