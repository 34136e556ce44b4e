package datediff

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Instant is satisfied by the two timestamp kinds. Both arguments of a
// difference share one kind, so a naive and an offset-aware value can never
// be mixed in a single call.
type Instant interface {
	Timestamp | TimestampTZ

	// naive returns the UTC wall-clock instant used for arithmetic.
	naive() time.Time
}

// Text layouts used on the wire. Seven fractional digits match the 100 ns
// resolution of the remote engine's datetime2 and datetimeoffset types.
const (
	timestampLayout   = "2006-01-02 15:04:05.9999999"
	timestampTZLayout = "2006-01-02 15:04:05.9999999 -07:00"
)

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var awareLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 Z07:00",
}

// Timestamp is a timestamp without time zone. Only the wall-clock fields are
// meaningful; the location of the wrapped time.Time is ignored.
type Timestamp struct {
	// Time is the underlying time.Time value.
	time.Time
}

// NewTimestamp keeps the wall-clock fields of t and drops its location.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: wallClockUTC(t)}
}

// ParseTimestamp parses an ISO-8601 date or date-time without an offset.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("cannot parse %q as a timestamp without time zone", s)
}

func (ts Timestamp) naive() time.Time { return wallClockUTC(ts.Time) }

// String formats ts with seven fractional digits.
func (ts Timestamp) String() string {
	return ts.naive().Format(timestampLayout)
}

// Value implements driver.Valuer.
func (ts Timestamp) Value() (driver.Value, error) {
	return ts.String(), nil
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*ts = parsed
	case []byte:
		return ts.Scan(string(v))
	case time.Time:
		*ts = NewTimestamp(v)
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
	return nil
}

// TimestampTZ is a timestamp with a UTC offset. Differences are computed on
// the UTC equivalent.
type TimestampTZ struct {
	// Time is the underlying time.Time value.
	time.Time
}

// NewTimestampTZ wraps t, keeping its offset for display.
func NewTimestampTZ(t time.Time) TimestampTZ {
	return TimestampTZ{Time: t}
}

// ParseTimestampTZ parses an ISO-8601 date-time that carries an offset or Z.
func ParseTimestampTZ(s string) (TimestampTZ, error) {
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimestampTZ{Time: t}, nil
		}
	}
	return TimestampTZ{}, fmt.Errorf("cannot parse %q as a timestamp with time zone", s)
}

func (ts TimestampTZ) naive() time.Time { return ts.Time.UTC() }

// String formats ts with seven fractional digits and its offset.
func (ts TimestampTZ) String() string {
	return ts.Time.Format(timestampTZLayout)
}

// Value implements driver.Valuer.
func (ts TimestampTZ) Value() (driver.Value, error) {
	return ts.String(), nil
}

// Scan implements sql.Scanner.
func (ts *TimestampTZ) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimestampTZ(v)
		if err != nil {
			return err
		}
		*ts = parsed
	case []byte:
		return ts.Scan(string(v))
	case time.Time:
		*ts = NewTimestampTZ(v)
	default:
		return fmt.Errorf("cannot scan %T into TimestampTZ", src)
	}
	return nil
}

// wallClockUTC re-dates t in UTC with the same wall-clock fields.
func wallClockUTC(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC,
	)
}
