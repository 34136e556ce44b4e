package datediff

import (
	"fmt"
	"strings"
)

// Unit selects the granularity of a difference. Values are ordered from
// coarsest to finest.
type Unit int

const (
	Year Unit = iota
	Month
	Day
	Hour
	Minute
	Second
	Millisecond
	Microsecond
	Nanosecond
)

var unitNames = [...]string{
	Year:        "year",
	Month:       "month",
	Day:         "day",
	Hour:        "hour",
	Minute:      "minute",
	Second:      "second",
	Millisecond: "millisecond",
	Microsecond: "microsecond",
	Nanosecond:  "nanosecond",
}

// unitAliases maps the target engine's DATEDIFF abbreviations to units.
var unitAliases = map[string]Unit{
	"yy":   Year,
	"yyyy": Year,
	"mm":   Month,
	"m":    Month,
	"dd":   Day,
	"d":    Day,
	"hh":   Hour,
	"mi":   Minute,
	"n":    Minute,
	"ss":   Second,
	"s":    Second,
	"ms":   Millisecond,
	"mcs":  Microsecond,
	"ns":   Nanosecond,
}

// Units returns every unit, coarsest first.
func Units() []Unit {
	units := make([]Unit, len(unitNames))
	for i := range unitNames {
		units[i] = Unit(i)
	}
	return units
}

// Valid reports whether u is one of the nine defined units.
func (u Unit) Valid() bool {
	return u >= Year && u <= Nanosecond
}

// Validate returns an INVALID_UNIT error when u is not a defined unit.
func (u Unit) Validate() error {
	if !u.Valid() {
		return invalidUnit(u)
	}
	return nil
}

// String returns the canonical lower-case name, which is also the keyword the
// SQL DATEDIFF function expects.
func (u Unit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

// ParseUnit resolves a canonical unit name or DATEDIFF abbreviation,
// ignoring case.
func ParseUnit(s string) (Unit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range unitNames {
		if n == name {
			return Unit(i), nil
		}
	}
	if u, ok := unitAliases[name]; ok {
		return u, nil
	}
	return 0, &Error{
		Code:    ErrCodeInvalidUnit,
		Unit:    -1,
		Message: fmt.Sprintf("unknown unit %q", s),
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, invalidUnit(u)
	}
	return []byte(unitNames[u]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
