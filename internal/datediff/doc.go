// Package datediff counts the unit boundaries crossed between two instants.
//
// The arithmetic matches the remote engine's DATEDIFF(unit, start, end) so
// that a filter evaluated in process and the same filter translated into SQL
// (see package dbfunc) return identical integers.
//
// # Units
//
// Year, Month and Day compare calendar fields. Hour through Millisecond
// cascade from the next coarser unit:
//
//	hour        = day*24 + (end.hour - start.hour)
//	minute      = hour*60 + (end.minute - start.minute)
//	second      = minute*60 + (end.second - start.second)
//	millisecond = second*1000 + (end.ms - start.ms)
//
// Microsecond and Nanosecond are computed from the raw difference in 100 ns
// ticks: microsecond = ticks/10, nanosecond = ticks*100.
//
// # Instants
//
// Timestamp is a naive wall-clock value; TimestampTZ carries an offset and is
// reduced to its UTC wall clock before any arithmetic. Both arguments of a
// call have the same kind: the Instant constraint rejects mixed calls at
// compile time.
//
// # Errors
//
// Every multiply and add is checked against the int32 result range. Overflow
// yields an *Error with ErrCodeOverflow; a Unit outside the enumeration yields
// ErrCodeInvalidUnit. A missing input is not an error: DiffNull returns an
// invalid sql.Null.
package datediff
