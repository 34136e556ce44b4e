// Package store is the SQLite engine that compiled DateDiff queries run
// against.
//
// SQLite has no DATEDIFF, so every connection opened through this package
// gets one: a scalar function installed by the driver's connect hook that
// counts unit boundaries between two timestamps the way the native function
// of the target engine does.
//
// # Critical Patterns
//
// Date parts are keywords, not strings
//   - Compiled SQL writes DATEDIFF(day, start, end) with a bare unit token
//   - The one-row view dateparts has a text column per unit, and every
//     queryable view cross joins it, so day resolves to 'day'
//
// Timestamps are TEXT
//   - Stored in the datediff text layouts (seven fractional digits)
//   - Written and read through datediff.Timestamp's Valuer and Scanner
//
// Deterministic Query Results
//   - All queries MUST include: ORDER BY id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
