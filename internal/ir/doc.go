// Package ir provides the literal value types shared by the query IR, the
// SQL compiler and the conformance harness.
//
// ir imports nothing internal. Every other package may import it.
//
// Key constraints:
//   - NO float types anywhere; numbers are int64
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Canonical JSON is the only encoding used for content hashes
package ir
