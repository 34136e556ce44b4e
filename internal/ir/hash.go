package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// the algorithm to change without colliding with old IDs.
const (
	DomainSample = "datediff/sample/v1"
	DomainTrace  = "datediff/trace/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
// The separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SampleID computes the primary key of a harness sample row. The same
// scenario, case index and timestamps always give the same ID. An absent
// timestamp is passed as the empty string.
func SampleID(scenario string, index int, start, end string) (string, error) {
	obj := IRObject{
		"scenario": IRString(scenario),
		"index":    IRInt(index),
		"start":    IRString(start),
		"end":      IRString(end),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SampleID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSample, canonical), nil
}

// TraceHash fingerprints a canonical trace so runs can be compared without
// storing the whole trace.
func TraceHash(trace IRValue) (string, error) {
	canonical, err := MarshalCanonical(trace)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustSampleID is like SampleID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSampleID(scenario string, index int, start, end string) string {
	id, err := SampleID(scenario, index, start, end)
	if err != nil {
		panic(err)
	}
	return id
}
