package datediff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:20:30", time.Date(2024, 1, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-01-01 10:20:30.1234567", time.Date(2024, 1, 1, 10, 20, 30, 123456700, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimestamp(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got.Time), "got %s", got.Time)
		})
	}
}

func TestParseTimestamp_RejectsOffset(t *testing.T) {
	for _, in := range []string{"2024-01-01T00:00:00Z", "2024-01-01T00:00:00+02:00", "yesterday"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}

func TestParseTimestampTZ(t *testing.T) {
	got, err := ParseTimestampTZ("2024-01-01T05:30:00+05:30")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got.Time))

	_, err = ParseTimestampTZ("2024-01-01T05:30:00")
	assert.Error(t, err, "missing offset")
}

func TestNewTimestamp_DropsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	ts := NewTimestamp(time.Date(2024, 7, 4, 9, 0, 0, 0, loc))

	assert.Equal(t, time.UTC, ts.Location())
	assert.Equal(t, 9, ts.Hour())
	assert.Equal(t, "2024-07-04 09:00:00", ts.String())
}

func TestTimestamp_ValueScan(t *testing.T) {
	orig := naive(t, "2024-02-29T23:59:59.5")

	v, err := orig.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29 23:59:59.5", v)

	var fromString Timestamp
	require.NoError(t, fromString.Scan(v))
	assert.True(t, orig.Equal(fromString.Time))

	var fromBytes Timestamp
	require.NoError(t, fromBytes.Scan([]byte("2024-02-29 23:59:59.5")))
	assert.True(t, orig.Equal(fromBytes.Time))

	var fromTime Timestamp
	require.NoError(t, fromTime.Scan(time.Date(2024, 2, 29, 23, 59, 59, 5e8, time.FixedZone("x", 3600))))
	assert.True(t, orig.Equal(fromTime.Time))

	var bad Timestamp
	assert.Error(t, bad.Scan(42))
}

func TestTimestampTZ_ValueScan(t *testing.T) {
	orig := aware(t, "2024-01-01T05:30:00+05:30")

	v, err := orig.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 05:30:00 +05:30", v)

	var scanned TimestampTZ
	require.NoError(t, scanned.Scan(v))
	assert.True(t, orig.Equal(scanned.Time))

	var bad TimestampTZ
	assert.Error(t, bad.Scan(3.14))
}
