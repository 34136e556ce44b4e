package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"month boundary", []string{"month", "2024-01-31 23:59:59", "2024-02-01"}, "1\n"},
		{"abbreviation", []string{"yy", "2023-12-31", "2024-01-01"}, "1\n"},
		{"negative", []string{"day", "2024-03-02", "2024-02-28"}, "-3\n"},
		{"leap day", []string{"dd", "2024-02-28", "2024-03-01"}, "2\n"},
		{"aware reduced to UTC", []string{"day", "2024-03-10T20:00:00-05:00", "2024-03-12T00:00:00Z"}, "1\n"},
		{"null start", []string{"day", "null", "2024-01-01"}, "null\n"},
		{"null end", []string{"nanosecond", "2024-01-01", "NULL"}, "null\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"diff"}, tc.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestDiffCommandJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "diff", "mi", "2024-01-01 10:00:59", "2024-01-01 10:01:00")
	require.NoError(t, err)

	var res DiffResult
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "minute", res.Unit)
	require.NotNil(t, res.Start)
	assert.Equal(t, "2024-01-01 10:00:59", *res.Start)
	require.NotNil(t, res.Result)
	assert.Equal(t, int32(1), *res.Result)

	out, _, err = execute(t, "--format", "json", "diff", "day", "null", "2024-01-01")
	require.NoError(t, err)
	res = DiffResult{}
	decodeResponse(t, out, &res)
	assert.Nil(t, res.Start)
	assert.Nil(t, res.Result)
}

func TestDiffCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
		exit int
	}{
		{"invalid unit", []string{"fortnight", "2024-01-01", "2024-01-02"}, ErrCodeInvalidUnit, ExitCommandError},
		{"bad timestamp", []string{"day", "yesterday", "2024-01-02"}, ErrCodeInvalidTimestamp, ExitCommandError},
		{"mixed kinds", []string{"day", "2024-01-01", "2024-01-02T00:00:00Z"}, ErrCodeInvalidTimestamp, ExitCommandError},
		{"overflow", []string{"ns", "2024-01-01", "2024-01-01T00:00:03"}, ErrCodeOverflow, ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"--format", "json", "diff"}, tc.args...)...)
			require.Error(t, err)
			assert.Equal(t, tc.exit, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestDiffCommandArgs(t *testing.T) {
	_, _, err := execute(t, "diff", "day", "2024-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 3 arg")
}
