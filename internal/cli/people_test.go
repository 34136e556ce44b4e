package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datediff/internal/testutil"
)

var peopleNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// runPeopleWith runs the people command on a fixed clock.
func runPeopleWith(t *testing.T, format string, opts PeopleOptions) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewPeopleCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})

	opts.RootOptions = rootOpts
	opts.Clock = testutil.NewFixedClock(peopleNow)
	err := runPeople(&opts, cmd)
	return buf.String(), err
}

func TestPeopleCommand(t *testing.T) {
	out, err := runPeopleWith(t, "text", PeopleOptions{Count: 100, Within: 50, Unit: "day"})
	require.NoError(t, err)
	assert.Contains(t, out, "SQL:    SELECT birthday, id, name FROM people WHERE DATEDIFF(day, ?, birthday) < ? ORDER BY id ASC COLLATE BINARY\n")
	assert.Contains(t, out, "Client: 50 selected\n")
	assert.Contains(t, out, "Server: 50 selected\n")
	assert.Contains(t, out, "✓ Client and server agree")
}

func TestPeopleCommandUnits(t *testing.T) {
	tests := []struct {
		unit   string
		within int
		want   int
	}{
		{"year", 1, 100},
		{"month", 2, 52},
		{"mm", 1, 22},
		{"hour", 240, 10},
		{"day", 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.unit, func(t *testing.T) {
			out, err := runPeopleWith(t, "json", PeopleOptions{Count: 100, Within: tc.within, Unit: tc.unit})
			require.NoError(t, err)

			var res PeopleResult
			decodeResponse(t, out, &res)
			assert.Equal(t, tc.want, res.Client)
			assert.Equal(t, tc.want, res.Server)
			assert.True(t, res.Agree)
			assert.Len(t, res.Selected, tc.want)
		})
	}
}

func TestPeopleCommandDatabaseFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "people.db")

	_, err := runPeopleWith(t, "json", PeopleOptions{Database: db, Count: 10, Within: 5, Unit: "day"})
	require.NoError(t, err)

	// Rows persist: a second run without seeding sees the first run's people.
	out, err := runPeopleWith(t, "json", PeopleOptions{Database: db, Count: 0, Within: 5, Unit: "day"})
	require.NoError(t, err)

	var res PeopleResult
	decodeResponse(t, out, &res)
	assert.Equal(t, 0, res.Seeded)
	assert.Equal(t, 5, res.Server)
	assert.True(t, res.Agree)
}

func TestPeopleCommandErrors(t *testing.T) {
	_, err := runPeopleWith(t, "text", PeopleOptions{Count: 10, Within: 5, Unit: "fortnight"})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runPeopleWith(t, "text", PeopleOptions{Count: -1, Within: 5, Unit: "day"})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := runPeopleWith(t, "json", PeopleOptions{Count: 3, Within: 5, Unit: "ns"})
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeOverflow, resp.Error.Code)
}

func TestPeopleCommandThroughRoot(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "people", "--count", "20", "--within", "7")
	require.NoError(t, err)

	var res PeopleResult
	decodeResponse(t, out, &res)
	assert.Equal(t, "day", res.Unit)
	assert.Equal(t, 20, res.Seeded)
	assert.Equal(t, 7, res.Server)
	assert.True(t, res.Agree)
}
