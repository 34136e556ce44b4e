package cli

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/people"
	"github.com/roach88/datediff/internal/store"
)

// PeopleOptions holds flags for the people command.
type PeopleOptions struct {
	*RootOptions
	Database string
	Count    int
	Within   int
	Unit     string

	// Clock allows overriding the wall clock (for testing).
	// If nil, defaults to people.SystemClock.
	Clock people.Clock
}

// PeopleResult compares the two evaluations of the birthday filter.
type PeopleResult struct {
	Unit     string   `json:"unit"`
	Within   int32    `json:"within"`
	Seeded   int      `json:"seeded"`
	Client   int      `json:"client"`
	Server   int      `json:"server"`
	Agree    bool     `json:"agree"`
	SQL      string   `json:"sql"`
	Selected []string `json:"selected,omitempty"`
}

// NewPeopleCommand creates the people command.
func NewPeopleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PeopleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "people",
		Short: "Run the birthday filter client side and server side",
		Long: `Seed people whose birthdays are now + i days, then select those with
DateDiff(unit, now, birthday) < within twice: in Go over every row, and
in SQLite through the compiled DATEDIFF query. Both must select the same
people.

The store is in memory unless --db names a SQLite file. With --db and
--count 0 the existing rows are used.

Example:
  datediff people
  datediff people --count 365 --within 2 --unit month
  datediff people --db ./people.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeople(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: in memory)")
	cmd.Flags().IntVar(&opts.Count, "count", 100, "number of people to seed")
	cmd.Flags().IntVar(&opts.Within, "within", 50, "select birthdays fewer than this many unit boundaries away")
	cmd.Flags().StringVar(&opts.Unit, "unit", "day", "date part")

	return cmd
}

func runPeople(opts *PeopleOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	unit, err := datediff.ParseUnit(opts.Unit)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidUnit, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid unit", err)
	}
	if opts.Count < 0 || opts.Within < math.MinInt32 || opts.Within > math.MaxInt32 {
		return NewExitError(ExitCommandError, "--count must be >= 0 and --within must fit in int32")
	}

	st, err := openPeopleStore(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	popts := []people.Option{people.WithLogger(logger)}
	if opts.Clock != nil {
		popts = append(popts, people.WithClock(opts.Clock))
	}
	pc, err := people.New(st, popts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load model", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := pc.Seed(ctx, opts.Count); err != nil {
		return WrapExitError(ExitCommandError, "failed to seed people", err)
	}

	result, err := comparePeople(ctx, pc, unit, int32(opts.Within))
	if err != nil {
		code := ErrCodeGeneric
		if datediff.IsOverflow(err) || store.IsOverflow(err) {
			code = ErrCodeOverflow
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "filter failed", err)
	}
	result.Seeded = opts.Count

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "SQL:    %s\n", result.SQL)
		fmt.Fprintf(w, "Client: %d selected\n", result.Client)
		fmt.Fprintf(w, "Server: %d selected\n", result.Server)
	}

	if !result.Agree {
		if formatter.Format != "json" {
			fmt.Fprintln(formatter.Writer, "✗ Client and server disagree")
		}
		return NewExitError(ExitFailure, "client and server selected different people")
	}
	if formatter.Format != "json" {
		fmt.Fprintln(formatter.Writer, "✓ Client and server agree")
	}
	return nil
}

func openPeopleStore(opts *PeopleOptions) (*store.Store, error) {
	if opts.Database == "" {
		return store.OpenMemory(store.WithLogger(opts.logger()))
	}
	return store.Open(opts.Database, store.WithLogger(opts.logger()))
}

// comparePeople runs both filters and compares the selected IDs.
func comparePeople(ctx context.Context, pc *people.Context, unit datediff.Unit, within int32) (PeopleResult, error) {
	sqlText, _, err := pc.CompileWithin(unit, within)
	if err != nil {
		return PeopleResult{}, err
	}
	client, err := pc.WithinClient(ctx, unit, within)
	if err != nil {
		return PeopleResult{}, err
	}
	server, err := pc.WithinServer(ctx, unit, within)
	if err != nil {
		return PeopleResult{}, err
	}

	clientIDs, serverIDs := personIDs(client), personIDs(server)
	return PeopleResult{
		Unit:     unit.String(),
		Within:   within,
		Client:   len(client),
		Server:   len(server),
		Agree:    slices.Equal(clientIDs, serverIDs),
		SQL:      sqlText,
		Selected: serverIDs,
	}, nil
}

// personIDs returns the sorted IDs of ps.
func personIDs(ps []store.Person) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID.String()
	}
	slices.Sort(ids)
	return ids
}
