package harness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/dbfunc"
	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/model"
	"github.com/roach88/datediff/internal/queryir"
	"github.com/roach88/datediff/internal/querysql"
	"github.com/roach88/datediff/internal/store"
)

// Harness evaluates one scenario against one store.
type Harness struct {
	store    *store.Store
	model    *model.Model
	logger   *slog.Logger
	compiled map[datediff.Unit]compiledQuery
}

type compiledQuery struct {
	sql    string
	params []any
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Insert every case as a sample row
// 3. Evaluate each case for each unit, directly and through SQL
// 4. Check agreement and expectations
//
// An error is returned only when the scenario cannot be executed; failed
// checks are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a context for the database calls.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("nil scenario")
	}
	units, err := scenario.EffectiveUnits()
	if err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	m, err := store.Model()
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:    st,
		model:    m,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		compiled: make(map[datediff.Unit]compiledQuery),
	}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		if err := h.runCase(ctx, scenario.Name, i, c, units, result); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Label(i), err)
		}
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"events", len(result.Trace),
		"pass", result.Pass)
	return result, nil
}

func (h *Harness) runCase(ctx context.Context, scenario string, index int, c Case, units []datediff.Unit, result *Result) error {
	p, err := parseBounds(c)
	if err != nil {
		return err
	}

	start, end := p.text(0), p.text(1)
	id, err := ir.SampleID(scenario, index, start.String, end.String)
	if err != nil {
		return fmt.Errorf("sample id: %w", err)
	}
	if err := h.store.InsertSample(ctx, store.Sample{
		ID:       id,
		Scenario: scenario,
		Seq:      index,
		Start:    start,
		End:      end,
	}); err != nil {
		return err
	}

	expect, err := expectationsByUnit(c.Expect)
	if err != nil {
		return err
	}

	for _, unit := range units {
		q, err := h.query(unit, id)
		if err != nil {
			return err
		}
		ev := TraceEvent{
			Case:   c.Label(index),
			Sample: id,
			Unit:   unit.String(),
			SQL:    q.sql,
			Client: p.client(unit),
			Server: h.server(ctx, q),
		}
		h.logger.Debug("evaluated",
			"case", ev.Case,
			"unit", ev.Unit,
			"client", ev.Client.String(),
			"server", ev.Server.String())

		result.AddTrace(ev)
		var want *Expectation
		if e, ok := expect[unit]; ok {
			want = &e
		}
		EvaluateAssertions(result, ev, want)
	}
	return nil
}

// query compiles the per-unit sample query once and binds the sample ID.
func (h *Harness) query(unit datediff.Unit, id string) (compiledQuery, error) {
	q, ok := h.compiled[unit]
	if !ok {
		c := querysql.NewSQLCompiler(h.model)
		c.BoundValues["sample"] = ""
		sqlText, params, err := c.Compile(queryir.Select{
			From:     "samples",
			Filter:   queryir.BoundEquals{Field: "id", BoundVar: "sample"},
			Bindings: map[string]string{"id": "id"},
			Computed: map[string]queryir.Expr{
				"diff": dbfunc.Call(unit, queryir.Field{Name: "start_at"}, queryir.Field{Name: "end_at"}),
			},
		})
		if err != nil {
			return compiledQuery{}, fmt.Errorf("compile %s: %w", unit, err)
		}
		q = compiledQuery{sql: sqlText, params: params}
		h.compiled[unit] = q
	}

	// The sample ID is the only parameter.
	return compiledQuery{sql: q.sql, params: []any{id}}, nil
}

func (h *Harness) server(ctx context.Context, q compiledQuery) Outcome {
	rows, err := h.store.Query(ctx, q.sql, q.params...)
	if err != nil {
		return failure(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return failure(err)
		}
		return Outcome{Kind: ExpectError, Err: "sample not found"}
	}
	var id string
	var diff sql.Null[int32]
	if err := rows.Scan(&id, &diff); err != nil {
		return failure(err)
	}
	return valueOutcome(diff)
}

// failure classifies an evaluation error.
func failure(err error) Outcome {
	if datediff.IsOverflow(err) || store.IsOverflow(err) {
		return Outcome{Kind: ExpectOverflow}
	}
	return Outcome{Kind: ExpectError, Err: err.Error()}
}

func expectationsByUnit(in map[string]Expectation) (map[datediff.Unit]Expectation, error) {
	out := make(map[datediff.Unit]Expectation, len(in))
	for name, e := range in {
		u, err := datediff.ParseUnit(name)
		if err != nil {
			return nil, err
		}
		if _, dup := out[u]; dup {
			return nil, fmt.Errorf("unit %s expected twice", u)
		}
		out[u] = e
	}
	return out, nil
}

// pair holds the parsed bounds of a case. Both bounds share one kind.
type pair struct {
	aware bool
	naive [2]sql.Null[datediff.Timestamp]
	tz    [2]sql.Null[datediff.TimestampTZ]
}

var errMixedKinds = errors.New("case mixes a timestamp with time zone and one without")

func parseBounds(c Case) (pair, error) {
	var p pair
	kinds := [2]int{} // 0 absent, 1 naive, 2 aware
	for i, raw := range []*string{c.Start, c.End} {
		if raw == nil {
			continue
		}
		if tz, err := datediff.ParseTimestampTZ(*raw); err == nil {
			p.tz[i] = sql.Null[datediff.TimestampTZ]{V: tz, Valid: true}
			kinds[i] = 2
			continue
		}
		ts, err := datediff.ParseTimestamp(*raw)
		if err != nil {
			return pair{}, err
		}
		p.naive[i] = sql.Null[datediff.Timestamp]{V: ts, Valid: true}
		kinds[i] = 1
	}

	if kinds[0] != 0 && kinds[1] != 0 && kinds[0] != kinds[1] {
		return pair{}, errMixedKinds
	}
	p.aware = kinds[0] == 2 || kinds[1] == 2
	return p, nil
}

// text returns bound i in its stored text layout.
func (p pair) text(i int) sql.NullString {
	if p.aware {
		if !p.tz[i].Valid {
			return sql.NullString{}
		}
		return sql.NullString{String: p.tz[i].V.String(), Valid: true}
	}
	if !p.naive[i].Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: p.naive[i].V.String(), Valid: true}
}

// Evaluate computes the direct difference for one case. Bounds are parsed
// the way scenario files are: an offset makes an instant aware.
func Evaluate(c Case, unit datediff.Unit) (Outcome, error) {
	p, err := parseBounds(c)
	if err != nil {
		return Outcome{}, err
	}
	return p.client(unit), nil
}

func (p pair) client(unit datediff.Unit) Outcome {
	var v sql.Null[int32]
	var err error
	if p.aware {
		v, err = datediff.DiffNull(unit, p.tz[0], p.tz[1])
	} else {
		v, err = datediff.DiffNull(unit, p.naive[0], p.naive[1])
	}
	if err != nil {
		return failure(err)
	}
	return valueOutcome(v)
}
