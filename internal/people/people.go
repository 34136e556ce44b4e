// Package people is the sample "people and birthdays" context: one filter,
// DateDiff(unit, now, birthday) < limit, evaluated in memory and in the
// database. Both evaluations must select the same people.
package people

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/dbfunc"
	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/model"
	"github.com/roach88/datediff/internal/queryir"
	"github.com/roach88/datediff/internal/querysql"
	"github.com/roach88/datediff/internal/store"
)

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Context runs the birthday filter against one store.
type Context struct {
	store  *store.Store
	model  *model.Model
	clock  Clock
	newID  func() uuid.UUID
	logger *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithClock sets the clock used for "now". Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(pc *Context) { pc.clock = c }
}

// WithIDs sets the person ID source. Defaults to random UUIDs.
func WithIDs(next func() uuid.UUID) Option {
	return func(pc *Context) { pc.newID = next }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(pc *Context) { pc.logger = l }
}

// New creates a context over s using the store's model.
func New(s *store.Store, opts ...Option) (*Context, error) {
	m, err := store.Model()
	if err != nil {
		return nil, err
	}
	pc := &Context{
		store:  s,
		model:  m,
		clock:  SystemClock{},
		newID:  uuid.New,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc, nil
}

// Now returns the clock reading as a timestamp without time zone.
func (pc *Context) Now() datediff.Timestamp {
	return datediff.NewTimestamp(pc.clock.Now())
}

// Seed inserts n people named "Person i" whose birthdays are now + i days.
func (pc *Context) Seed(ctx context.Context, n int) ([]store.Person, error) {
	if n < 0 {
		return nil, fmt.Errorf("seed: negative count %d", n)
	}

	now := pc.clock.Now()
	people := make([]store.Person, 0, n)
	for i := 0; i < n; i++ {
		p := store.Person{
			ID:   pc.newID(),
			Name: fmt.Sprintf("Person %d", i),
		}
		p.Birthday.V, p.Birthday.Valid = datediff.NewTimestamp(now.AddDate(0, 0, i)), true

		if _, err := pc.store.InsertPerson(ctx, p); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		people = append(people, p)
	}

	pc.logger.Debug("seeded people", "count", n)
	return people, nil
}

// WithinClient loads every person and keeps those whose birthday is fewer
// than limit unit boundaries after now. People without a birthday are never
// selected.
func (pc *Context) WithinClient(ctx context.Context, unit datediff.Unit, limit int32) ([]store.Person, error) {
	all, err := pc.store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	now := sql.Null[datediff.Timestamp]{V: pc.Now(), Valid: true}
	var out []store.Person
	for _, p := range all {
		d, err := datediff.DiffNull(unit, now, p.Birthday)
		if err != nil {
			return nil, fmt.Errorf("client filter %s: %w", p.ID, err)
		}
		if d.Valid && d.V < limit {
			out = append(out, p)
		}
	}

	pc.logger.Debug("client filter", "unit", unit, "limit", limit, "selected", len(out), "of", len(all))
	return out, nil
}

// WithinServer runs the same filter as WithinClient in the database.
func (pc *Context) WithinServer(ctx context.Context, unit datediff.Unit, limit int32) ([]store.Person, error) {
	sqlText, params, err := pc.CompileWithin(unit, limit)
	if err != nil {
		return nil, err
	}

	rows, err := pc.store.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("server filter: %w", err)
	}
	defer rows.Close()

	out, err := store.ScanPeople(rows)
	if err != nil {
		return nil, fmt.Errorf("server filter: %w", err)
	}

	pc.logger.Debug("server filter", "unit", unit, "limit", limit, "selected", len(out))
	return out, nil
}

// CompileWithin returns the SQL and parameters WithinServer executes.
func (pc *Context) CompileWithin(unit datediff.Unit, limit int32) (string, []any, error) {
	c := querysql.NewSQLCompiler(pc.model)
	c.BoundValues["now"] = pc.Now()

	sqlText, params, err := c.Compile(queryir.Select{
		From: "people",
		Filter: queryir.Compare{
			Left:  dbfunc.Call(unit, queryir.Bound{Var: "now"}, queryir.Field{Name: "birthday"}),
			Op:    queryir.OpLt,
			Right: queryir.Literal{Value: ir.IRInt(limit)},
		},
		Bindings: map[string]string{"birthday": "birthday", "id": "id", "name": "name"},
	})
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return sqlText, params, nil
}
