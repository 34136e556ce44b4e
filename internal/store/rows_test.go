package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/dbfunc"
	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/queryir"
	"github.com/roach88/datediff/internal/querysql"
)

func birthday(t time.Time) sql.Null[datediff.Timestamp] {
	return sql.Null[datediff.Timestamp]{V: datediff.NewTimestamp(t), Valid: true}
}

func TestInsertPerson_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	bday := time.Date(1990, 5, 17, 6, 30, 0, 123456700, time.UTC)
	id, err := s.InsertPerson(ctx, Person{Name: "Ada", Birthday: birthday(bday)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	_, err = s.InsertPerson(ctx, Person{Name: "Unknown"})
	require.NoError(t, err)

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 2)

	byName := map[string]Person{}
	for _, p := range people {
		byName[p.Name] = p
	}
	require.True(t, byName["Ada"].Birthday.Valid)
	assert.True(t, bday.Equal(byName["Ada"].Birthday.V.Time))
	assert.Equal(t, id, byName["Ada"].ID)
	assert.False(t, byName["Unknown"].Birthday.Valid)
}

func TestInsertPerson_KeepsGivenID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	want := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	got, err := s.InsertPerson(ctx, Person{ID: want, Name: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.InsertPerson(ctx, Person{ID: want, Name: "Grace again"})
	assert.Error(t, err, "duplicate person IDs are rejected")
}

func TestListPeople_OrderedByID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	for i := 0; i < 10; i++ {
		_, err := s.InsertPerson(ctx, Person{Name: "p"})
		require.NoError(t, err)
	}

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	for i := 1; i < len(people); i++ {
		assert.Less(t, people[i-1].ID.String(), people[i].ID.String())
	}
}

func TestInsertSample_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	sm := Sample{
		ID:       ir.MustSampleID("leap", 0, "2024-02-01 00:00:00", "2024-03-01 00:00:00"),
		Scenario: "leap",
		Start:    sql.NullString{String: "2024-02-01 00:00:00", Valid: true},
		End:      sql.NullString{String: "2024-03-01 00:00:00", Valid: true},
	}
	require.NoError(t, s.InsertSample(ctx, sm))
	require.NoError(t, s.InsertSample(ctx, sm))

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&n))
	assert.Equal(t, 1, n)
}

// A compiled DateDiff query runs against the store views.
func TestQuery_CompiledDateDiff(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	m, err := Model()
	require.NoError(t, err)

	sm := Sample{
		ID:       "s1",
		Scenario: "leap",
		Start:    sql.NullString{String: "2024-02-01 00:00:00", Valid: true},
		End:      sql.NullString{String: "2024-03-01 00:00:00", Valid: true},
	}
	require.NoError(t, s.InsertSample(ctx, sm))
	require.NoError(t, s.InsertSample(ctx, Sample{ID: "s2", Scenario: "leap", Seq: 1}))

	c := querysql.NewSQLCompiler(m)
	query, params, err := c.Compile(queryir.Select{
		From:     "samples",
		Bindings: map[string]string{"id": "id"},
		Computed: map[string]queryir.Expr{
			"days":   dbfunc.Call(datediff.Day, queryir.Field{Name: "start_at"}, queryir.Field{Name: "end_at"}),
			"months": dbfunc.Call(datediff.Month, queryir.Field{Name: "start_at"}, queryir.Field{Name: "end_at"}),
		},
	})
	require.NoError(t, err)

	rows, err := s.Query(ctx, query, params...)
	require.NoError(t, err)
	defer rows.Close()

	type result struct {
		id     string
		days   sql.Null[int32]
		months sql.Null[int32]
	}
	var got []result
	for rows.Next() {
		var r result
		require.NoError(t, rows.Scan(&r.id, &r.days, &r.months))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []result{
		{id: "s1", days: sql.Null[int32]{V: 29, Valid: true}, months: sql.Null[int32]{V: 1, Valid: true}},
		{id: "s2"},
	}, got)
}

func TestScanPeople(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	bday := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	id, err := s.InsertPerson(ctx, Person{Name: "Ada", Birthday: birthday(bday)})
	require.NoError(t, err)

	rows, err := s.Query(ctx, `SELECT birthday, id, name, day FROM people ORDER BY id ASC COLLATE BINARY`)
	require.NoError(t, err)
	defer rows.Close()

	people, err := ScanPeople(rows)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, id, people[0].ID)
	assert.Equal(t, "Ada", people[0].Name)
	assert.True(t, bday.Equal(people[0].Birthday.V.Time))
}

func TestScanPeople_MissingColumns(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.InsertPerson(ctx, Person{Name: "Ada"})
	require.NoError(t, err)

	rows, err := s.Query(ctx, `SELECT id FROM people ORDER BY id ASC COLLATE BINARY`)
	require.NoError(t, err)
	defer rows.Close()

	_, err = ScanPeople(rows)
	assert.Error(t, err)
}
