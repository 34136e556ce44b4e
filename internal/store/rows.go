package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/datediff/internal/datediff"
)

// Person is a row of the people view.
type Person struct {
	ID       uuid.UUID
	Name     string
	Birthday sql.Null[datediff.Timestamp]
}

// Sample is one case of a conformance scenario. Start and End hold
// timestamps in the datediff text layouts; NULL means the value is absent.
type Sample struct {
	ID       string
	Scenario string
	Seq      int
	Start    sql.NullString
	End      sql.NullString
}

// InsertPerson writes p. A zero ID is replaced by a new random UUID; the
// stored ID is returned.
func (s *Store) InsertPerson(ctx context.Context, p Person) (uuid.UUID, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	// sql.Null[T] hands T itself to the driver, so the Valuer of T is
	// unwrapped here.
	var birthday any
	if p.Birthday.Valid {
		birthday = p.Birthday.V
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people_data (id, name, birthday)
		VALUES (?, ?, ?)
	`, p.ID.String(), p.Name, birthday)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert person: %w", err)
	}
	return p.ID, nil
}

// ListPeople returns every person.
//
// CRITICAL: ORDER BY id ASC COLLATE BINARY for a stable order.
func (s *Store) ListPeople(ctx context.Context) ([]Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, birthday
		FROM people
		ORDER BY id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	people, err := ScanPeople(rows)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}

// ScanPeople reads the rows of a compiled people query. Columns are matched
// by name; id and name are required, birthday is optional. The caller keeps
// ownership of rows.
func ScanPeople(rows *sql.Rows) ([]Person, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("scan people: %w", err)
	}

	var people []Person
	for rows.Next() {
		var p Person
		dest := make([]any, len(cols))
		var seenID, seenName bool
		for i, col := range cols {
			switch col {
			case "id":
				dest[i], seenID = &p.ID, true
			case "name":
				dest[i], seenName = &p.Name, true
			case "birthday":
				dest[i] = &p.Birthday
			default:
				dest[i] = new(any)
			}
		}
		if !seenID || !seenName {
			return nil, fmt.Errorf("scan people: columns %v lack id or name", cols)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan people: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan people: %w", err)
	}
	return people, nil
}

// InsertSample writes one scenario case. Rewriting a sample with the same
// ID is a no-op.
func (s *Store) InsertSample(ctx context.Context, sm Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO samples_data (id, scenario, seq, start_at, end_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sm.ID, sm.Scenario, sm.Seq, sm.Start, sm.End)
	if err != nil {
		return fmt.Errorf("insert sample %s: %w", sm.ID, err)
	}
	return nil
}
