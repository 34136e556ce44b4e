// Package model is the schema builder that query translation runs against:
// tables with typed, nullable columns plus a registry of functions whose
// calls are rewritten into native SQL.
//
// A Builder is filled in once (from Go code and optionally a CUE file) and
// frozen with Build. The resulting Model is immutable and safe to share
// between goroutines.
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/queryir"
)

// Column describes one column of a table or view.
type Column struct {
	Name     string
	Type     queryir.Type
	Nullable bool
}

// Table is a named set of columns, in declaration order.
type Table struct {
	Name    string
	Columns []Column
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// TranslateContext is what a translator may ask about its arguments.
type TranslateContext interface {
	// Constant returns the value of e when e is a compile-time constant.
	Constant(e queryir.Expr) (ir.IRValue, bool)

	// Nullable reports whether e may evaluate to NULL.
	Nullable(e queryir.Expr) bool
}

// Translator rewrites the arguments of a Call into a native expression.
// It must not modify args and must not perform I/O.
type Translator func(ctx TranslateContext, args []queryir.Expr) (queryir.Expr, error)

// Function is a host-level function that queries may call.
type Function struct {
	Name      string
	Params    []queryir.Type
	Result    queryir.Type
	Translate Translator
}

// Builder accumulates tables and functions. Calls chain:
//
//	m, err := model.NewBuilder().
//		Table("people", model.Column{Name: "id", Type: queryir.TypeString}).
//		HasFunction(fn).
//		Build()
type Builder struct {
	tables    []Table
	functions []Function
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Table declares a table.
func (b *Builder) Table(name string, columns ...Column) *Builder {
	b.tables = append(b.tables, Table{Name: name, Columns: slices.Clone(columns)})
	return b
}

// HasFunction registers a function definition.
func (b *Builder) HasFunction(f Function) *Builder {
	f.Params = slices.Clone(f.Params)
	b.functions = append(b.functions, f)
	return b
}

// Merge appends everything declared in other.
func (b *Builder) Merge(other *Builder) *Builder {
	for _, t := range other.tables {
		b.Table(t.Name, t.Columns...)
	}
	for _, f := range other.functions {
		b.HasFunction(f)
	}
	return b
}

// Validate returns every problem with the declarations. It does not stop at
// the first error.
func (b *Builder) Validate() []ValidationError {
	var errs []ValidationError

	tables := make(map[string]bool)
	for _, t := range b.tables {
		field := "table." + t.Name
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, ValidationError{Field: "table", Message: "table name is required", Code: ErrEmptyName})
			continue
		}
		if tables[t.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "table declared more than once", Code: ErrDuplicateName})
		}
		tables[t.Name] = true

		if len(t.Columns) == 0 {
			errs = append(errs, ValidationError{Field: field, Message: "table has no columns", Code: ErrNoColumns})
		}
		cols := make(map[string]bool)
		for _, c := range t.Columns {
			if strings.TrimSpace(c.Name) == "" {
				errs = append(errs, ValidationError{Field: field, Message: "column name is required", Code: ErrEmptyName})
				continue
			}
			if cols[c.Name] {
				errs = append(errs, ValidationError{Field: field + "." + c.Name, Message: "column declared more than once", Code: ErrDuplicateName})
			}
			cols[c.Name] = true
			if _, err := queryir.ParseType(string(c.Type)); err != nil {
				errs = append(errs, ValidationError{Field: field + "." + c.Name, Message: err.Error(), Code: ErrInvalidType})
			}
		}
	}

	funcs := make(map[string]bool)
	for _, f := range b.functions {
		field := "function." + f.Name
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, ValidationError{Field: "function", Message: "function name is required", Code: ErrEmptyName})
			continue
		}
		if funcs[f.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "function registered more than once", Code: ErrDuplicateName})
		}
		funcs[f.Name] = true
		if f.Translate == nil {
			errs = append(errs, ValidationError{Field: field, Message: "function has no translation", Code: ErrNoTranslator})
		}
		for i, p := range f.Params {
			if _, err := queryir.ParseType(string(p)); err != nil {
				errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.params[%d]", field, i), Message: err.Error(), Code: ErrInvalidType})
			}
		}
		if _, err := queryir.ParseType(string(f.Result)); err != nil {
			errs = append(errs, ValidationError{Field: field + ".result", Message: err.Error(), Code: ErrInvalidType})
		}
	}

	return errs
}

// Build validates the declarations and freezes them into a Model.
func (b *Builder) Build() (*Model, error) {
	if verrs := b.Validate(); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	m := &Model{
		tables:    make(map[string]Table, len(b.tables)),
		functions: make(map[string]Function, len(b.functions)),
	}
	for _, t := range b.tables {
		m.tables[t.Name] = Table{Name: t.Name, Columns: slices.Clone(t.Columns)}
	}
	for _, f := range b.functions {
		f.Params = slices.Clone(f.Params)
		m.functions[f.Name] = f
	}
	return m, nil
}

// Model is a frozen set of tables and functions.
type Model struct {
	tables    map[string]Table
	functions map[string]Function
}

// Table looks up a table by name.
func (m *Model) Table(name string) (Table, bool) {
	t, ok := m.tables[name]
	if !ok {
		return Table{}, false
	}
	return Table{Name: t.Name, Columns: slices.Clone(t.Columns)}, true
}

// Function looks up a function by name.
func (m *Model) Function(name string) (Function, bool) {
	f, ok := m.functions[name]
	if !ok {
		return Function{}, false
	}
	f.Params = slices.Clone(f.Params)
	return f, true
}

// Tables returns all tables sorted by name.
func (m *Model) Tables() []Table {
	out := make([]Table, 0, len(m.tables))
	for _, name := range sortedKeys(m.tables) {
		t, _ := m.Table(name)
		out = append(out, t)
	}
	return out
}

// Functions returns all functions sorted by name.
func (m *Model) Functions() []Function {
	out := make([]Function, 0, len(m.functions))
	for _, name := range sortedKeys(m.functions) {
		f, _ := m.Function(name)
		out = append(out, f)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
