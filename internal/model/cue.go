package model

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/datediff/internal/queryir"
)

// ParseCUE reads table declarations from CUE source. Columns are written
// either as a type string, with a trailing "?" for nullable, or as a struct:
//
//	table: people: {
//		id:       "string"
//		birthday: "timestamp?"
//		note:     {type: "string", nullable: true}
//	}
//
// Functions cannot be declared in CUE; register them on the returned
// Builder.
func ParseCUE(filename string, src []byte) (*Builder, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "cue")
	}

	b := NewBuilder()
	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return b, nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err, "table")
	}
	for iter.Next() {
		name := iter.Label()
		cols, err := parseColumns(iter.Value(), "table."+name)
		if err != nil {
			return nil, err
		}
		b.Table(name, cols...)
	}
	return b, nil
}

// LoadCUE reads a model file from disk.
func LoadCUE(path string) (*Builder, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrModelNotFound, Field: "model", Message: fmt.Sprintf("model file not found: %s", path)}
	}
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseCUE(path, src)
}

func parseColumns(v cue.Value, field string) ([]Column, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err, field)
	}

	var cols []Column
	for iter.Next() {
		name := iter.Label()
		col, err := parseColumn(name, iter.Value(), field+"."+name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func parseColumn(name string, v cue.Value, field string) (Column, error) {
	if s, err := v.String(); err == nil {
		typeName, nullable := strings.CutSuffix(strings.TrimSpace(s), "?")
		return columnOf(name, typeName, nullable, v, field)
	}

	if v.IncompleteKind() != cue.StructKind {
		return Column{}, &LoadError{
			Code:    ErrColumnSpec,
			Field:   field,
			Message: "column must be a type string or {type, nullable}",
			Pos:     v.Pos(),
		}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	typeName, err := typeVal.String()
	if err != nil {
		return Column{}, &LoadError{Code: ErrColumnSpec, Field: field + ".type", Message: "type is required and must be a string", Pos: v.Pos()}
	}
	nullable := false
	if nv := v.LookupPath(cue.ParsePath("nullable")); nv.Exists() {
		nullable, err = nv.Bool()
		if err != nil {
			return Column{}, formatCUEError(err, field+".nullable")
		}
	}
	return columnOf(name, typeName, nullable, typeVal, field)
}

func columnOf(name, typeName string, nullable bool, v cue.Value, field string) (Column, error) {
	t, err := queryir.ParseType(typeName)
	if err != nil {
		return Column{}, &LoadError{Code: ErrInvalidType, Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return Column{Name: name, Type: t, Nullable: nullable}, nil
}
