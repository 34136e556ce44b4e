package model

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Validation error codes (E120-E139)
const (
	ErrEmptyName     = "E120" // table, column or function name missing
	ErrDuplicateName = "E121" // duplicate table, column or function
	ErrInvalidType   = "E122" // unknown column or parameter type
	ErrNoColumns     = "E123" // table declares no columns
	ErrNoTranslator  = "E124" // function without a translation

	ErrCUESyntax     = "E130" // CUE source does not compile
	ErrColumnSpec    = "E131" // column spec is neither a type string nor a struct
	ErrModelNotFound = "E132" // model file missing
)

// ValidationError is a declaration problem found by Builder.Validate.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// LoadError is a CUE model error with its source position.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

// formatCUEError converts the first CUE error into a LoadError with its
// position.
func formatCUEError(err error, field string) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCUESyntax, Field: field, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: ErrCUESyntax, Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
