package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/datediff/internal/dbfunc"
	"github.com/roach88/datediff/internal/model"
	"github.com/roach88/datediff/internal/store"
)

// CLIError codes. E0xx cover reading CUE models and scenario files; E2xx
// cover evaluating and compiling date differences.
const (
	ErrCodeGeneric     = "E001" // no more specific code applies
	ErrCodeScanError   = "E002" // model directory could not be listed
	ErrCodeNoFiles     = "E003" // model directory holds no .cue files
	ErrCodeLoadFailed  = "E004" // CUE syntax or column spec error
	ErrCodeNotFound    = "E005" // model path does not exist
	ErrCodeBuildFailed = "E006" // tables or functions rejected by the builder
	ErrCodeWriteFailed = "E007" // golden file could not be written

	ErrCodeInvalidUnit      = "E201" // unknown date part
	ErrCodeOverflow         = "E202" // difference does not fit in int32
	ErrCodeNonConstantUnit  = "E203" // DateDiff unit is bound at run time
	ErrCodeInvalidTimestamp = "E204" // operand is not a timestamp, or kinds are mixed
	ErrCodeCompileFailed    = "E205" // DateDiff call does not compile
	ErrCodeDisagreement     = "E206" // direct and SQL results or golden trace differ
)

// LoadedModel is a model read from CUE files, with DateDiff registered.
type LoadedModel struct {
	Model     *model.Model
	Files     []string
	FileCount int
}

// LoadModel reads a CUE model from a file or from every .cue file under a
// directory. An empty path returns the store's built-in model.
//
// Declaration problems are returned together as model.ValidationError
// values; CUE errors come back as a *model.LoadError with a position.
func LoadModel(path string) (*LoadedModel, error) {
	if path == "" {
		m, err := store.Model()
		if err != nil {
			return nil, err
		}
		return &LoadedModel{Model: m}, nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &model.LoadError{Code: ErrCodeNotFound, Field: "model", Message: fmt.Sprintf("model path not found: %s", path)}
	}
	if err != nil {
		return nil, fmt.Errorf("stat model %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = FindCUEFiles(path); err != nil {
			return nil, &model.LoadError{Code: ErrCodeScanError, Field: "model", Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &model.LoadError{Code: ErrCodeNoFiles, Field: "model", Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	b := model.NewBuilder()
	for _, f := range files {
		fb, err := model.LoadCUE(f)
		if err != nil {
			return nil, err
		}
		b.Merge(fb)
	}

	m, err := dbfunc.Register(b).Build()
	if err != nil {
		return nil, err
	}
	return &LoadedModel{Model: m, Files: files, FileCount: len(files)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// modelErrors splits a LoadModel error into reportable items: one per
// declaration problem, or the error itself.
func modelErrors(err error) (code string, items []error) {
	var le *model.LoadError
	if errors.As(err, &le) {
		return loadErrorCode(le), []error{le}
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			var ve model.ValidationError
			if errors.As(e, &ve) {
				items = append(items, ve)
			}
		}
		if len(items) > 0 {
			return ErrCodeBuildFailed, items
		}
	}
	return ErrCodeGeneric, []error{err}
}

// loadErrorCode maps model load codes to the CLI's. CLI codes pass through.
func loadErrorCode(le *model.LoadError) string {
	switch le.Code {
	case model.ErrModelNotFound:
		return ErrCodeNotFound
	case model.ErrCUESyntax, model.ErrColumnSpec:
		return ErrCodeLoadFailed
	case "":
		return ErrCodeGeneric
	default:
		return le.Code
	}
}
