package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dragsort/internal/compiler"
	"github.com/roach88/dragsort/internal/ir"
)

// LoadMode controls how errors are handled during catalogue loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a catalogue directory.
type LoadResult struct {
	Catalogue *ir.Catalogue
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during catalogue loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCatalogue loads and compiles the CUE catalogue in dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, every section and task is compiled and
// all errors are returned together.
//
// A nil result means nothing could be loaded at all.
func LoadCatalogue(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalogue directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalogue directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, err := compiler.LoadDir(dir)
	if err != nil {
		code := ErrCodeLoadFailed
		if errors.Is(err, compiler.ErrCUEBuild) {
			code = ErrCodeBuildFailed
		}
		return nil, []error{&LoadError{Code: code, Message: err.Error()}}
	}

	result := &LoadResult{
		Catalogue: &ir.Catalogue{},
		CUEValue:  value,
		FileCount: len(cueFiles),
	}
	cat := result.Catalogue

	// fail records err and reports whether loading must stop.
	fail := func(err error, context string) bool {
		errs = append(errs, convertCompileError(err, context))
		return mode == LoadModeFailFast
	}

	sectionsVal := value.LookupPath(cue.ParsePath("section"))
	if sectionsVal.Exists() {
		iter, iterErr := sectionsVal.Fields()
		if iterErr != nil {
			if fail(iterErr, "section") {
				return result, errs
			}
		} else {
			for iter.Next() {
				section, compileErr := compiler.CompileSection(iter.Value())
				if compileErr != nil {
					if fail(compileErr, "section."+iter.Label()) {
						return result, errs
					}
					continue
				}
				cat.Sections = append(cat.Sections, section)
			}
		}
	}

	tasksVal := value.LookupPath(cue.ParsePath("tasks"))
	if tasksVal.Exists() {
		iter, iterErr := tasksVal.Fields()
		if iterErr != nil {
			if fail(iterErr, "tasks") {
				return result, errs
			}
		} else {
			for iter.Next() {
				categoryID := iter.Label()
				list, listErr := iter.Value().List()
				if listErr != nil {
					if fail(listErr, "tasks."+categoryID) {
						return result, errs
					}
					continue
				}
				for i := 0; list.Next(); i++ {
					task, compileErr := compiler.CompileTask(categoryID, list.Value())
					if compileErr != nil {
						if fail(compileErr, fmt.Sprintf("tasks.%s[%d]", categoryID, i)) {
							return result, errs
						}
						continue
					}
					cat.Tasks = append(cat.Tasks, task)
				}
			}
		}
	}

	if len(cat.Sections) == 0 && len(cat.Tasks) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no sections or tasks found in catalogue"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
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
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
// Compile errors reuse the compiler's validation codes for the same
// part of the catalogue.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDatabase    = "E008" // Database open/read/write error
)

// MapFieldToErrorCode maps a compiler error field to an error code.
//
// Fields look like "section.logic.title", "section.logic.category.x.total",
// "tasks.math_compare.cmp_01.template" or "categories[2]".
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.Contains(field, ".category."):
		return compiler.ErrCategoryInvalid
	case strings.HasPrefix(field, "section."):
		return compiler.ErrSectionInvalid
	case strings.HasPrefix(field, "tasks."):
		return compiler.ErrTaskInvalid
	case field == "template", strings.HasPrefix(field, "categories"),
		strings.HasPrefix(field, "zones"), strings.HasPrefix(field, "items"):
		return compiler.ErrTaskInvalid
	default:
		return ErrCodeGeneric
	}
}
