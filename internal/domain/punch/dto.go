package punch

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/validator"
)

var allowedImportExtensions = []string{".xlsx", ".csv"}

type ImportRequest struct {
	Filename string
	Size     int64
	File     io.Reader
}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil || validator.IsEmpty(r.Filename) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "import file is required",
		})
	} else {
		ext := strings.ToLower(filepath.Ext(r.Filename))
		if !validator.IsInSlice(ext, allowedImportExtensions) {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "invalid file type: only xlsx, csv allowed",
			})
		} else if r.Size > 20<<20 { // 20MB
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "import file size must not exceed 20MB",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReimportRequest struct {
	ArchivePath string `json:"archive_path"`
}

func (r *ReimportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ArchivePath) {
		errs = append(errs, validator.ValidationError{
			Field:   "archive_path",
			Message: "archive_path is required",
		})
	} else if !validator.IsInSlice(strings.ToLower(filepath.Ext(r.ArchivePath)), allowedImportExtensions) {
		errs = append(errs, validator.ValidationError{
			Field:   "archive_path",
			Message: "invalid file type: only xlsx, csv allowed",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ImportResult reports the outcome of a bulk import. Duplicates are counted, never raised.
type ImportResult struct {
	BatchID     string       `json:"batch_id"`
	Total       int          `json:"total"`
	Inserted    int          `json:"inserted"`
	Skipped     int          `json:"skipped"`
	Unresolved  int          `json:"unresolved"`
	Invalid     []InvalidRow `json:"invalid"`
	ArchivePath string       `json:"archive_path,omitempty"`
}
