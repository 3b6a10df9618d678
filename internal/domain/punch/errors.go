package punch

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported import file type: only .xlsx and .csv are allowed")
	ErrEmptyImport         = errors.New("import file contains no punch rows")
	ErrTooManyRows         = errors.New("import file exceeds the maximum number of rows")
	ErrMissingColumns      = errors.New("import file is missing required columns")
	ErrArchiveNotFound     = errors.New("archived import file not found")
	ErrArchiveDisabled     = errors.New("import archive is not configured")
)
