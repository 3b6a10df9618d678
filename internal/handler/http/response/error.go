package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// DTR domain errors
	case errors.Is(err, dtr.ErrInvalidDateRange),
		errors.Is(err, dtr.ErrDateRangeTooLong),
		errors.Is(err, dtr.ErrNoPunches),
		errors.Is(err, dtr.ErrPunchesSpanManyDays):
		BadRequest(w, err.Error(), nil)

	// Punch import errors
	case errors.Is(err, punch.ErrUnsupportedFileType),
		errors.Is(err, punch.ErrEmptyImport),
		errors.Is(err, punch.ErrMissingColumns):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, punch.ErrArchiveNotFound):
		NotFound(w, "Archived import file not found")
	case errors.Is(err, punch.ErrArchiveDisabled):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, punch.ErrTooManyRows):
		BadRequest(w, "Import file exceeds the maximum number of rows", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
