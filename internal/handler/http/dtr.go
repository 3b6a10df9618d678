package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/dtr"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/validator"
)

// maxImportFormMemory bounds the multipart parser's in-memory buffer.
const maxImportFormMemory = 32 << 20

type DTRHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
	Segment(w http.ResponseWriter, r *http.Request)
	Attendance(w http.ResponseWriter, r *http.Request)
	Unresolved(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	Reimport(w http.ResponseWriter, r *http.Request)
}

type dtrHandlerImpl struct {
	dtrService    dtr.DTRService
	importService punch.ImportService
}

func NewDTRHandler(dtrService dtr.DTRService, importService punch.ImportService) DTRHandler {
	return &dtrHandlerImpl{
		dtrService:    dtrService,
		importService: importService,
	}
}

// Resolve implements DTRHandler.
func (h *dtrHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	var req dtr.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if validator.IsEmpty(req.DeviceCode) && validator.IsEmpty(req.Name) {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "device_code",
			Message: "device_code or name is required",
		}})
		return
	}

	result, err := h.dtrService.ResolveIdentity(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Segment implements DTRHandler.
func (h *dtrHandlerImpl) Segment(w http.ResponseWriter, r *http.Request) {
	var req dtr.SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.dtrService.SegmentDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Attendance implements DTRHandler.
func (h *dtrHandlerImpl) Attendance(w http.ResponseWriter, r *http.Request) {
	req, err := reconcileRequestFromQuery(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.dtrService.AttendanceReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Unresolved implements DTRHandler.
func (h *dtrHandlerImpl) Unresolved(w http.ResponseWriter, r *http.Request) {
	req, err := reconcileRequestFromQuery(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	// Triage wants every unmatched punch, not a filtered report.
	req.EmployeeIDs = nil
	req.VerifyPhantomRows = false

	result, err := h.dtrService.AttendanceReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]any{
		"start_date": result.StartDate,
		"end_date":   result.EndDate,
		"unresolved": result.Unresolved,
		"invalid":    result.Invalid,
		"stats":      result.Stats,
	})
}

// Import implements DTRHandler.
func (h *dtrHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportFormMemory); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	var req punch.ImportRequest
	file, fileHeader, err := r.FormFile("file")
	if err != nil && err != http.ErrMissingFile {
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
		req.File = file
		req.Filename = fileHeader.Filename
		req.Size = fileHeader.Size
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.importService.Import(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punches imported", result)
}

// Reimport implements DTRHandler.
func (h *dtrHandlerImpl) Reimport(w http.ResponseWriter, r *http.Request) {
	var req punch.ReimportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.importService.Reimport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punches re-imported", result)
}

// reconcileRequestFromQuery reads from, to, employee_id (repeatable or
// comma-separated) and the boolean switches verify, fill_breaks, include_inactive.
func reconcileRequestFromQuery(q url.Values) (dtr.ReconcileRequest, error) {
	req := dtr.ReconcileRequest{
		StartDate: strings.TrimSpace(q.Get("from")),
		EndDate:   strings.TrimSpace(q.Get("to")),
	}
	if req.EndDate == "" {
		req.EndDate = req.StartDate
	}

	for _, raw := range q["employee_id"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.EmployeeIDs = append(req.EmployeeIDs, id)
			}
		}
	}

	var errs validator.ValidationErrors
	flags := []struct {
		name string
		dst  *bool
	}{
		{"verify", &req.VerifyPhantomRows},
		{"fill_breaks", &req.FillBreaks},
		{"include_inactive", &req.IncludeInactive},
	}
	for _, f := range flags {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be a boolean",
			})
			continue
		}
		*f.dst = v
	}

	if len(errs) > 0 {
		return req, errs
	}
	return req, nil
}
