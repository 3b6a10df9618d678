package dtr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/importer"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/storage"
	"github.com/google/uuid"
)

type ImportServiceImpl struct {
	punch.PunchRepository
	roster.RosterRepository
	archive  storage.FileStorage
	location *time.Location
	maxRows  int
}

// NewImportService wires the bulk importer. archive may be nil to skip keeping uploads.
func NewImportService(
	punchRepo punch.PunchRepository,
	rosterRepo roster.RosterRepository,
	archive storage.FileStorage,
	location *time.Location,
	maxRows int,
) punch.ImportService {
	if location == nil {
		location = time.UTC
	}
	return &ImportServiceImpl{
		PunchRepository:  punchRepo,
		RosterRepository: rosterRepo,
		archive:          archive,
		location:         location,
		maxRows:          maxRows,
	}
}

// Import implements punch.ImportService.
func (s *ImportServiceImpl) Import(ctx context.Context, req punch.ImportRequest) (punch.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return punch.ImportResult{}, err
	}

	data, err := io.ReadAll(req.File)
	if err != nil {
		return punch.ImportResult{}, fmt.Errorf("failed to read import file: %w", err)
	}

	result, err := s.ingest(ctx, req.Filename, data)
	if err != nil {
		return punch.ImportResult{}, err
	}

	if s.archive != nil {
		ext := strings.ToLower(filepath.Ext(req.Filename))
		path := fmt.Sprintf("imports/%s/%s%s", time.Now().In(s.location).Format("2006/01"), result.BatchID, ext)
		archivePath, err := s.archive.Upload(ctx, bytes.NewReader(data), path, contentTypeFor(ext))
		if err != nil {
			// The archive is an audit copy; the rows are already stored.
			slog.Error("Failed to archive import file", "batch_id", result.BatchID, "error", err)
		} else {
			result.ArchivePath = archivePath
		}
	}

	slog.Info("Imported biometric punches",
		"batch_id", result.BatchID,
		"file", req.Filename,
		"total", result.Total,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"invalid", len(result.Invalid),
		"unresolved", result.Unresolved,
	)
	return result, nil
}

// Reimport implements punch.ImportService.
func (s *ImportServiceImpl) Reimport(ctx context.Context, req punch.ReimportRequest) (punch.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return punch.ImportResult{}, err
	}
	if s.archive == nil {
		return punch.ImportResult{}, punch.ErrArchiveDisabled
	}

	exists, err := s.archive.Exists(ctx, req.ArchivePath)
	if err != nil {
		return punch.ImportResult{}, fmt.Errorf("%w: %v", punch.ErrArchiveNotFound, err)
	}
	if !exists {
		return punch.ImportResult{}, punch.ErrArchiveNotFound
	}

	rc, err := s.archive.Download(ctx, req.ArchivePath)
	if err != nil {
		return punch.ImportResult{}, fmt.Errorf("failed to open archived import: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return punch.ImportResult{}, fmt.Errorf("failed to read archived import: %w", err)
	}

	result, err := s.ingest(ctx, req.ArchivePath, data)
	if err != nil {
		return punch.ImportResult{}, err
	}
	result.ArchivePath = req.ArchivePath

	slog.Info("Re-imported biometric punches",
		"batch_id", result.BatchID,
		"archive_path", req.ArchivePath,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
	)
	return result, nil
}

// ingest parses a raw upload and stores its rows under a fresh batch ID.
func (s *ImportServiceImpl) ingest(ctx context.Context, filename string, data []byte) (punch.ImportResult, error) {
	rows, err := importer.Parse(filename, bytes.NewReader(data), s.location)
	if err != nil {
		return punch.ImportResult{}, err
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return punch.ImportResult{}, fmt.Errorf("%w: %d rows, limit %d", punch.ErrTooManyRows, len(rows), s.maxRows)
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return punch.ImportResult{}, fmt.Errorf("failed to generate batch id: %w", err)
	}
	return s.ImportRows(ctx, rows, batchID.String())
}

// ImportRows implements punch.ImportService. Rows with malformed timestamps are
// reported, duplicates (within the batch or already stored) are skipped and
// counted; neither aborts the import.
func (s *ImportServiceImpl) ImportRows(ctx context.Context, rows []punch.RawPunch, batchID string) (punch.ImportResult, error) {
	employees, err := s.RosterRepository.ListEmployees(ctx, false)
	if err != nil {
		return punch.ImportResult{}, fmt.Errorf("failed to list roster: %w", err)
	}
	idx := NewRosterIndex(employees)

	result := punch.ImportResult{
		BatchID: batchID,
		Total:   len(rows),
		Invalid: []punch.InvalidRow{},
	}

	seen := make(map[string]struct{}, len(rows))
	pending := make([]punch.RawPunch, 0, len(rows))
	for _, p := range rows {
		p = withKeys(p)
		if !p.HasValidTimestamp() {
			result.Invalid = append(result.Invalid, punch.NewInvalidRow(p, reasonMalformedTimestamp))
			continue
		}

		res := ResolveKeys(idx, p.DigitKey, p.NameKey)
		if res.Resolved() {
			name := res.Identity.FullName
			p.ResolvedName = &name
		} else {
			result.Unresolved++
		}
		p.DedupeKey = dedupeKey(p)
		if batchID != "" {
			id := batchID
			p.BatchID = &id
		}

		natural := p.DedupeKey + "@" + p.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, dup := seen[natural]; dup {
			result.Skipped++
			continue
		}
		seen[natural] = struct{}{}
		pending = append(pending, p)
	}

	if len(pending) > 0 {
		inserted, err := s.PunchRepository.BulkInsert(ctx, pending)
		if err != nil {
			return punch.ImportResult{}, fmt.Errorf("failed to store punches: %w", err)
		}
		result.Inserted = int(inserted)
		result.Skipped += len(pending) - int(inserted)
	}

	return result, nil
}

// dedupeKey is the "who" half of the (who, when) duplicate key. It is built
// from the row's own normalized code and name only, so a roster change never
// re-keys a punch that is already stored.
func dedupeKey(p punch.RawPunch) string {
	parts := make([]string, 0, 2)
	if p.DigitKey != "" {
		parts = append(parts, "code:"+p.DigitKey)
	}
	if p.NameKey != "" {
		parts = append(parts, "name:"+p.NameKey)
	}
	if len(parts) == 0 {
		return "raw:" + strings.ToLower(strings.TrimSpace(p.DeviceCode))
	}
	return strings.Join(parts, "|")
}

func contentTypeFor(ext string) string {
	if ext == ".xlsx" {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
