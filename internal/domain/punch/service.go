package punch

import "context"

// ImportService ingests parsed punch files into the punch store.
type ImportService interface {
	Import(ctx context.Context, req ImportRequest) (ImportResult, error)
	ImportRows(ctx context.Context, rows []RawPunch, batchID string) (ImportResult, error)
	// Reimport replays an archived upload under a new batch. Rows already
	// stored are skipped, so replaying a file never duplicates a punch.
	Reimport(ctx context.Context, req ReimportRequest) (ImportResult, error)
}
