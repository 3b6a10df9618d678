package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// insertBatchSize bounds the number of statements queued in one pgx.Batch.
const insertBatchSize = 1000

type punchRepositoryImpl struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) punch.PunchRepository {
	return &punchRepositoryImpl{db: db}
}

// Query implements punch.PunchRepository.
func (r *punchRepositoryImpl) Query(ctx context.Context, filter punch.PunchFilter) ([]punch.RawPunch, error) {
	q := GetQuerier(ctx, r.db)

	where := "punched_at >= $1 AND punched_at < $2"
	args := []interface{}{filter.From, filter.To}
	argIdx := 3

	switch {
	case len(filter.DigitKeys) > 0 && len(filter.NameKeys) > 0:
		where += fmt.Sprintf(" AND (digit_key = ANY($%d) OR name_key = ANY($%d))", argIdx, argIdx+1)
		args = append(args, filter.DigitKeys, filter.NameKeys)
	case len(filter.DigitKeys) > 0:
		where += fmt.Sprintf(" AND digit_key = ANY($%d)", argIdx)
		args = append(args, filter.DigitKeys)
	case len(filter.NameKeys) > 0:
		where += fmt.Sprintf(" AND name_key = ANY($%d)", argIdx)
		args = append(args, filter.NameKeys)
	}

	query := `
		SELECT id, device_code, raw_name, punched_at, raw_timestamp, device_state,
			   digit_key, name_key, dedupe_key, resolved_name, batch_id, created_at
		FROM biometric_punches
		WHERE ` + where + `
		ORDER BY punched_at, id
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	punches := make([]punch.RawPunch, 0)
	for rows.Next() {
		var p punch.RawPunch
		if err := rows.Scan(
			&p.ID, &p.DeviceCode, &p.RawName, &p.Timestamp, &p.RawTimestamp, &p.DeviceState,
			&p.DigitKey, &p.NameKey, &p.DedupeKey, &p.ResolvedName, &p.BatchID, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punches: %w", err)
	}

	return punches, nil
}

// BulkInsert implements punch.PunchRepository. Conflicts on (dedupe_key, punched_at)
// are skipped by the database so concurrent importers cannot double insert.
func (r *punchRepositoryImpl) BulkInsert(ctx context.Context, punches []punch.RawPunch) (int64, error) {
	if len(punches) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO biometric_punches (
			device_code, raw_name, punched_at, raw_timestamp, device_state,
			digit_key, name_key, dedupe_key, resolved_name, batch_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (dedupe_key, punched_at) DO NOTHING
	`

	var inserted int64
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		for start := 0; start < len(punches); start += insertBatchSize {
			end := min(start+insertBatchSize, len(punches))

			batch := &pgx.Batch{}
			for _, p := range punches[start:end] {
				batch.Queue(query,
					p.DeviceCode, p.RawName, p.Timestamp, p.RawTimestamp, p.DeviceState,
					p.DigitKey, p.NameKey, p.DedupeKey, p.ResolvedName, p.BatchID,
				)
			}

			results := q.SendBatch(ctx, batch)
			for i := start; i < end; i++ {
				tag, err := results.Exec()
				if err != nil {
					results.Close()
					return fmt.Errorf("failed to insert punch %d: %w", i, err)
				}
				inserted += tag.RowsAffected()
			}
			if err := results.Close(); err != nil {
				return fmt.Errorf("failed to close insert batch: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}
