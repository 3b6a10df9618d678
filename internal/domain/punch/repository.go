package punch

import "context"

// PunchRepository is the raw punch store.
type PunchRepository interface {
	// Query returns punches in [filter.From, filter.To) matching the key filters, oldest first.
	Query(ctx context.Context, filter PunchFilter) ([]RawPunch, error)

	// BulkInsert stores punches, silently skipping rows that collide on
	// (dedupe_key, timestamp). It returns the number of rows actually inserted.
	BulkInsert(ctx context.Context, punches []RawPunch) (int64, error)
}
