package dtr

import "context"

// DTRService exposes biometric attendance reconciliation to the HTTP and report layers.
type DTRService interface {
	// ResolveIdentity matches one device code / name pair against the current roster.
	ResolveIdentity(ctx context.Context, req ResolveRequest) (ResolveResponse, error)

	// SegmentDay classifies one employee's punches for one day into the four DTR fields.
	SegmentDay(ctx context.Context, req SegmentRequest) (SegmentResponse, error)

	// ReconcileRange resolves and segments every punch in the range.
	ReconcileRange(ctx context.Context, req ReconcileRequest) (ReconcileResult, error)

	// AttendanceReport runs ReconcileRange and maps the result to report rows,
	// applying the break default policy when req.FillBreaks is set.
	AttendanceReport(ctx context.Context, req ReconcileRequest) (ReconcileResponse, error)
}
