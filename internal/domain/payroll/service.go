package payroll

import "context"

// Service drives payroll run calculation and lifecycle. The organization is
// resolved from the caller's JWT claims.
type Service interface {
	CalculateRun(ctx context.Context, req CalculateRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListRunsResponse, error)
	UpdateRunStatus(ctx context.Context, id string, req UpdateRunStatusRequest) (RunResponse, error)
}
