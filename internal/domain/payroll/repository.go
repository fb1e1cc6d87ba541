package payroll

import "context"

// RunRepository defines data access for payroll runs. All reads and writes
// are scoped by organizationID to prevent cross-organization access.
type RunRepository interface {
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetByID(ctx context.Context, id string, organizationID string) (PayrollRun, error)
	List(ctx context.Context, organizationID string, filter RunFilter) ([]PayrollRun, int64, error)

	// UpdateStatus performs the transition atomically; it fails with
	// ErrInvalidTransition when the stored status does not allow target.
	UpdateStatus(ctx context.Context, id string, organizationID string, target RunStatus, processedBy *string) (PayrollRun, error)
}
