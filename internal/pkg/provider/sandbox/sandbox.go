package sandbox

import (
	"context"
	"fmt"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
)

// failRef is the employer reference that makes every submission fail.
// Used in development and tests to exercise the retry path.
const failRef = "fail"

// Adapter is a deterministic in-process provider. Submissions succeed
// unless the employer reference is the failure sentinel.
type Adapter struct {
	cfg       integration.ProviderConfig
	connected bool
}

func New() integration.Provider {
	return &Adapter{}
}

func (a *Adapter) Name() string {
	return "sandbox"
}

func (a *Adapter) Connect(ctx context.Context, cfg integration.ProviderConfig) error {
	a.cfg = cfg
	a.connected = true
	return nil
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	a.connected = false
	return nil
}

func (a *Adapter) ValidateConnection(ctx context.Context) error {
	if !a.connected {
		return fmt.Errorf("%w: not connected", integration.ErrConnection)
	}
	if a.cfg.EmployerReference == failRef {
		return fmt.Errorf("%w: sandbox forced failure", integration.ErrConnection)
	}
	return nil
}

func (a *Adapter) SubmitPayroll(ctx context.Context, run payroll.PayrollRun) (integration.SubmitResult, error) {
	if a.cfg.EmployerReference == failRef {
		err := fmt.Errorf("%w: sandbox forced failure", integration.ErrProvider)
		return integration.SubmitResult{Success: false, Error: err.Error()}, err
	}

	return integration.SubmitResult{
		Success:           true,
		ProviderReference: "sandbox-" + run.ID,
		Status:            integration.ProviderStatusCompleted,
		Details: map[string]interface{}{
			"provider_status": "Completed",
		},
	}, nil
}

func (a *Adapter) GetPayrollStatus(ctx context.Context, providerRef string) (integration.ProviderStatus, error) {
	if a.cfg.EmployerReference == failRef {
		return "", fmt.Errorf("%w: sandbox forced failure", integration.ErrProvider)
	}
	return integration.ProviderStatusCompleted, nil
}

func (a *Adapter) SyncEmployees(ctx context.Context) (integration.EmployeeSyncResult, error) {
	return integration.EmployeeSyncResult{Synced: 0, Skipped: 0}, nil
}

func (a *Adapter) SubmitTaxFiling(ctx context.Context, period integration.TaxFilingPeriod) (integration.SubmitResult, error) {
	if a.cfg.EmployerReference == failRef {
		err := fmt.Errorf("%w: sandbox forced failure", integration.ErrProvider)
		return integration.SubmitResult{Success: false, Error: err.Error()}, err
	}
	return integration.SubmitResult{
		Success:           true,
		ProviderReference: "sandbox-filing-" + period.TaxYear + "-" + period.Period,
		Status:            integration.ProviderStatusCompleted,
	}, nil
}

func (a *Adapter) GetTaxFilingStatus(ctx context.Context, ref string) (integration.ProviderStatus, error) {
	return integration.ProviderStatusCompleted, nil
}

func (a *Adapter) GeneratePayslips(ctx context.Context, runID string) (integration.PayslipBatch, error) {
	return integration.PayslipBatch{
		PayrollRunID: runID,
		PayslipIDs:   []string{"sandbox-payslip-" + runID},
	}, nil
}

func (a *Adapter) DownloadReports(ctx context.Context, reportType string, period integration.TaxFilingPeriod) ([]byte, error) {
	return []byte(fmt.Sprintf("sandbox report %s %s/%s", reportType, period.TaxYear, period.Period)), nil
}
