package integration

import (
	"context"
	"fmt"
	"sync"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
)

// ProviderConfig carries the credentials an adapter needs to connect.
type ProviderConfig struct {
	APIKey            string
	BaseURL           string
	EmployerReference string
}

// SubmitResult is the tagged outcome of a submission capability. Callers
// branch on Success rather than probing Details.
type SubmitResult struct {
	Success           bool
	ProviderReference string
	Status            ProviderStatus
	Error             string
	Details           map[string]interface{}
}

// EmployeeSyncResult summarizes a provider-side employee sync.
type EmployeeSyncResult struct {
	Synced  int
	Skipped int
}

// TaxFilingPeriod identifies one filing window.
type TaxFilingPeriod struct {
	TaxYear string
	Period  string
}

// PayslipBatch references payslips generated provider-side for one run.
type PayslipBatch struct {
	PayrollRunID string
	PayslipIDs   []string
}

// Provider is the capability abstraction over third-party payroll systems.
// Implementations map their own status vocabulary onto ProviderStatus.
type Provider interface {
	Name() string
	Connect(ctx context.Context, cfg ProviderConfig) error
	Disconnect(ctx context.Context) error
	ValidateConnection(ctx context.Context) error
	SubmitPayroll(ctx context.Context, run payroll.PayrollRun) (SubmitResult, error)
	GetPayrollStatus(ctx context.Context, providerRef string) (ProviderStatus, error)
	SyncEmployees(ctx context.Context) (EmployeeSyncResult, error)
	SubmitTaxFiling(ctx context.Context, period TaxFilingPeriod) (SubmitResult, error)
	GetTaxFilingStatus(ctx context.Context, ref string) (ProviderStatus, error)
	GeneratePayslips(ctx context.Context, runID string) (PayslipBatch, error)
	DownloadReports(ctx context.Context, reportType string, period TaxFilingPeriod) ([]byte, error)
}

// Constructor builds a fresh, unconnected provider adapter.
type Constructor func() Provider

// Registry resolves a configured provider name to a constructor and fails
// fast for unknown names.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = c
}

func (r *Registry) Resolve(name string) (Provider, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, name)
	}
	return c(), nil
}

// Names lists registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	return names
}
