package integration

import (
	"context"
	"testing"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopProvider struct{}

func (nopProvider) Name() string                                   { return "nop" }
func (nopProvider) Connect(context.Context, ProviderConfig) error  { return nil }
func (nopProvider) Disconnect(context.Context) error               { return nil }
func (nopProvider) ValidateConnection(context.Context) error       { return nil }
func (nopProvider) SubmitPayroll(context.Context, payroll.PayrollRun) (SubmitResult, error) {
	return SubmitResult{Success: true}, nil
}
func (nopProvider) GetPayrollStatus(context.Context, string) (ProviderStatus, error) {
	return ProviderStatusCompleted, nil
}
func (nopProvider) SyncEmployees(context.Context) (EmployeeSyncResult, error) {
	return EmployeeSyncResult{}, nil
}
func (nopProvider) SubmitTaxFiling(context.Context, TaxFilingPeriod) (SubmitResult, error) {
	return SubmitResult{Success: true}, nil
}
func (nopProvider) GetTaxFilingStatus(context.Context, string) (ProviderStatus, error) {
	return ProviderStatusCompleted, nil
}
func (nopProvider) GeneratePayslips(context.Context, string) (PayslipBatch, error) {
	return PayslipBatch{}, nil
}
func (nopProvider) DownloadReports(context.Context, string, TaxFilingPeriod) ([]byte, error) {
	return nil, nil
}

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry()
	registry.Register("nop", func() Provider { return nopProvider{} })

	adapter, err := registry.Resolve("nop")
	require.NoError(t, err)
	assert.Equal(t, "nop", adapter.Name())
}

func TestRegistry_ResolveUnsupported(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve("ghost")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestRegistry_ResolveReturnsFreshInstances(t *testing.T) {
	registry := NewRegistry()
	built := 0
	registry.Register("nop", func() Provider {
		built++
		return nopProvider{}
	})

	_, err := registry.Resolve("nop")
	require.NoError(t, err)
	_, err = registry.Resolve("nop")
	require.NoError(t, err)
	assert.Equal(t, 2, built)
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	registry.Register("a", func() Provider { return nopProvider{} })
	registry.Register("b", func() Provider { return nopProvider{} })

	assert.ElementsMatch(t, []string{"a", "b"}, registry.Names())
}
