package staffology

import (
	"context"
	"fmt"
	"net/http"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// payRunRequest is the wire shape Staffology expects for a pay run line.
type payRunRequest struct {
	ExternalID        string          `json:"externalId"`
	EmployeeID        string          `json:"employeeId"`
	PayPeriod         string          `json:"payPeriod"`
	PeriodStart       string          `json:"periodStart"`
	PeriodEnd         string          `json:"periodEnd"`
	BasicPay          decimal.Decimal `json:"basicPay"`
	OvertimePay       decimal.Decimal `json:"overtimePay"`
	Tax               decimal.Decimal `json:"tax"`
	NationalInsurance decimal.Decimal `json:"nationalInsurance"`
	Deductions        decimal.Decimal `json:"deductions"`
	NetPay            decimal.Decimal `json:"netPay"`
	TaxYear           string          `json:"taxYear"`
}

type payRunResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

func (c *Client) SubmitPayroll(ctx context.Context, run payroll.PayrollRun) (integration.SubmitResult, error) {
	req := payRunRequest{
		ExternalID:        run.ID,
		EmployeeID:        run.EmployeeID,
		PayPeriod:         string(run.PeriodKind),
		PeriodStart:       run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:         run.PeriodEnd.Format("2006-01-02"),
		BasicPay:          run.BasicPay,
		OvertimePay:       run.OvertimePay,
		Tax:               run.Tax,
		NationalInsurance: run.NationalInsurance,
		Deductions:        run.DeductionsTotal,
		NetPay:            run.NetPay,
		TaxYear:           run.TaxYear,
	}

	var resp payRunResponse
	path := fmt.Sprintf("/employers/%s/payruns", c.employerRef)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return integration.SubmitResult{Success: false, Error: err.Error()}, err
	}

	return integration.SubmitResult{
		Success:           true,
		ProviderReference: resp.ID,
		Status:            mapStatus(resp.Status),
		Details: map[string]interface{}{
			"provider_status": resp.Status,
			"url":             resp.URL,
		},
	}, nil
}

func (c *Client) GetPayrollStatus(ctx context.Context, providerRef string) (integration.ProviderStatus, error) {
	var resp payRunResponse
	path := fmt.Sprintf("/employers/%s/payruns/%s", c.employerRef, providerRef)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return mapStatus(resp.Status), nil
}

type employeeListResponse struct {
	Employees []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"employees"`
}

func (c *Client) SyncEmployees(ctx context.Context) (integration.EmployeeSyncResult, error) {
	var resp employeeListResponse
	path := fmt.Sprintf("/employers/%s/employees", c.employerRef)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return integration.EmployeeSyncResult{}, err
	}

	result := integration.EmployeeSyncResult{}
	for _, emp := range resp.Employees {
		if emp.Status == "Current" {
			result.Synced++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

type taxFilingRequest struct {
	TaxYear string `json:"taxYear"`
	Period  string `json:"period"`
}

func (c *Client) SubmitTaxFiling(ctx context.Context, period integration.TaxFilingPeriod) (integration.SubmitResult, error) {
	var resp payRunResponse
	path := fmt.Sprintf("/employers/%s/rti/fps", c.employerRef)
	req := taxFilingRequest{TaxYear: period.TaxYear, Period: period.Period}
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return integration.SubmitResult{Success: false, Error: err.Error()}, err
	}

	return integration.SubmitResult{
		Success:           true,
		ProviderReference: resp.ID,
		Status:            mapStatus(resp.Status),
	}, nil
}

func (c *Client) GetTaxFilingStatus(ctx context.Context, ref string) (integration.ProviderStatus, error) {
	var resp payRunResponse
	path := fmt.Sprintf("/employers/%s/rti/fps/%s", c.employerRef, ref)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return mapStatus(resp.Status), nil
}

type payslipBatchResponse struct {
	PayslipIDs []string `json:"payslipIds"`
}

func (c *Client) GeneratePayslips(ctx context.Context, runID string) (integration.PayslipBatch, error) {
	var resp payslipBatchResponse
	path := fmt.Sprintf("/employers/%s/payruns/%s/payslips", c.employerRef, runID)
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return integration.PayslipBatch{}, err
	}
	return integration.PayslipBatch{PayrollRunID: runID, PayslipIDs: resp.PayslipIDs}, nil
}

func (c *Client) DownloadReports(ctx context.Context, reportType string, period integration.TaxFilingPeriod) ([]byte, error) {
	path := fmt.Sprintf("/employers/%s/reports/%s?taxYear=%s&period=%s",
		c.employerRef, reportType, period.TaxYear, period.Period)

	var raw map[string]interface{}
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	if content, ok := raw["content"].(string); ok {
		return []byte(content), nil
	}
	return nil, fmt.Errorf("%w: report %s has no content", integration.ErrProvider, reportType)
}
