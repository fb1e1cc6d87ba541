package payroll

import (
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

type DeductionInput struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// CalculateRunRequest creates a DRAFT run from gross pay inputs.
type CalculateRunRequest struct {
	EmployeeID    string           `json:"employee_id"`
	PeriodKind    string           `json:"period_kind"`
	PeriodStart   string           `json:"period_start"`
	PeriodEnd     string           `json:"period_end"`
	HoursWorked   decimal.Decimal  `json:"hours_worked"`
	HourlyRate    decimal.Decimal  `json:"hourly_rate"`
	OvertimeHours decimal.Decimal  `json:"overtime_hours"`
	OvertimeRate  decimal.Decimal  `json:"overtime_rate"`
	Deductions    []DeductionInput `json:"deductions,omitempty"`
	Jurisdiction  string           `json:"jurisdiction"`
}

func (r *CalculateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !IsValidPeriodKind(r.PeriodKind) {
		errs = append(errs, validator.ValidationError{Field: "period_kind", Message: "must be 'weekly', 'biweekly' or 'monthly'"})
	}
	if !tax.IsValidJurisdiction(r.Jurisdiction) {
		errs = append(errs, validator.ValidationError{Field: "jurisdiction", Message: "is not a supported jurisdiction"})
	}
	if !validator.IsValidDate(r.PeriodStart) {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if !validator.IsValidDate(r.PeriodEnd) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if validator.IsValidDate(r.PeriodStart) && validator.IsValidDate(r.PeriodEnd) {
		start, _ := validator.ParseDate(r.PeriodStart)
		end, _ := validator.ParseDate(r.PeriodEnd)
		if !start.Before(end) {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be before period_end"})
		}
	}
	if r.HoursWorked.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "hours_worked", Message: "must be non-negative"})
	}
	if r.HourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "must be non-negative"})
	}
	if r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}
	if r.OvertimeRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_rate", Message: "must be non-negative"})
	}
	for _, ded := range r.Deductions {
		if validator.IsEmpty(ded.Type) {
			errs = append(errs, validator.ValidationError{Field: "deductions", Message: "every deduction needs a type"})
			break
		}
		if ded.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "deductions", Message: "amounts must be non-negative"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateRunStatusRequest moves a run to an explicit target state.
type UpdateRunStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateRunStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	switch RunStatus(r.Status) {
	case RunStatusPending, RunStatusApproved, RunStatusProcessed, RunStatusCancelled:
	default:
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'PENDING', 'APPROVED', 'PROCESSED' or 'CANCELLED'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RunFilter narrows run listings.
type RunFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Status     *RunStatus
	Page       int
	Limit      int
}

// ========== RESPONSE DTOs ==========

type RunResponse struct {
	ID                string          `json:"id"`
	OrganizationID    string          `json:"organization_id"`
	EmployeeID        string          `json:"employee_id"`
	PeriodKind        string          `json:"period_kind"`
	PeriodStart       string          `json:"period_start"`
	PeriodEnd         string          `json:"period_end"`
	BasicPay          decimal.Decimal `json:"basic_pay"`
	OvertimePay       decimal.Decimal `json:"overtime_pay"`
	GrossPay          decimal.Decimal `json:"gross_pay"`
	Deductions        []Deduction     `json:"deductions,omitempty"`
	DeductionsTotal   decimal.Decimal `json:"deductions_total"`
	Tax               decimal.Decimal `json:"tax"`
	NationalInsurance decimal.Decimal `json:"national_insurance"`
	NetPay            decimal.Decimal `json:"net_pay"`
	Jurisdiction      string          `json:"jurisdiction"`
	TaxYear           string          `json:"tax_year"`
	Status            string          `json:"status"`
	ProcessedBy       *string         `json:"processed_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func ToRunResponse(run PayrollRun) RunResponse {
	return RunResponse{
		ID:                run.ID,
		OrganizationID:    run.OrganizationID,
		EmployeeID:        run.EmployeeID,
		PeriodKind:        string(run.PeriodKind),
		PeriodStart:       run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:         run.PeriodEnd.Format("2006-01-02"),
		BasicPay:          run.BasicPay,
		OvertimePay:       run.OvertimePay,
		GrossPay:          run.GrossPay(),
		Deductions:        run.Deductions,
		DeductionsTotal:   run.DeductionsTotal,
		Tax:               run.Tax,
		NationalInsurance: run.NationalInsurance,
		NetPay:            run.NetPay,
		Jurisdiction:      string(run.Jurisdiction),
		TaxYear:           run.TaxYear,
		Status:            string(run.Status),
		ProcessedBy:       run.ProcessedBy,
		CreatedAt:         run.CreatedAt,
		UpdatedAt:         run.UpdatedAt,
	}
}

type ListRunsResponse struct {
	Data       []RunResponse `json:"data"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}
