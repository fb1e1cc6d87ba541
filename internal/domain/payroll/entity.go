package payroll

import (
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// PeriodKind enum
type PeriodKind string

const (
	PeriodWeekly   PeriodKind = "weekly"
	PeriodBiweekly PeriodKind = "biweekly"
	PeriodMonthly  PeriodKind = "monthly"
)

// IsValidPeriodKind reports whether s names a known period kind.
func IsValidPeriodKind(s string) bool {
	switch PeriodKind(s) {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly:
		return true
	}
	return false
}

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft     RunStatus = "DRAFT"
	RunStatusPending   RunStatus = "PENDING"
	RunStatusApproved  RunStatus = "APPROVED"
	RunStatusProcessed RunStatus = "PROCESSED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusProcessed || s == RunStatusCancelled
}

// CanTransitionTo enforces the run lifecycle:
// DRAFT -> PENDING -> APPROVED -> PROCESSED, with CANCELLED reachable from
// any non-terminal state.
func (s RunStatus) CanTransitionTo(target RunStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == RunStatusCancelled {
		return true
	}
	switch s {
	case RunStatusDraft:
		return target == RunStatusPending
	case RunStatusPending:
		return target == RunStatusApproved
	case RunStatusApproved:
		return target == RunStatusProcessed
	}
	return false
}

// Deduction is one line item withheld from a run.
type Deduction struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// PayrollRun is one employee's pay for one period. Status is owned by the
// record store and only changes through UpdateStatus.
type PayrollRun struct {
	ID                string
	OrganizationID    string
	EmployeeID        string
	PeriodKind        PeriodKind
	PeriodStart       time.Time
	PeriodEnd         time.Time
	BasicPay          decimal.Decimal
	OvertimePay       decimal.Decimal
	Deductions        []Deduction
	DeductionsTotal   decimal.Decimal
	Tax               decimal.Decimal
	NationalInsurance decimal.Decimal
	NetPay            decimal.Decimal
	Jurisdiction      tax.Jurisdiction
	TaxYear           string
	Status            RunStatus
	ProcessedBy       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GrossPay returns basic plus overtime pay.
func (r PayrollRun) GrossPay() decimal.Decimal {
	return r.BasicPay.Add(r.OvertimePay)
}
