package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeRetryExhausted       NotificationType = "retry_exhausted"
	TypeIntegrationUnhealthy NotificationType = "integration_unhealthy"
	TypeSubmissionFailed     NotificationType = "submission_failed"
	TypePayrollProcessed     NotificationType = "payroll_processed"
	TypePayslipGenerated     NotificationType = "payslip_generated"
	TypeTaxFiled             NotificationType = "tax_filed"
)

// Severity represents operator-facing urgency
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Notification represents a notification entity
type Notification struct {
	ID             string
	OrganizationID string
	Type           NotificationType
	Severity       Severity
	Title          string
	Message        string
	Data           map[string]interface{}
	IsRead         bool
	ReadAt         *time.Time
	CreatedAt      time.Time
}
