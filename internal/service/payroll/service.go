package payroll

import (
	"context"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	domaintax "github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/jwt"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/validator"
	taxservice "github.com/paygrid-hq/paygrid-backend-go/internal/service/tax"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	runRepo payroll.RunRepository
	engine  *taxservice.Engine
}

func NewPayrollService(runRepo payroll.RunRepository, engine *taxservice.Engine) payroll.Service {
	return &PayrollServiceImpl{
		runRepo: runRepo,
		engine:  engine,
	}
}

// CalculateRun computes net pay for the period and persists a DRAFT run.
func (s *PayrollServiceImpl) CalculateRun(ctx context.Context, req payroll.CalculateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	organizationID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	deductions := make([]payroll.Deduction, len(req.Deductions))
	amounts := make([]decimal.Decimal, len(req.Deductions))
	for i, ded := range req.Deductions {
		deductions[i] = payroll.Deduction{Type: ded.Type, Amount: ded.Amount, Description: ded.Description}
		amounts[i] = ded.Amount
	}

	result, err := s.engine.CalculateNetPay(domaintax.CalculationInput{
		HoursWorked:   req.HoursWorked,
		HourlyRate:    req.HourlyRate,
		OvertimeHours: req.OvertimeHours,
		OvertimeRate:  req.OvertimeRate,
		Deductions:    amounts,
		Jurisdiction:  domaintax.Jurisdiction(req.Jurisdiction),
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	periodStart, _ := validator.ParseDate(req.PeriodStart)
	periodEnd, _ := validator.ParseDate(req.PeriodEnd)

	run := payroll.PayrollRun{
		OrganizationID:    organizationID,
		EmployeeID:        req.EmployeeID,
		PeriodKind:        payroll.PeriodKind(req.PeriodKind),
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		BasicPay:          result.BasicPay,
		OvertimePay:       result.OvertimePay,
		Deductions:        deductions,
		DeductionsTotal:   result.DeductionsTotal,
		Tax:               result.Tax,
		NationalInsurance: result.NationalInsurance,
		NetPay:            result.NetPay,
		Jurisdiction:      domaintax.Jurisdiction(req.Jurisdiction),
		TaxYear:           result.TaxYear,
		Status:            payroll.RunStatusDraft,
	}

	created, err := s.runRepo.Create(ctx, run)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return payroll.ToRunResponse(created), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	organizationID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.runRepo.GetByID(ctx, id, organizationID)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return payroll.ToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunsResponse, error) {
	organizationID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListRunsResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	runs, total, err := s.runRepo.List(ctx, organizationID, filter)
	if err != nil {
		return payroll.ListRunsResponse{}, err
	}

	resp := payroll.ListRunsResponse{
		Data:       make([]payroll.RunResponse, len(runs)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for i, run := range runs {
		resp.Data[i] = payroll.ToRunResponse(run)
	}
	return resp, nil
}

// UpdateRunStatus moves a run to an explicit target state; illegal
// transitions fail with ErrInvalidTransition.
func (s *PayrollServiceImpl) UpdateRunStatus(ctx context.Context, id string, req payroll.UpdateRunStatusRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	organizationID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	target := payroll.RunStatus(req.Status)
	var processedBy *string
	if target == payroll.RunStatusProcessed && userID != "" {
		processedBy = &userID
	}

	updated, err := s.runRepo.UpdateStatus(ctx, id, organizationID, target, processedBy)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return payroll.ToRunResponse(updated), nil
}
