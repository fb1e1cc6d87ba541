package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/database"
)

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.RunRepository {
	return &payrollRunRepository{db: db}
}

const payrollRunColumns = `
	id, organization_id, employee_id, period_kind, period_start, period_end,
	basic_pay, overtime_pay, deductions, deductions_total,
	tax, national_insurance, net_pay,
	jurisdiction, tax_year, status, processed_by, created_at, updated_at`

func (r *payrollRunRepository) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	deductions, err := json.Marshal(run.Deductions)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to marshal deductions: %w", err)
	}

	query := `
		INSERT INTO payroll_runs (
			organization_id, employee_id, period_kind, period_start, period_end,
			basic_pay, overtime_pay, deductions, deductions_total,
			tax, national_insurance, net_pay,
			jurisdiction, tax_year, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING` + payrollRunColumns

	row := q.QueryRow(ctx, query,
		run.OrganizationID, run.EmployeeID, run.PeriodKind, run.PeriodStart, run.PeriodEnd,
		run.BasicPay, run.OvertimePay, deductions, run.DeductionsTotal,
		run.Tax, run.NationalInsurance, run.NetPay,
		run.Jurisdiction, run.TaxYear, run.Status,
	)

	created, err := scanPayrollRun(row)
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id string, organizationID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + payrollRunColumns + `
		FROM payroll_runs
		WHERE id = $1 AND organization_id = $2`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepository) List(ctx context.Context, organizationID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE organization_id = $1"
	args := []interface{}{organizationID}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND period_start >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND period_end <= $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM payroll_runs " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT`+payrollRunColumns+`
		FROM payroll_runs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanPayrollRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, total, nil
}

// UpdateStatus enforces the lifecycle inside one transaction: the current row
// is locked, the transition validated in Go and the new status written.
func (r *payrollRunRepository) UpdateStatus(ctx context.Context, id string, organizationID string, target payroll.RunStatus, processedBy *string) (payroll.PayrollRun, error) {
	var updated payroll.PayrollRun

	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var current payroll.RunStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM payroll_runs WHERE id = $1 AND organization_id = $2 FOR UPDATE`,
			id, organizationID,
		).Scan(&current)
		if err != nil {
			if err == pgx.ErrNoRows {
				return payroll.ErrRunNotFound
			}
			return fmt.Errorf("failed to lock payroll run: %w", err)
		}

		if !current.CanTransitionTo(target) {
			if current.IsTerminal() {
				return payroll.ErrRunAlreadyFinal
			}
			return payroll.ErrInvalidTransition
		}

		query := `
			UPDATE payroll_runs
			SET status = $3, processed_by = COALESCE($4, processed_by), updated_at = NOW()
			WHERE id = $1 AND organization_id = $2
			RETURNING` + payrollRunColumns

		updated, err = scanPayrollRun(tx.QueryRow(ctx, query, id, organizationID, target, processedBy))
		if err != nil {
			return fmt.Errorf("failed to update payroll run status: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	return updated, nil
}

func scanPayrollRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	var deductions []byte

	err := row.Scan(
		&run.ID, &run.OrganizationID, &run.EmployeeID, &run.PeriodKind, &run.PeriodStart, &run.PeriodEnd,
		&run.BasicPay, &run.OvertimePay, &deductions, &run.DeductionsTotal,
		&run.Tax, &run.NationalInsurance, &run.NetPay,
		&run.Jurisdiction, &run.TaxYear, &run.Status, &run.ProcessedBy, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollRun{}, err
	}

	if len(deductions) > 0 {
		if err := json.Unmarshal(deductions, &run.Deductions); err != nil {
			return payroll.PayrollRun{}, fmt.Errorf("failed to unmarshal deductions: %w", err)
		}
	}
	return run, nil
}
