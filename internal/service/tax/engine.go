package tax

import (
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

var weeksPerYear = decimal.NewFromInt(52)

// Engine computes weekly net pay. It is a pure function over the config
// store and safe for concurrent use.
type Engine struct {
	store tax.ConfigStore
}

func NewEngine(store tax.ConfigStore) *Engine {
	return &Engine{store: store}
}

// CalculateNetPay applies progressive income tax on annualized gross pay and
// banded NI (or flat PRSI) on weekly gross pay, then subtracts deductions.
func (e *Engine) CalculateNetPay(in tax.CalculationInput) (tax.CalculationResult, error) {
	year := e.store.CurrentTaxYear()

	cfg, err := e.store.GetConfig(in.Jurisdiction, year)
	if err != nil {
		return tax.CalculationResult{}, err
	}

	basicPay := in.HoursWorked.Mul(in.HourlyRate)
	overtimePay := in.OvertimeHours.Mul(in.OvertimeRate)
	grossPay := basicPay.Add(overtimePay)

	if grossPay.IsZero() {
		return tax.CalculationResult{
			BasicPay:          decimal.Zero,
			OvertimePay:       decimal.Zero,
			GrossPay:          decimal.Zero,
			Tax:               decimal.Zero,
			NationalInsurance: decimal.Zero,
			DeductionsTotal:   decimal.Zero,
			NetPay:            decimal.Zero,
			TaxYear:           year,
		}, nil
	}

	annualIncome := grossPay.Mul(weeksPerYear)
	allowance := taperedAllowance(cfg.Allowance, annualIncome)
	annualTax := taxAcrossBrackets(cfg.Brackets, annualIncome, allowance)
	weeklyTax := annualTax.Div(weeksPerYear).Round(2)

	ni := socialContribution(cfg, grossPay)

	deductionsTotal := decimal.Zero
	for _, amount := range in.Deductions {
		deductionsTotal = deductionsTotal.Add(amount)
	}

	netPay := grossPay.Sub(weeklyTax).Sub(ni).Sub(deductionsTotal)

	return tax.CalculationResult{
		BasicPay:          basicPay,
		OvertimePay:       overtimePay,
		GrossPay:          grossPay,
		Tax:               weeklyTax,
		NationalInsurance: ni,
		DeductionsTotal:   deductionsTotal,
		NetPay:            netPay,
		TaxYear:           year,
	}, nil
}

// taperedAllowance reduces the personal allowance by TaperRate per unit of
// income above the ceiling, floored at zero.
func taperedAllowance(a tax.PersonalAllowance, annualIncome decimal.Decimal) decimal.Decimal {
	if a.TaperRate.IsZero() || annualIncome.LessThanOrEqual(a.TaperCeiling) {
		return a.Base
	}

	reduction := annualIncome.Sub(a.TaperCeiling).Mul(a.TaperRate).Floor()
	allowance := a.Base.Sub(reduction)
	if allowance.IsNegative() {
		return decimal.Zero
	}
	return allowance
}

// taxAcrossBrackets taxes the income left after the allowance by filling the
// configured band widths in ascending order. Zero-rate bands stand in for the
// standard allowance and are skipped, so a tapered allowance leaves more
// taxable income to spill into the highest occupied band.
func taxAcrossBrackets(brackets []tax.TaxBracket, income, allowance decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)

	remaining := income.Sub(allowance)
	if !remaining.IsPositive() {
		return decimal.Zero
	}

	total := decimal.Zero
	for i, bracket := range brackets {
		if bracket.Rate.IsZero() {
			continue
		}

		// A threshold of 12571 means income above 12570 falls in the band.
		lower := bracket.Threshold
		if lower.IsPositive() {
			lower = lower.Sub(one)
		}

		slice := remaining
		if i+1 < len(brackets) {
			width := brackets[i+1].Threshold.Sub(one).Sub(lower)
			if width.LessThan(slice) {
				slice = width
			}
		}

		total = total.Add(slice.Mul(bracket.Rate))
		remaining = remaining.Sub(slice)
		if !remaining.IsPositive() {
			break
		}
	}

	return total
}

// socialContribution computes weekly NI via cumulative banding, or the flat
// PRSI rule for jurisdictions without an NI schedule.
func socialContribution(cfg tax.RegionalTaxConfig, weeklyGross decimal.Decimal) decimal.Decimal {
	if cfg.NationalInsurance != nil {
		return bandedContribution(cfg.NationalInsurance.EmployeeBands, weeklyGross)
	}

	if cfg.FlatSocial != nil && weeklyGross.GreaterThan(cfg.FlatSocial.WeeklyFloor) {
		return weeklyGross.Sub(cfg.FlatSocial.WeeklyFloor).Mul(cfg.FlatSocial.Rate).Round(2)
	}

	return decimal.Zero
}

func bandedContribution(bands []tax.NIBand, weekly decimal.Decimal) decimal.Decimal {
	total := decimal.Zero

	for i, band := range bands {
		upper := weekly
		if i+1 < len(bands) && bands[i+1].WeeklyThreshold.LessThan(upper) {
			upper = bands[i+1].WeeklyThreshold
		}
		if upper.GreaterThan(band.WeeklyThreshold) {
			total = total.Add(upper.Sub(band.WeeklyThreshold).Mul(band.Rate))
		}
	}

	return total.Round(2)
}
