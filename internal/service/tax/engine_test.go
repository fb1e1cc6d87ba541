package tax

import (
	"testing"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(NewConfigStore())
}

func TestCalculateNetPay_StandardWeekEngland(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("40"),
		HourlyRate:   d("25"),
		Deductions:   []decimal.Decimal{d("50")},
		Jurisdiction: tax.JurisdictionEngland,
	})
	require.NoError(t, err)

	// 1000/week annualizes to 52000: 37700 at 20% plus 1730 at 40%.
	assert.True(t, d("1000").Equal(result.BasicPay), "basic pay = %s", result.BasicPay)
	assert.True(t, d("1000").Equal(result.GrossPay), "gross pay = %s", result.GrossPay)
	assert.True(t, d("158.31").Equal(result.Tax), "tax = %s", result.Tax)
	assert.True(t, d("58.66").Equal(result.NationalInsurance), "ni = %s", result.NationalInsurance)
	assert.True(t, d("50").Equal(result.DeductionsTotal), "deductions = %s", result.DeductionsTotal)
	assert.True(t, d("733.03").Equal(result.NetPay), "net pay = %s", result.NetPay)
	assert.NotEmpty(t, result.TaxYear)
}

func TestCalculateNetPay_OvertimeIncluded(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:   d("35"),
		HourlyRate:    d("20"),
		OvertimeHours: d("5"),
		OvertimeRate:  d("30"),
		Jurisdiction:  tax.JurisdictionWales,
	})
	require.NoError(t, err)

	assert.True(t, d("700").Equal(result.BasicPay))
	assert.True(t, d("150").Equal(result.OvertimePay))
	assert.True(t, d("850").Equal(result.GrossPay))
}

func TestCalculateNetPay_BelowAllowance(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("10"),
		HourlyRate:   d("20"),
		Jurisdiction: tax.JurisdictionEngland,
	})
	require.NoError(t, err)

	// 200/week is 10400/year, under the personal allowance and the NI
	// primary threshold.
	assert.True(t, result.Tax.IsZero(), "tax = %s", result.Tax)
	assert.True(t, result.NationalInsurance.IsZero(), "ni = %s", result.NationalInsurance)
	assert.True(t, d("200").Equal(result.NetPay))
}

func TestCalculateNetPay_ZeroHours(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  decimal.Zero,
		HourlyRate:   d("25"),
		Jurisdiction: tax.JurisdictionScotland,
	})
	require.NoError(t, err)

	assert.True(t, result.GrossPay.IsZero())
	assert.True(t, result.Tax.IsZero())
	assert.True(t, result.NationalInsurance.IsZero())
	assert.True(t, result.NetPay.IsZero())
}

func TestCalculateNetPay_UnknownJurisdiction(t *testing.T) {
	engine := testEngine()

	_, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("40"),
		HourlyRate:   d("25"),
		Jurisdiction: tax.Jurisdiction("mars"),
	})
	assert.ErrorIs(t, err, tax.ErrConfigNotFound)
}

func TestCalculateNetPay_UnknownJurisdictionZeroGross(t *testing.T) {
	engine := testEngine()

	// Jurisdiction resolution happens before the zero-gross shortcut.
	_, err := engine.CalculateNetPay(tax.CalculationInput{
		Jurisdiction: tax.Jurisdiction("mars"),
	})
	assert.ErrorIs(t, err, tax.ErrConfigNotFound)
}

func TestCalculateNetPay_ScotlandUsesScottishBands(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("40"),
		HourlyRate:   d("25"),
		Jurisdiction: tax.JurisdictionScotland,
	})
	require.NoError(t, err)

	// 52000/year across starter, basic, intermediate and higher bands.
	assert.True(t, d("189.50").Equal(result.Tax), "tax = %s", result.Tax)
	// NI schedule is UK-wide.
	assert.True(t, d("58.66").Equal(result.NationalInsurance))
}

func TestCalculateNetPay_IrelandFlatPRSI(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("40"),
		HourlyRate:   d("25"),
		Jurisdiction: tax.JurisdictionIreland,
	})
	require.NoError(t, err)

	// No personal allowance: 44000 at 20% plus 8000 at 40%.
	assert.True(t, d("230.77").Equal(result.Tax), "tax = %s", result.Tax)
	// PRSI applies to earnings above the weekly floor.
	assert.True(t, d("26.57").Equal(result.NationalInsurance), "prsi = %s", result.NationalInsurance)
}

func TestCalculateNetPay_IrelandBelowPRSIFloor(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("10"),
		HourlyRate:   d("30"),
		Jurisdiction: tax.JurisdictionIreland,
	})
	require.NoError(t, err)

	assert.True(t, result.NationalInsurance.IsZero(), "prsi = %s", result.NationalInsurance)
}

func TestTaxAcrossBrackets_HigherRateScenario(t *testing.T) {
	store := NewConfigStore()
	cfg, err := store.GetConfig(tax.JurisdictionEngland, store.CurrentTaxYear())
	require.NoError(t, err)

	total := taxAcrossBrackets(cfg.Brackets, d("60000"), d("12570"))

	// 37700 at 20% = 7540, 9730 at 40% = 3892.
	assert.True(t, d("11432").Equal(total), "total = %s", total)
}

func TestTaxAcrossBrackets_TaperedAllowanceRaisesTax(t *testing.T) {
	store := NewConfigStore()
	cfg, err := store.GetConfig(tax.JurisdictionEngland, store.CurrentTaxYear())
	require.NoError(t, err)

	annualTax := func(income string) decimal.Decimal {
		inc := d(income)
		return taxAcrossBrackets(cfg.Brackets, inc, taperedAllowance(cfg.Allowance, inc))
	}

	atCeiling := annualTax("100000")
	tapered := annualTax("110000")

	// 37700 at 20% = 7540 plus 64730 at 40% = 25892: losing 5000 of
	// allowance taxes that amount at the marginal rate.
	assert.True(t, d("33432").Equal(tapered), "tax at 110000 = %s", tapered)
	assert.True(t, tapered.GreaterThan(atCeiling))
	// 10000 over the ceiling at 40% plus 5000 of withdrawn allowance at 40%.
	assert.True(t, d("6000").Equal(tapered.Sub(atCeiling)), "delta = %s", tapered.Sub(atCeiling))
}

func TestCalculateNetPay_HighEarnerFullyTaperedAllowance(t *testing.T) {
	engine := testEngine()

	result, err := engine.CalculateNetPay(tax.CalculationInput{
		HoursWorked:  d("100"),
		HourlyRate:   d("25"),
		Jurisdiction: tax.JurisdictionEngland,
	})
	require.NoError(t, err)

	// 2500/week annualizes to 130000, past full allowance withdrawal:
	// 37700 at 20%, 74870 at 40%, 17430 at 45% = 45337.50/year.
	assert.True(t, d("871.88").Equal(result.Tax), "tax = %s", result.Tax)
	assert.True(t, d("88.66").Equal(result.NationalInsurance), "ni = %s", result.NationalInsurance)
}

func TestTaperedAllowance(t *testing.T) {
	allowance := tax.PersonalAllowance{
		Base:         d("12570"),
		TaperCeiling: d("100000"),
		TaperRate:    d("0.5"),
	}

	cases := []struct {
		income string
		want   string
	}{
		{"50000", "12570"},
		{"100000", "12570"},
		{"110000", "7570"},
		{"125140", "0"},
		{"200000", "0"},
	}
	for _, c := range cases {
		got := taperedAllowance(allowance, d(c.income))
		assert.True(t, d(c.want).Equal(got), "taperedAllowance(%s) = %s, want %s", c.income, got, c.want)
	}
}

func TestBandedContribution(t *testing.T) {
	bands := []tax.NIBand{
		{Name: "primary_threshold", WeeklyThreshold: d("242"), Rate: d("0.08")},
		{Name: "upper_earnings_limit", WeeklyThreshold: d("967"), Rate: d("0.02")},
	}

	cases := []struct {
		weekly string
		want   string
	}{
		{"200", "0"},
		{"242", "0"},
		{"500", "20.64"},
		{"967", "58"},
		{"1000", "58.66"},
	}
	for _, c := range cases {
		got := bandedContribution(bands, d(c.weekly))
		assert.True(t, d(c.want).Equal(got), "bandedContribution(%s) = %s, want %s", c.weekly, got, c.want)
	}
}
