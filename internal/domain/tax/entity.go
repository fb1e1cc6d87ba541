package tax

import (
	"github.com/shopspring/decimal"
)

// Jurisdiction is a tax region with its own bracket and NI/PRSI rules.
type Jurisdiction string

const (
	JurisdictionEngland         Jurisdiction = "england"
	JurisdictionScotland        Jurisdiction = "scotland"
	JurisdictionWales           Jurisdiction = "wales"
	JurisdictionNorthernIreland Jurisdiction = "northern_ireland"
	JurisdictionIreland         Jurisdiction = "ireland"
)

// AllJurisdictions returns every jurisdiction the engine can calculate for.
func AllJurisdictions() []Jurisdiction {
	return []Jurisdiction{
		JurisdictionEngland,
		JurisdictionScotland,
		JurisdictionWales,
		JurisdictionNorthernIreland,
		JurisdictionIreland,
	}
}

// IsValidJurisdiction reports whether s names a known jurisdiction.
func IsValidJurisdiction(s string) bool {
	for _, j := range AllJurisdictions() {
		if string(j) == s {
			return true
		}
	}
	return false
}

// TaxBracket is one band of a progressive schedule. Threshold is the annual
// income at which the band begins; brackets must be strictly increasing by
// threshold.
type TaxBracket struct {
	Name      string
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// PersonalAllowance is the income exempt from tax. Above TaperCeiling the
// allowance reduces by TaperRate per unit of income over the ceiling.
type PersonalAllowance struct {
	Base         decimal.Decimal
	TaperCeiling decimal.Decimal
	TaperRate    decimal.Decimal
}

// NIBand is one weekly National Insurance threshold band.
type NIBand struct {
	Name            string
	WeeklyThreshold decimal.Decimal
	Rate            decimal.Decimal
}

// NationalInsuranceConfig holds the ordered employee and employer weekly
// threshold bands.
type NationalInsuranceConfig struct {
	EmployeeBands []NIBand
	EmployerBands []NIBand
}

// FlatSocialRule is the fallback social-contribution rule for jurisdictions
// without banded NI (Irish PRSI): a single rate applied to weekly pay above
// a floor.
type FlatSocialRule struct {
	WeeklyFloor decimal.Decimal
	Rate        decimal.Decimal
}

// RegionalTaxConfig is the full rate card for one (jurisdiction, tax year).
// Immutable once published; the engine only reads it.
type RegionalTaxConfig struct {
	Jurisdiction      Jurisdiction
	TaxYear           string
	Brackets          []TaxBracket
	Allowance         PersonalAllowance
	NationalInsurance *NationalInsuranceConfig
	FlatSocial        *FlatSocialRule
}

// CalculationInput is one employee-week of gross pay data.
type CalculationInput struct {
	HoursWorked   decimal.Decimal
	HourlyRate    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimeRate  decimal.Decimal
	Deductions    []decimal.Decimal
	Jurisdiction  Jurisdiction
}

// CalculationResult is the weekly net pay breakdown.
type CalculationResult struct {
	BasicPay          decimal.Decimal
	OvertimePay       decimal.Decimal
	GrossPay          decimal.Decimal
	Tax               decimal.Decimal
	NationalInsurance decimal.Decimal
	DeductionsTotal   decimal.Decimal
	NetPay            decimal.Decimal
	TaxYear           string
}
