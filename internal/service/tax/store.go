package tax

import (
	"fmt"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

type configStore struct {
	configs map[string]tax.RegionalTaxConfig
	taxYear string
}

// NewConfigStore builds the in-memory regional rate cards for the current
// tax year. Configuration is loaded once and read-only for the process
// lifetime.
func NewConfigStore() tax.ConfigStore {
	year := taxYearFor(time.Now())

	s := &configStore{
		configs: make(map[string]tax.RegionalTaxConfig),
		taxYear: year,
	}

	ukNI := &tax.NationalInsuranceConfig{
		EmployeeBands: []tax.NIBand{
			{Name: "primary_threshold", WeeklyThreshold: d("242"), Rate: d("0.08")},
			{Name: "upper_earnings_limit", WeeklyThreshold: d("967"), Rate: d("0.02")},
		},
		EmployerBands: []tax.NIBand{
			{Name: "secondary_threshold", WeeklyThreshold: d("96"), Rate: d("0.15")},
		},
	}

	ukAllowance := tax.PersonalAllowance{
		Base:         d("12570"),
		TaperCeiling: d("100000"),
		TaperRate:    d("0.5"),
	}

	rukBrackets := []tax.TaxBracket{
		{Name: "personal_allowance", Threshold: d("0"), Rate: d("0")},
		{Name: "basic", Threshold: d("12571"), Rate: d("0.20")},
		{Name: "higher", Threshold: d("50271"), Rate: d("0.40")},
		{Name: "additional", Threshold: d("125141"), Rate: d("0.45")},
	}

	for _, j := range []tax.Jurisdiction{
		tax.JurisdictionEngland,
		tax.JurisdictionWales,
		tax.JurisdictionNorthernIreland,
	} {
		s.add(tax.RegionalTaxConfig{
			Jurisdiction:      j,
			TaxYear:           year,
			Brackets:          rukBrackets,
			Allowance:         ukAllowance,
			NationalInsurance: ukNI,
		})
	}

	s.add(tax.RegionalTaxConfig{
		Jurisdiction: tax.JurisdictionScotland,
		TaxYear:      year,
		Brackets: []tax.TaxBracket{
			{Name: "personal_allowance", Threshold: d("0"), Rate: d("0")},
			{Name: "starter", Threshold: d("12571"), Rate: d("0.19")},
			{Name: "basic", Threshold: d("15398"), Rate: d("0.20")},
			{Name: "intermediate", Threshold: d("27492"), Rate: d("0.21")},
			{Name: "higher", Threshold: d("43663"), Rate: d("0.42")},
			{Name: "advanced", Threshold: d("75001"), Rate: d("0.45")},
			{Name: "top", Threshold: d("125141"), Rate: d("0.48")},
		},
		Allowance:         ukAllowance,
		NationalInsurance: ukNI,
	})

	// Ireland taxes from the first euro (credits are handled off-payroll)
	// and uses flat PRSI above a weekly floor instead of banded NI.
	s.add(tax.RegionalTaxConfig{
		Jurisdiction: tax.JurisdictionIreland,
		TaxYear:      year,
		Brackets: []tax.TaxBracket{
			{Name: "standard", Threshold: d("0"), Rate: d("0.20")},
			{Name: "higher", Threshold: d("44001"), Rate: d("0.40")},
		},
		Allowance: tax.PersonalAllowance{
			Base:         decimal.Zero,
			TaperCeiling: decimal.Zero,
			TaperRate:    decimal.Zero,
		},
		FlatSocial: &tax.FlatSocialRule{
			WeeklyFloor: d("352"),
			Rate:        d("0.041"),
		},
	})

	return s
}

func (s *configStore) add(cfg tax.RegionalTaxConfig) {
	s.configs[configKey(cfg.Jurisdiction, cfg.TaxYear)] = cfg
}

func (s *configStore) GetConfig(jurisdiction tax.Jurisdiction, taxYear string) (tax.RegionalTaxConfig, error) {
	cfg, ok := s.configs[configKey(jurisdiction, taxYear)]
	if !ok {
		return tax.RegionalTaxConfig{}, fmt.Errorf("%w: %s %s", tax.ErrConfigNotFound, jurisdiction, taxYear)
	}
	return cfg, nil
}

func (s *configStore) ListJurisdictions() []tax.Jurisdiction {
	return tax.AllJurisdictions()
}

func (s *configStore) CurrentTaxYear() string {
	return s.taxYear
}

func configKey(jurisdiction tax.Jurisdiction, taxYear string) string {
	return string(jurisdiction) + ":" + taxYear
}

// taxYearFor resolves the UK tax year containing t. The tax year starts in
// April; before April the pair is (year-1, year).
func taxYearFor(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
