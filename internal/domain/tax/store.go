package tax

// ConfigStore resolves regional tax configuration. Implementations load the
// rate cards once at process start; lookups never mutate.
type ConfigStore interface {
	GetConfig(jurisdiction Jurisdiction, taxYear string) (RegionalTaxConfig, error)
	ListJurisdictions() []Jurisdiction
	CurrentTaxYear() string
}
