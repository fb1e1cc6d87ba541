package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/database"
)

type providerSettingsRepository struct {
	db *database.DB
}

func NewProviderSettingsRepository(db *database.DB) integration.SettingsRepository {
	return &providerSettingsRepository{db: db}
}

const providerSettingsColumns = `
	organization_id, provider_name, api_key, base_url, employer_reference,
	webhook_secret, active, created_at, updated_at`

func (r *providerSettingsRepository) GetByOrganization(ctx context.Context, organizationID string) (integration.ProviderSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + providerSettingsColumns + `
		FROM provider_settings
		WHERE organization_id = $1 AND active = TRUE`

	settings, err := scanProviderSettings(q.QueryRow(ctx, query, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return integration.ProviderSettings{}, integration.ErrSettingsNotFound
		}
		return integration.ProviderSettings{}, fmt.Errorf("failed to get provider settings: %w", err)
	}
	return settings, nil
}

func (r *providerSettingsRepository) Upsert(ctx context.Context, settings integration.ProviderSettings) (integration.ProviderSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO provider_settings (
			organization_id, provider_name, api_key, base_url, employer_reference,
			webhook_secret, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (organization_id) DO UPDATE SET
			provider_name = EXCLUDED.provider_name,
			api_key = EXCLUDED.api_key,
			base_url = EXCLUDED.base_url,
			employer_reference = EXCLUDED.employer_reference,
			webhook_secret = EXCLUDED.webhook_secret,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING` + providerSettingsColumns

	updated, err := scanProviderSettings(q.QueryRow(ctx, query,
		settings.OrganizationID, settings.ProviderName, settings.APIKey, settings.BaseURL,
		settings.EmployerReference, settings.WebhookSecret, settings.Active,
	))
	if err != nil {
		return integration.ProviderSettings{}, fmt.Errorf("failed to upsert provider settings: %w", err)
	}
	return updated, nil
}

func (r *providerSettingsRepository) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT organization_id FROM provider_settings WHERE active = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organization id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return ids, nil
}

func scanProviderSettings(row pgx.Row) (integration.ProviderSettings, error) {
	var s integration.ProviderSettings
	err := row.Scan(
		&s.OrganizationID, &s.ProviderName, &s.APIKey, &s.BaseURL, &s.EmployerReference,
		&s.WebhookSecret, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return integration.ProviderSettings{}, err
	}
	return s, nil
}
