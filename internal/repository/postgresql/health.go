package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/health"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/database"
)

type healthSnapshotRepository struct {
	db *database.DB
}

func NewHealthSnapshotRepository(db *database.DB) health.SnapshotRepository {
	return &healthSnapshotRepository{db: db}
}

func (r *healthSnapshotRepository) Create(ctx context.Context, snapshot health.Snapshot) (health.Snapshot, error) {
	q := GetQuerier(ctx, r.db)

	issues, err := json.Marshal(snapshot.Issues)
	if err != nil {
		return health.Snapshot{}, fmt.Errorf("failed to marshal health issues: %w", err)
	}

	query := `
		INSERT INTO integration_health_snapshots (organization_id, status, issues)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, status, issues, created_at`

	var created health.Snapshot
	var rawIssues []byte
	err = q.QueryRow(ctx, query, snapshot.OrganizationID, snapshot.Status, issues).Scan(
		&created.ID, &created.OrganizationID, &created.Status, &rawIssues, &created.CreatedAt,
	)
	if err != nil {
		return health.Snapshot{}, fmt.Errorf("failed to create health snapshot: %w", err)
	}

	if len(rawIssues) > 0 {
		if err := json.Unmarshal(rawIssues, &created.Issues); err != nil {
			return health.Snapshot{}, fmt.Errorf("failed to unmarshal health issues: %w", err)
		}
	}
	return created, nil
}

func (r *healthSnapshotRepository) ListSince(ctx context.Context, organizationID string, since time.Time) ([]health.Snapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, status, issues, created_at
		FROM integration_health_snapshots
		WHERE organization_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, organizationID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list health snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []health.Snapshot
	for rows.Next() {
		var s health.Snapshot
		var rawIssues []byte
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Status, &rawIssues, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health snapshot: %w", err)
		}
		if len(rawIssues) > 0 {
			if err := json.Unmarshal(rawIssues, &s.Issues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal health issues: %w", err)
			}
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate health snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *healthSnapshotRepository) CountByStatusSince(ctx context.Context, organizationID string, status health.Status, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM integration_health_snapshots
		WHERE organization_id = $1 AND status = $2 AND created_at >= $3`,
		organizationID, status, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count health snapshots by status: %w", err)
	}
	return count, nil
}

func (r *healthSnapshotRepository) CountSince(ctx context.Context, organizationID string, since time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM integration_health_snapshots
		WHERE organization_id = $1 AND created_at >= $2`,
		organizationID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count health snapshots: %w", err)
	}
	return count, nil
}
