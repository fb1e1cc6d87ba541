package health

import (
	"context"
	"time"
)

// SnapshotRepository persists health snapshots for trend history.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot Snapshot) (Snapshot, error)
	ListSince(ctx context.Context, organizationID string, since time.Time) ([]Snapshot, error)
	CountByStatusSince(ctx context.Context, organizationID string, status Status, since time.Time) (int, error)
	CountSince(ctx context.Context, organizationID string, since time.Time) (int, error)
}
