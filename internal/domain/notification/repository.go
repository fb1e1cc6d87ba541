package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByOrganization(ctx context.Context, organizationID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, ids []string, organizationID string) error
}
