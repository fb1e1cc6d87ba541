package notification

import (
	"context"
)

// Service is the notification sink. Queueing is asynchronous; delivery is
// handled by background workers.
type Service interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, organizationID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	MarkAsRead(ctx context.Context, organizationID string, ids []string) error

	// Lifecycle
	Stop()
}
