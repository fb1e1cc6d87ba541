package health

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/health"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/notification"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== FAKES ==========

type stubAttemptRepo struct {
	integration.AttemptRepository

	failedCount   int
	eligibleCount int
	stats         integration.AttemptStats
}

func (r *stubAttemptRepo) CountFailedSince(ctx context.Context, organizationID string, since time.Time) (int, error) {
	return r.failedCount, nil
}

func (r *stubAttemptRepo) CountRetryEligible(ctx context.Context, organizationID string, maxRetries int) (int, error) {
	return r.eligibleCount, nil
}

func (r *stubAttemptRepo) Stats(ctx context.Context, organizationID string, since time.Time) (integration.AttemptStats, error) {
	return r.stats, nil
}

type stubSettingsRepo struct {
	settings map[string]integration.ProviderSettings
}

func (r *stubSettingsRepo) GetByOrganization(ctx context.Context, organizationID string) (integration.ProviderSettings, error) {
	s, ok := r.settings[organizationID]
	if !ok {
		return integration.ProviderSettings{}, integration.ErrSettingsNotFound
	}
	return s, nil
}

func (r *stubSettingsRepo) Upsert(ctx context.Context, settings integration.ProviderSettings) (integration.ProviderSettings, error) {
	r.settings[settings.OrganizationID] = settings
	return settings, nil
}

func (r *stubSettingsRepo) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range r.settings {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubWebhookEventRepo struct {
	failedCount int
}

func (r *stubWebhookEventRepo) Create(ctx context.Context, event integration.WebhookEvent) (integration.WebhookEvent, error) {
	return event, nil
}

func (r *stubWebhookEventRepo) CountFailedSince(ctx context.Context, organizationID string, since time.Time) (int, error) {
	return r.failedCount, nil
}

type stubSnapshotRepo struct {
	mu        sync.Mutex
	created   []health.Snapshot
	total     int
	unhealthy int
}

func (r *stubSnapshotRepo) Create(ctx context.Context, snapshot health.Snapshot) (health.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot.ID = fmt.Sprintf("snap-%d", len(r.created)+1)
	r.created = append(r.created, snapshot)
	return snapshot, nil
}

func (r *stubSnapshotRepo) ListSince(ctx context.Context, organizationID string, since time.Time) ([]health.Snapshot, error) {
	return r.created, nil
}

func (r *stubSnapshotRepo) CountByStatusSince(ctx context.Context, organizationID string, status health.Status, since time.Time) (int, error) {
	if status == health.StatusUnhealthy {
		return r.unhealthy, nil
	}
	return 0, nil
}

func (r *stubSnapshotRepo) CountSince(ctx context.Context, organizationID string, since time.Time) (int, error) {
	return r.total, nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (n *stubNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *stubNotifier) GetNotifications(ctx context.Context, organizationID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{}, nil
}

func (n *stubNotifier) MarkAsRead(ctx context.Context, organizationID string, ids []string) error {
	return nil
}

func (n *stubNotifier) Stop() {}

type stubProvider struct {
	connectErr  error
	validateErr error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Connect(ctx context.Context, cfg integration.ProviderConfig) error {
	return p.connectErr
}

func (p *stubProvider) Disconnect(ctx context.Context) error         { return nil }
func (p *stubProvider) ValidateConnection(ctx context.Context) error { return p.validateErr }

func (p *stubProvider) SubmitPayroll(ctx context.Context, run payroll.PayrollRun) (integration.SubmitResult, error) {
	return integration.SubmitResult{Success: true}, nil
}

func (p *stubProvider) GetPayrollStatus(ctx context.Context, ref string) (integration.ProviderStatus, error) {
	return integration.ProviderStatusCompleted, nil
}

func (p *stubProvider) SyncEmployees(ctx context.Context) (integration.EmployeeSyncResult, error) {
	return integration.EmployeeSyncResult{}, nil
}

func (p *stubProvider) SubmitTaxFiling(ctx context.Context, period integration.TaxFilingPeriod) (integration.SubmitResult, error) {
	return integration.SubmitResult{Success: true}, nil
}

func (p *stubProvider) GetTaxFilingStatus(ctx context.Context, ref string) (integration.ProviderStatus, error) {
	return integration.ProviderStatusCompleted, nil
}

func (p *stubProvider) GeneratePayslips(ctx context.Context, runID string) (integration.PayslipBatch, error) {
	return integration.PayslipBatch{}, nil
}

func (p *stubProvider) DownloadReports(ctx context.Context, reportType string, period integration.TaxFilingPeriod) ([]byte, error) {
	return nil, nil
}

// ========== FIXTURE ==========

type healthFixture struct {
	service   *Service
	attempts  *stubAttemptRepo
	settings  *stubSettingsRepo
	events    *stubWebhookEventRepo
	snapshots *stubSnapshotRepo
	notifier  *stubNotifier
	provider  *stubProvider
}

func newHealthFixture(t *testing.T) *healthFixture {
	t.Helper()

	provider := &stubProvider{}
	registry := integration.NewRegistry()
	registry.Register("stub", func() integration.Provider { return provider })

	attempts := &stubAttemptRepo{}
	events := &stubWebhookEventRepo{}
	snapshots := &stubSnapshotRepo{}
	notifier := &stubNotifier{}
	settings := &stubSettingsRepo{settings: map[string]integration.ProviderSettings{
		"org-1": {
			OrganizationID: "org-1",
			ProviderName:   "stub",
			APIKey:         "key",
			WebhookSecret:  "whsec",
			Active:         true,
		},
	}}

	return &healthFixture{
		service:   NewHealthService(attempts, settings, events, snapshots, registry, notifier, 3),
		attempts:  attempts,
		settings:  settings,
		events:    events,
		snapshots: snapshots,
		notifier:  notifier,
		provider:  provider,
	}
}

func issueTypes(snapshot health.Snapshot) []health.IssueType {
	types := make([]health.IssueType, len(snapshot.Issues))
	for i, issue := range snapshot.Issues {
		types[i] = issue.Type
	}
	return types
}

// ========== TESTS ==========

func TestCheckHealth_AllClear(t *testing.T) {
	f := newHealthFixture(t)

	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, health.StatusHealthy, snapshot.Status)
	assert.Empty(t, snapshot.Issues)
}

func TestCheckHealth_ConnectionFailure(t *testing.T) {
	f := newHealthFixture(t)
	f.provider.connectErr = fmt.Errorf("%w: dial tcp refused", integration.ErrConnection)

	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, health.StatusUnhealthy, snapshot.Status)
	assert.Contains(t, issueTypes(snapshot), health.IssueConnectionFailed)
}

func TestCheckHealth_ValidationFailure(t *testing.T) {
	f := newHealthFixture(t)
	f.provider.validateErr = fmt.Errorf("%w: credentials rejected", integration.ErrConnection)

	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, health.StatusUnhealthy, snapshot.Status)
}

func TestCheckHealth_NoSettings(t *testing.T) {
	f := newHealthFixture(t)

	snapshot, err := f.service.CheckHealth(context.Background(), "org-ghost")
	require.NoError(t, err)

	assert.Equal(t, health.StatusUnhealthy, snapshot.Status)
	assert.Contains(t, issueTypes(snapshot), health.IssueConnectionFailed)
}

func TestCheckHealth_FailedAttemptSeverity(t *testing.T) {
	f := newHealthFixture(t)

	f.attempts.failedCount = 3
	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, health.StatusDegraded, snapshot.Status)

	// More than five failures in the window escalates to HIGH.
	f.attempts.failedCount = 6
	snapshot, err = f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnhealthy, snapshot.Status)
}

func TestCheckHealth_PendingRetriesStayHealthy(t *testing.T) {
	f := newHealthFixture(t)
	f.attempts.eligibleCount = 2

	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, health.StatusHealthy, snapshot.Status)
	assert.Contains(t, issueTypes(snapshot), health.IssuePendingRetries)
}

func TestCheckHealth_MissingWebhookSecret(t *testing.T) {
	f := newHealthFixture(t)
	s := f.settings.settings["org-1"]
	s.WebhookSecret = ""
	f.settings.settings["org-1"] = s

	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, health.StatusDegraded, snapshot.Status)
	assert.Contains(t, issueTypes(snapshot), health.IssueWebhookSecretMissing)
}

func TestCheckHealth_WebhookFailureSeverity(t *testing.T) {
	f := newHealthFixture(t)

	f.events.failedCount = 2
	snapshot, err := f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, health.StatusDegraded, snapshot.Status)

	f.events.failedCount = 7
	snapshot, err = f.service.CheckHealth(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnhealthy, snapshot.Status)
}

func TestGenerateHealthReport_Metrics(t *testing.T) {
	f := newHealthFixture(t)
	f.attempts.stats = integration.AttemptStats{
		Total:                20,
		Succeeded:            18,
		Failed:               2,
		AvgProcessingSeconds: 4.5,
	}
	f.snapshots.total = 10
	f.snapshots.unhealthy = 1

	report, err := f.service.GenerateHealthReport(context.Background(), "org-1")
	require.NoError(t, err)

	assert.InDelta(t, 90, report.Metrics.SuccessRate, 0.001)
	assert.InDelta(t, 4.5, report.Metrics.AvgProcessingSeconds, 0.001)
	assert.InDelta(t, 90, report.Metrics.UptimePercent, 0.001)
	assert.NotEmpty(t, report.Recommendations)
}

func TestGenerateHealthReport_NoHistoryDefaults(t *testing.T) {
	f := newHealthFixture(t)

	report, err := f.service.GenerateHealthReport(context.Background(), "org-1")
	require.NoError(t, err)

	assert.InDelta(t, 100, report.Metrics.SuccessRate, 0.001)
	assert.InDelta(t, 100, report.Metrics.UptimePercent, 0.001)
}

func TestGenerateHealthReport_Recommendations(t *testing.T) {
	f := newHealthFixture(t)
	f.provider.connectErr = fmt.Errorf("%w: dial tcp refused", integration.ErrConnection)

	report, err := f.service.GenerateHealthReport(context.Background(), "org-1")
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "API key")
}

func TestRunHealthSweep_PersistsAndNotifies(t *testing.T) {
	f := newHealthFixture(t)
	f.provider.connectErr = fmt.Errorf("%w: dial tcp refused", integration.ErrConnection)

	require.NoError(t, f.service.RunHealthSweep(context.Background()))

	require.Len(t, f.snapshots.created, 1)
	assert.Equal(t, health.StatusUnhealthy, f.snapshots.created[0].Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeIntegrationUnhealthy, f.notifier.sent[0].Type)
	assert.Equal(t, notification.SeverityHigh, f.notifier.sent[0].Severity)
}

func TestRunHealthSweep_HealthyNoNotification(t *testing.T) {
	f := newHealthFixture(t)

	require.NoError(t, f.service.RunHealthSweep(context.Background()))

	require.Len(t, f.snapshots.created, 1)
	assert.Equal(t, health.StatusHealthy, f.snapshots.created[0].Status)
	assert.Empty(t, f.notifier.sent)
}
