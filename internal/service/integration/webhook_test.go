package integration

import (
	"context"
	"testing"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/notification"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/paygrid-hq/paygrid-backend-go/internal/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookFixture struct {
	processor *WebhookProcessor
	attempts  *fakeAttemptRepo
	runs      *fakeRunRepo
	events    *fakeWebhookEventRepo
	notifier  *fakeNotifier
	secret    string
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	attempts := newFakeAttemptRepo()
	runs := newFakeRunRepo(approvedRun())
	events := &fakeWebhookEventRepo{}
	notifier := &fakeNotifier{}
	settings := newFakeSettingsRepo(integration.ProviderSettings{
		OrganizationID: "org-1",
		ProviderName:   "fake",
		WebhookSecret:  "whsec",
		Active:         true,
	})

	return &webhookFixture{
		processor: NewWebhookProcessor(settings, attempts, runs, events, notifier),
		attempts:  attempts,
		runs:      runs,
		events:    events,
		notifier:  notifier,
		secret:    "whsec",
	}
}

func (f *webhookFixture) seedAttempt(t *testing.T, providerRef string) integration.Attempt {
	t.Helper()

	attempt, err := f.attempts.Create(context.Background(), integration.Attempt{
		PayrollRunID:   "run-1",
		OrganizationID: "org-1",
		ProviderName:   "fake",
		Status:         integration.AttemptStatusProcessing,
	})
	require.NoError(t, err)
	require.NoError(t, f.attempts.MarkFailed(context.Background(), attempt.ID, "pending provider outcome", nil))

	f.attempts.mu.Lock()
	stored := f.attempts.attempts[attempt.ID]
	stored.ProviderReference = &providerRef
	f.attempts.attempts[attempt.ID] = stored
	f.attempts.mu.Unlock()
	return stored
}

func (f *webhookFixture) process(payload []byte, signature string) error {
	return f.processor.Process(context.Background(), "org-1", payload, signature)
}

func TestProcessWebhook_InvalidSignature(t *testing.T) {
	f := newWebhookFixture(t)
	f.seedAttempt(t, "ref-1")
	payload := []byte(`{"event":"payroll.processed","data":{"provider_reference":"ref-1"}}`)

	err := f.process(payload, "bad-signature")
	assert.ErrorIs(t, err, integration.ErrUnauthorizedWebhook)

	// Nothing is recorded or mutated for unverified requests.
	assert.Empty(t, f.events.events)
	attempt, err := f.attempts.GetByID(context.Background(), "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, integration.AttemptStatusFailed, attempt.Status)
}

func TestProcessWebhook_UnknownOrganization(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(`{"event":"payroll.processed"}`)

	err := f.processor.Process(context.Background(), "org-ghost", payload, provider.SignPayload(f.secret, payload))
	assert.ErrorIs(t, err, integration.ErrUnauthorizedWebhook)
}

func TestProcessWebhook_PayrollProcessed(t *testing.T) {
	f := newWebhookFixture(t)
	f.seedAttempt(t, "ref-1")
	payload := []byte(`{"event":"payroll.processed","data":{"provider_reference":"ref-1"}}`)

	require.NoError(t, f.process(payload, provider.SignPayload(f.secret, payload)))

	attempt, err := f.attempts.GetByID(context.Background(), "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, integration.AttemptStatusSuccess, attempt.Status)

	run, err := f.runs.GetByID(context.Background(), "run-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusProcessed, run.Status)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, integration.WebhookEventProcessed, f.events.events[0].Status)
	assert.Equal(t, "payroll.processed", f.events.events[0].EventType)

	assert.Len(t, f.notifier.byType(notification.TypePayrollProcessed), 1)
}

func TestProcessWebhook_PayrollFailed(t *testing.T) {
	f := newWebhookFixture(t)
	f.seedAttempt(t, "ref-1")
	payload := []byte(`{"event":"payroll.failed","data":{"provider_reference":"ref-1","error":"RTI submission rejected"}}`)

	require.NoError(t, f.process(payload, provider.SignPayload(f.secret, payload)))

	attempt, err := f.attempts.GetByID(context.Background(), "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, integration.AttemptStatusFailed, attempt.Status)
	require.NotNil(t, attempt.ErrorMessage)
	assert.Equal(t, "RTI submission rejected", *attempt.ErrorMessage)

	failures := f.notifier.byType(notification.TypeSubmissionFailed)
	require.Len(t, failures, 1)
	assert.Equal(t, notification.SeverityHigh, failures[0].Severity)
}

func TestProcessWebhook_PayslipGenerated(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(`{"event":"payslip.generated","data":{"payroll_run_id":"run-1","payslip_ids":["p1","p2"]}}`)

	require.NoError(t, f.process(payload, provider.SignPayload(f.secret, payload)))
	assert.Len(t, f.notifier.byType(notification.TypePayslipGenerated), 1)
}

func TestProcessWebhook_TaxFiled(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(`{"event":"tax.filed","data":{"tax_year":"2026-27","period":"M5"}}`)

	require.NoError(t, f.process(payload, provider.SignPayload(f.secret, payload)))
	assert.Len(t, f.notifier.byType(notification.TypeTaxFiled), 1)
}

func TestProcessWebhook_UnknownEventRecordedAsFailed(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(`{"event":"payroll.exploded","data":{}}`)

	err := f.process(payload, provider.SignPayload(f.secret, payload))
	require.Error(t, err)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, integration.WebhookEventFailed, f.events.events[0].Status)
	require.NotNil(t, f.events.events[0].ErrorMessage)
}

func TestProcessWebhook_UnmatchedReferenceRecordedAsFailed(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(`{"event":"payroll.processed","data":{"provider_reference":"ref-ghost"}}`)

	err := f.process(payload, provider.SignPayload(f.secret, payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrAttemptNotFound)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, integration.WebhookEventFailed, f.events.events[0].Status)
}

func TestProcessWebhook_MalformedPayload(t *testing.T) {
	f := newWebhookFixture(t)
	payload := []byte(`{"event":`)

	err := f.process(payload, provider.SignPayload(f.secret, payload))
	require.Error(t, err)
	assert.NotErrorIs(t, err, integration.ErrUnauthorizedWebhook)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, integration.WebhookEventFailed, f.events.events[0].Status)
	assert.Equal(t, "unknown", f.events.events[0].EventType)
}

func TestProcessWebhook_MissingSecretRejects(t *testing.T) {
	attempts := newFakeAttemptRepo()
	runs := newFakeRunRepo()
	events := &fakeWebhookEventRepo{}
	notifier := &fakeNotifier{}
	settings := newFakeSettingsRepo(integration.ProviderSettings{
		OrganizationID: "org-1",
		ProviderName:   "fake",
		Active:         true,
	})
	processor := NewWebhookProcessor(settings, attempts, runs, events, notifier)

	payload := []byte(`{"event":"payroll.processed"}`)
	err := processor.Process(context.Background(), "org-1", payload, provider.SignPayload("", payload))
	assert.ErrorIs(t, err, integration.ErrUnauthorizedWebhook)
	assert.Empty(t, events.events)
}
