package staffology

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New().(*Client)
	err := client.Connect(context.Background(), integration.ProviderConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		EmployerReference: "EMP001",
	})
	require.NoError(t, err)
	return client, srv
}

func TestStaffology_SubmitPayroll(t *testing.T) {
	var gotPath, gotUser, gotKey string
	var gotBody payRunRequest

	client, _ := connectedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotKey, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(payRunResponse{ID: "pr-77", Status: "Queued"})
	}))

	result, err := client.SubmitPayroll(context.Background(), payroll.PayrollRun{
		ID:         "run-1",
		EmployeeID: "emp-1",
		PeriodKind: payroll.PeriodWeekly,
		TaxYear:    "2026-27",
	})
	require.NoError(t, err)

	assert.Equal(t, "/employers/EMP001/payruns", gotPath)
	assert.Equal(t, "paygrid", gotUser)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "run-1", gotBody.ExternalID)
	assert.Equal(t, "weekly", gotBody.PayPeriod)

	assert.True(t, result.Success)
	assert.Equal(t, "pr-77", result.ProviderReference)
	assert.Equal(t, integration.ProviderStatusPending, result.Status)
}

func TestStaffology_ProviderError(t *testing.T) {
	client, _ := connectedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "employer not found", http.StatusNotFound)
	}))

	result, err := client.SubmitPayroll(context.Background(), payroll.PayrollRun{ID: "run-1"})
	assert.ErrorIs(t, err, integration.ErrProvider)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestStaffology_ConnectionError(t *testing.T) {
	client, srv := connectedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := client.ValidateConnection(context.Background())
	assert.ErrorIs(t, err, integration.ErrConnection)
}

func TestStaffology_ValidateWithoutConnect(t *testing.T) {
	client := New()
	assert.ErrorIs(t, client.ValidateConnection(context.Background()), integration.ErrConnection)
}

func TestStaffology_SyncEmployees(t *testing.T) {
	client, _ := connectedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/employers/EMP001/employees", r.URL.Path)
		w.Write([]byte(`{"employees":[{"id":"e1","status":"Current"},{"id":"e2","status":"Current"},{"id":"e3","status":"Leaver"}]}`))
	}))

	result, err := client.SyncEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 1, result.Skipped)
}

func TestMapStatus(t *testing.T) {
	cases := []struct {
		in   string
		want integration.ProviderStatus
	}{
		{"Queued", integration.ProviderStatusPending},
		{"Pending", integration.ProviderStatusPending},
		{"Processing", integration.ProviderStatusProcessing},
		{"InProgress", integration.ProviderStatusProcessing},
		{"Completed", integration.ProviderStatusCompleted},
		{"Finalised", integration.ProviderStatusCompleted},
		{"Paid", integration.ProviderStatusCompleted},
		{"Failed", integration.ProviderStatusFailed},
		{"Rejected", integration.ProviderStatusFailed},
		{"SomethingNew", integration.ProviderStatusPending},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, mapStatus(c.in), c.in)
	}
}
