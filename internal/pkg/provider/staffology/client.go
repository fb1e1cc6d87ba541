package staffology

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paygrid-hq/paygrid-backend-go/internal/domain/integration"
)

const defaultBaseURL = "https://api.staffology.co.uk"

// Client is the Staffology payroll adapter. Staffology has no official Go
// SDK, so this is a thin typed REST client.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	employerRef string
	connected   bool
}

// New creates an unconnected Staffology adapter.
func New() integration.Provider {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Name() string {
	return "staffology"
}

func (c *Client) Connect(ctx context.Context, cfg integration.ProviderConfig) error {
	c.apiKey = cfg.APIKey
	c.baseURL = cfg.BaseURL
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	c.employerRef = cfg.EmployerReference
	c.connected = true
	return nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	c.connected = false
	c.apiKey = ""
	return nil
}

func (c *Client) ValidateConnection(ctx context.Context) error {
	if !c.connected {
		return fmt.Errorf("%w: not connected", integration.ErrConnection)
	}
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/employers/%s", c.employerRef), nil, nil)
}

// APIError represents a Staffology API error
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("staffology API error [%d]: %s", e.StatusCode, e.Message)
}

// do executes one API call. Transport failures map to ErrConnection,
// non-2xx responses to ErrProvider.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth("paygrid", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", integration.ErrConnection, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		return fmt.Errorf("%w: %v", integration.ErrProvider, apiErr)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", integration.ErrProvider, err)
		}
	}
	return nil
}

// mapStatus maps Staffology's payrun status vocabulary onto the canonical
// integration statuses.
func mapStatus(s string) integration.ProviderStatus {
	switch s {
	case "Queued", "Pending":
		return integration.ProviderStatusPending
	case "Processing", "InProgress":
		return integration.ProviderStatusProcessing
	case "Completed", "Finalised", "Paid":
		return integration.ProviderStatusCompleted
	case "Failed", "Rejected":
		return integration.ProviderStatusFailed
	default:
		return integration.ProviderStatusPending
	}
}
