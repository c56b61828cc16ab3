package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"riderpro/internal/core/config"
	"riderpro/internal/core/httpclient"
	"riderpro/internal/features/sync/domain"
)

// DispatchAdapter implements the SyncTarget port against the fleet dispatch
// API, the external system of record for sessions and samples. The API is
// idempotent per record key, so redelivery after a lost response is safe.
type DispatchAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the dispatch API connection details.
	config config.SyncConfig
}

// NewDispatchAdapter creates a new instance of DispatchAdapter.
func NewDispatchAdapter(cfg config.SyncConfig) *DispatchAdapter {
	return &DispatchAdapter{
		client: httpclient.NewClient(cfg.Timeout()),
		config: cfg,
	}
}

// pushRequest is the wire envelope for a batch push.
type pushRequest struct {
	Records []domain.PushRecord `json:"records"`
}

// PushBatch delivers records to the dispatch API and decodes per-record
// outcomes. Transport errors and non-200 responses fail the whole batch;
// the caller retries every member.
func (a *DispatchAdapter) PushBatch(ctx context.Context, records []domain.PushRecord) (*domain.PushResult, error) {
	body, err := json.Marshal(pushRequest{Records: records})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push batch: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/fleet/sync", a.config.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dispatch API returned status: %d", resp.StatusCode)
	}

	var result domain.PushResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// HealthCheck verifies that the dispatch API is reachable and the key is valid.
func (a *DispatchAdapter) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/v1/fleet/health", a.config.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}
