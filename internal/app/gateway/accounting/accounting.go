// Package accounting mirrors completed transactions into an external
// accounting system.
//
// The mirror is strictly best-effort: local state is durable before any
// call here is attempted, failures are logged and swallowed, and missing
// credentials degrade to a no-op that succeeds. The returned id is
// stored on the transaction for traceability only.
package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Mirror is the narrow create contract the billing engine consumes.
type Mirror interface {
	CreateExternalTransaction(ctx context.Context, description string, amountCents int64, categoryID string, paid bool) (string, error)
}

// Disabled is the Mirror used when no credentials are configured.
// It succeeds with an empty id so billing never depends on the mirror.
type Disabled struct{}

func (Disabled) CreateExternalTransaction(ctx context.Context, description string, amountCents int64, categoryID string, paid bool) (string, error) {
	return "", nil
}

// Client talks to the accounting provider's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// New returns an HTTP-backed Mirror, or Disabled when either the base
// URL or the API key is missing.
func New(baseURL, apiKey string, logger *zap.Logger) Mirror {
	if baseURL == "" || apiKey == "" {
		logger.Info("accounting mirror disabled: credentials not configured")
		return Disabled{}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logger,
	}
}

type createRequest struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	CategoryID  string `json:"category_id"`
	Paid        bool   `json:"paid"`
}

type createResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateExternalTransaction(ctx context.Context, description string, amountCents int64, categoryID string, paid bool) (string, error) {
	body, err := json.Marshal(createRequest{
		Description: description,
		AmountCents: amountCents,
		CategoryID:  categoryID,
		Paid:        paid,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("accounting mirror returned status %d", resp.StatusCode)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

var _ Mirror = (*Client)(nil)
