// Package ingest forwards accepted leads to an upstream lead ingestion endpoint, such as
// the marketing site's original backend during a migration.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient targets baseURL + "/api/leads". apiKey is sent as a bearer token when set.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/leads",
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type forwardRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	City        string `json:"city"`
	Timeline    string `json:"timeline"`
	SubmittedAt string `json:"submittedAt"`
	Status      string `json:"status"`
}

func (c *Client) Forward(ctx context.Context, lead entity.Lead) error {
	payload := forwardRequest{
		ID:          lead.ID,
		Name:        lead.Name,
		Mobile:      lead.Mobile,
		City:        lead.City,
		Timeline:    lead.Timeline,
		SubmittedAt: lead.SubmittedAt.UTC().Format(time.RFC3339),
		Status:      string(lead.EffectiveStatus()),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ingest request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ingest returned %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
