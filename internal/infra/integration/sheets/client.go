// Package sheets talks to the spreadsheet webhook (a Google Apps Script web app) that
// mirrors leads into the sales sheet.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/xavierca1/nesthome-leads/internal/entity"
	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type Client struct {
	webhookURL     string
	spreadsheetURL string
	httpClient     *http.Client
	logger         *slog.Logger
}

func NewClient(webhookURL, spreadsheetURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		webhookURL:     webhookURL,
		spreadsheetURL: spreadsheetURL,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         slog.Default().With("integration", "sheets"),
	}
}

func (c *Client) Configured() bool {
	return c.webhookURL != ""
}

// SpreadsheetURL is the human-facing link to the sheet, empty when unknown.
func (c *Client) SpreadsheetURL() string {
	return c.spreadsheetURL
}

// SyncOne appends one lead. Without a webhook URL it does nothing.
func (c *Client) SyncOne(ctx context.Context, lead entity.Lead) error {
	if !c.Configured() {
		return nil
	}

	_, err := c.post(ctx, appendRequest{Action: ActionAppend, Lead: toRow(lead)})
	if err != nil {
		return fmt.Errorf("sheets append %s: %w", lead.ID, err)
	}

	c.logger.Debug("lead appended to sheet", "lead_id", lead.ID)
	return nil
}

// SyncBatch upserts the whole list in one call. The webhook reports how many rows it
// wrote; a 2xx answer without a count means all of them.
func (c *Client) SyncBatch(ctx context.Context, leads []entity.Lead) (usecase.SyncResult, error) {
	total := len(leads)
	if !c.Configured() {
		return usecase.SyncResult{Total: total}, usecase.ErrNotConfigured
	}

	rows := make([]Row, 0, total)
	for _, l := range leads {
		rows = append(rows, toRow(l))
	}

	body, err := c.post(ctx, upsertRequest{Action: ActionUpsert, Leads: rows})
	if err != nil {
		return usecase.SyncResult{Total: total}, fmt.Errorf("sheets upsert: %w", err)
	}

	var resp upsertResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			c.logger.Warn("unparseable upsert response, assuming full sync", "error", err)
		}
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "webhook reported failure"
		}
		return usecase.SyncResult{Total: total}, fmt.Errorf("sheets upsert: %s", msg)
	}

	res := usecase.SyncResult{Synced: total, Total: total}
	if resp.Synced != nil {
		res.Synced = *resp.Synced
	}
	if resp.Total != nil {
		res.Total = *resp.Total
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
