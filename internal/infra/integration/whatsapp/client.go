package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

var ErrNotConfigured = errors.New("whatsapp not configured")

// Client sends template messages through the WhatsApp Cloud API.
type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	http        *http.Client
	logger      *slog.Logger
}

func NewClient(accessToken, phoneID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
		logger:      slog.Default().With("integration", "whatsapp"),
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	msg := newTemplateMessage(input)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	endpoint := c.baseURL + "/" + c.phoneID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send template %s: %w", input.TemplateName, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	// error bodies are not always JSON; the status code still decides
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out)

	switch {
	case out.Error != nil:
		return fmt.Errorf("send template %s: %s (code %d)", input.TemplateName, out.Error.Message, out.Error.Code)
	case resp.StatusCode >= 300:
		return fmt.Errorf("send template %s: unexpected status %d", input.TemplateName, resp.StatusCode)
	}

	var messageID string
	if len(out.Messages) > 0 {
		messageID = out.Messages[0].ID
	}
	c.logger.Debug("template message accepted",
		"template", input.TemplateName,
		"to", maskPhone(input.PhoneNumber),
		"message_id", messageID,
	)
	return nil
}

func newTemplateMessage(input SendMessageInput) templateMessage {
	lang := input.Language
	if lang == "" {
		lang = "en"
	}

	params := make([]textParam, 0, len(input.Parameters))
	for _, p := range input.Parameters {
		params = append(params, textParam{Type: "text", Text: p})
	}

	return templateMessage{
		Product:       "whatsapp",
		RecipientType: "individual",
		To:            input.PhoneNumber,
		Type:          "template",
		Template: template{
			Name:       input.TemplateName,
			Language:   language{Code: lang},
			Components: []component{{Type: "body", Parameters: params}},
		},
	}
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return "****" + phone[len(phone)-4:]
}
