package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const brevoSendPath = "/v3/smtp/email"

// BrevoConfig holds credentials for the Brevo (Sendinblue) transactional API
type BrevoConfig struct {
	APIKey  string
	BaseURL string
	From    Address
	Timeout time.Duration
}

// BrevoSender sends mail through Brevo's REST API
type BrevoSender struct {
	apiKey  string
	baseURL string
	from    Address
	client  *http.Client
}

// ProviderError is a non-2xx answer from the provider.
// Body is the raw response text.
type ProviderError struct {
	Status  int
	Message string
	Body    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("email provider returned status %d", e.Status)
}

// NewBrevoSender creates a Brevo sender
func NewBrevoSender(cfg BrevoConfig) *BrevoSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrevoSender{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		from:    cfg.From,
		client:  &http.Client{Timeout: timeout},
	}
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoAttachment struct {
	Content string `json:"content"`
	Name    string `json:"name"`
}

type brevoRequest struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

type brevoErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send posts the message to Brevo
func (s *BrevoSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	payload := brevoRequest{
		Sender:      brevoContact{Email: s.from.Email, Name: s.from.Name},
		To:          []brevoContact{{Email: msg.To.Email, Name: msg.To.Name}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	for _, a := range msg.Attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Content: base64.StdEncoding.EncodeToString(a.Content),
			Name:    a.Name,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode brevo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+brevoSendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build brevo request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	perr := &ProviderError{Status: resp.StatusCode, Body: string(respBody)}
	var parsed brevoErrorBody
	if json.Unmarshal(respBody, &parsed) == nil && parsed.Message != "" {
		perr.Message = parsed.Message
	}
	return perr
}
