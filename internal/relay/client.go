package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
)

// SendEmailPath is the relay route that sends one offer letter
const SendEmailPath = "/api/send-email"

// Client posts send requests to a running relay
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a relay client. timeout bounds the whole round trip,
// including the relay's own PDF fetch and provider call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Send asks the relay to email the letter. A failed send comes back as a
// relay error carrying the relay's own message.
func (c *Client) Send(ctx context.Context, req *dto.SendEmailRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SendEmailPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return apperrors.NewRelayError("Email relay is unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apperrors.NewRelayError("Failed to read relay response").WithCause(err)
	}

	var out dto.SendEmailResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewRelayError(failureMessage(out, decodeErr)).
			WithDetails(map[string]interface{}{"status": resp.StatusCode})
	}
	if decodeErr != nil {
		return apperrors.NewRelayError("Relay returned an unreadable response").WithCause(decodeErr)
	}
	if !out.Success {
		return apperrors.NewRelayError(failureMessage(out, nil))
	}
	return nil
}

func failureMessage(out dto.SendEmailResponse, decodeErr error) string {
	if decodeErr == nil {
		if out.Error != "" {
			return out.Error
		}
		if out.Details != "" {
			return out.Details
		}
	}
	return "Failed to send email"
}
