package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/offerdesk/internal/config"
)

func offerMessage(t *testing.T) *Message {
	t.Helper()
	html, err := OfferLetterHTML("Asha Rao", "http://localhost:8080/documents/OL482913.pdf")
	require.NoError(t, err)
	return &Message{
		To:      Address{Email: "asha@x.com", Name: "Asha Rao"},
		Subject: "Offer Letter - OL482913",
		HTML:    html,
		Attachments: []Attachment{{
			Name:        OfferLetterAttachmentName("Asha Rao"),
			Content:     []byte("%PDF-1.3 fake"),
			ContentType: "application/pdf",
		}},
	}
}

func TestBrevoSender_Send(t *testing.T) {
	var got brevoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "xkeysib-test", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@smtp-relay>"}`))
	}))
	defer srv.Close()

	sender := NewBrevoSender(BrevoConfig{
		APIKey:  "xkeysib-test",
		BaseURL: srv.URL + "/",
		From:    Address{Email: "hr@suvidha.org", Name: "HR Team"},
		Timeout: time.Second,
	})

	require.NoError(t, sender.Send(context.Background(), offerMessage(t)))

	assert.Equal(t, brevoContact{Email: "hr@suvidha.org", Name: "HR Team"}, got.Sender)
	assert.Equal(t, []brevoContact{{Email: "asha@x.com", Name: "Asha Rao"}}, got.To)
	assert.Equal(t, "Offer Letter - OL482913", got.Subject)
	require.Len(t, got.Attachment, 1)
	assert.Equal(t, "Asha Rao_offer-letter.pdf", got.Attachment[0].Name)

	raw, err := base64.StdEncoding.DecodeString(got.Attachment[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 fake", string(raw))
}

func TestBrevoSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	sender := NewBrevoSender(BrevoConfig{APIKey: "bad", BaseURL: srv.URL})
	err := sender.Send(context.Background(), offerMessage(t))

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Equal(t, "Key not found", perr.Error())
	assert.Contains(t, perr.Body, "unauthorized")
}

func TestBrevoSender_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewBrevoSender(BrevoConfig{BaseURL: srv.URL}).Send(context.Background(), offerMessage(t))
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "email provider returned status 502", perr.Error())
}

func TestMessageValidate(t *testing.T) {
	msg := offerMessage(t)
	msg.To.Email = " "
	assert.ErrorIs(t, msg.Validate(), ErrInvalidMessage)

	msg = offerMessage(t)
	msg.Subject = ""
	assert.ErrorIs(t, NewLogSender(zerolog.Nop()).Send(context.Background(), msg), ErrInvalidMessage)
}

func TestOfferLetterHTML(t *testing.T) {
	html, err := OfferLetterHTML(`<b>Asha</b>`, "https://cdn.example.org/OL1.pdf?x=1&y=2")
	require.NoError(t, err)

	assert.Contains(t, html, "Hello &lt;b&gt;Asha&lt;/b&gt;,")
	assert.Contains(t, html, "View Offer Letter")
	assert.Contains(t, html, `href="https://cdn.example.org/OL1.pdf?x=1&amp;y=2"`)
	assert.Contains(t, html, "This is an automated message, please do not reply to this email.")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	require.NoError(t, sender.Send(context.Background(), offerMessage(t)))
	assert.Contains(t, buf.String(), `"to":"asha@x.com"`)
	assert.Contains(t, buf.String(), "Asha Rao_offer-letter.pdf")
}

func TestSMTPSender_Build(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{
		Host: "localhost", Port: 2525,
		From: Address{Email: "hr@suvidha.org", Name: "HR Team"},
	})

	var buf bytes.Buffer
	_, err := sender.build(offerMessage(t)).WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: Offer Letter - OL482913")
	assert.Contains(t, out, `"HR Team" <hr@suvidha.org>`)
	assert.Contains(t, out, "Asha Rao_offer-letter.pdf")
	assert.Contains(t, out, "application/pdf")
	assert.True(t, strings.Contains(out, base64.StdEncoding.EncodeToString([]byte("%PDF-1.3 fake"))))
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, offerMessage(t)), context.Canceled)
}

func TestNewSender(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	s, err := NewSender(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	cfg.Mail.Provider = config.MailProviderBrevo
	s, err = NewSender(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &BrevoSender{}, s)

	cfg.Mail.Provider = config.MailProviderSMTP
	s, err = NewSender(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	cfg.Mail.Provider = "pigeon"
	_, err = NewSender(cfg, zerolog.Nop())
	assert.Error(t, err)
}
