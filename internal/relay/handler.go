package relay

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/pkg/email"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
)

const noDetails = "No additional details available"

// Fetcher retrieves the PDF to attach
type Fetcher interface {
	Fetch(ctx context.Context, pdfURL string) ([]byte, error)
}

// Handler serves the email relay endpoint
type Handler struct {
	fetcher Fetcher
	sender  email.Sender
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHandler creates a new relay Handler
func NewHandler(fetcher Fetcher, sender email.Sender, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{fetcher: fetcher, sender: sender, metrics: m, logger: logger}
}

// SendEmail godoc
// @Summary Send an offer letter email
// @Description Fetches the PDF at pdfUrl and emails it to the recipient as an attachment
// @Tags relay
// @Accept json
// @Produce json
// @Param request body dto.SendEmailRequest true "Email to send"
// @Success 200 {object} dto.SendEmailResponse
// @Failure 400 {object} dto.SendEmailResponse
// @Failure 500 {object} dto.SendEmailResponse
// @Router /api/send-email [post]
func (h *Handler) SendEmail(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Malformed send-email body")
		h.metrics.RelayEmail("invalid")
		c.JSON(http.StatusBadRequest, dto.SendEmailResponse{Success: false, Error: "Missing required fields"})
		return
	}

	if isBlank(req.To) || isBlank(req.Subject) || isBlank(req.PdfURL) || isBlank(req.RecipientName) {
		h.metrics.RelayEmail("invalid")
		c.JSON(http.StatusBadRequest, dto.SendEmailResponse{Success: false, Error: "Missing required fields"})
		return
	}

	log := h.logger.With().Str("to", req.To).Str("subject", req.Subject).Logger()

	log.Debug().Str("pdfUrl", req.PdfURL).Msg("Fetching PDF")
	pdf, err := h.fetcher.Fetch(c.Request.Context(), req.PdfURL)
	if err != nil {
		h.fail(c, log, err)
		return
	}

	html, err := email.OfferLetterHTML(req.RecipientName, req.PdfURL)
	if err != nil {
		h.fail(c, log, err)
		return
	}

	msg := &email.Message{
		To:      email.Address{Email: req.To, Name: req.RecipientName},
		Subject: req.Subject,
		HTML:    html,
		Attachments: []email.Attachment{{
			Name:        email.OfferLetterAttachmentName(req.RecipientName),
			Content:     pdf,
			ContentType: "application/pdf",
		}},
	}
	if err := h.sender.Send(c.Request.Context(), msg); err != nil {
		h.fail(c, log, err)
		return
	}

	h.metrics.RelayEmail("sent")
	log.Info().Int("pdfBytes", len(pdf)).Msg("Email sent successfully")
	c.JSON(http.StatusOK, dto.SendEmailResponse{Success: true, Message: "Email sent successfully"})
}

func (h *Handler) fail(c *gin.Context, log zerolog.Logger, err error) {
	h.metrics.RelayEmail("failed")
	log.Error().Err(err).Msg("Failed to send email")

	resp := dto.SendEmailResponse{Success: false, Error: err.Error(), Details: noDetails}
	if resp.Error == "" {
		resp.Error = "Failed to send email"
	}
	var perr *email.ProviderError
	if errors.As(err, &perr) && perr.Body != "" {
		resp.Details = perr.Body
	}
	c.JSON(http.StatusInternalServerError, resp)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
