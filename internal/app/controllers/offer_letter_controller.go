package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/app/services"
	"github.com/yigit/offerdesk/internal/middleware"
	"github.com/yigit/offerdesk/internal/pkg/helpers"
)

// OfferLetterController serves the HR dashboard
type OfferLetterController struct {
	service services.OfferLetterService
	logger  zerolog.Logger
}

// NewOfferLetterController creates a new OfferLetterController
func NewOfferLetterController(service services.OfferLetterService, logger zerolog.Logger) *OfferLetterController {
	return &OfferLetterController{service: service, logger: logger}
}

// List godoc
// @Summary List offer letters
// @Description Lists the caller's offer letters, newest first. Page size is 10, 25 or 50.
// @Tags offer-letters
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(draft, generated, sent)
// @Param q query string false "Search candidate name, email or reference number"
// @Param limit query int false "Page size" Enums(10, 25, 50) default(10)
// @Success 200 {object} dto.APIResponse{data=dto.OfferLetterListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /offer-letters [get]
func (c *OfferLetterController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var query dto.ListOfferLettersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	letters, limit, err := c.service.List(ctx.Request.Context(), userID, services.ListFilter{
		Status: query.Status,
		Query:  query.Query,
		Limit:  helpers.ParseLimitParam(ctx),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewOfferLetterListResponse(letters, limit)))
}

// Certificates godoc
// @Summary List issued certificates
// @Description Lists the caller's generated and sent letters
// @Tags offer-letters
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search candidate name, email or reference number"
// @Param limit query int false "Page size" Enums(10, 25, 50) default(10)
// @Success 200 {object} dto.APIResponse{data=dto.OfferLetterListResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /certificates [get]
func (c *OfferLetterController) Certificates(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	letters, limit, err := c.service.Certificates(ctx.Request.Context(), userID, ctx.Query("q"), helpers.ParseLimitParam(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewOfferLetterListResponse(letters, limit)))
}

// Create godoc
// @Summary Create an offer letter
// @Description Creates a draft with a fresh reference number
// @Tags offer-letters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOfferLetterRequest true "Candidate details"
// @Success 201 {object} dto.APIResponse{data=dto.OfferLetterResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Could not allocate a reference number"
// @Router /offer-letters [post]
func (c *OfferLetterController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateOfferLetterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid offer letter payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	letter, err := c.service.Create(ctx.Request.Context(), userID, services.CreateOfferLetterInput{
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		Domain:         req.Domain,
		JoiningDate:    req.JoiningDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewOfferLetterResponse(letter)))
}

// Get godoc
// @Summary Get an offer letter
// @Tags offer-letters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer letter ID"
// @Success 200 {object} dto.APIResponse{data=dto.OfferLetterResponse}
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /offer-letters/{id} [get]
func (c *OfferLetterController) Get(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	letter, err := c.service.Get(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewOfferLetterResponse(letter)))
}

// EnsureDocument godoc
// @Summary Generate the offer letter PDF
// @Description Renders and stores the PDF unless one already exists. Safe to repeat.
// @Tags offer-letters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer letter ID"
// @Success 200 {object} dto.APIResponse{data=dto.DocumentResponse}
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Failure 500 {object} dto.ErrorResponse "Rendering failed"
// @Failure 502 {object} dto.ErrorResponse "Storage failed"
// @Router /offer-letters/{id}/document [post]
func (c *OfferLetterController) EnsureDocument(ctx *gin.Context) {
	letter, ok := c.ensure(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDocumentResponse(letter)))
}

// Download godoc
// @Summary Download the offer letter PDF
// @Description Ensures the document exists and redirects to it
// @Tags offer-letters
// @Security BearerAuth
// @Param id path int true "Offer letter ID"
// @Success 302 {string} string "Redirect to the PDF"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /offer-letters/{id}/download [get]
func (c *OfferLetterController) Download(ctx *gin.Context) {
	letter, ok := c.ensure(ctx)
	if !ok {
		return
	}
	ctx.Redirect(http.StatusFound, *letter.PdfURL)
}

func (c *OfferLetterController) ensure(ctx *gin.Context) (*models.OfferLetter, bool) {
	userID, ok := requireUser(ctx)
	if !ok {
		return nil, false
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return nil, false
	}

	letter, err := c.service.EnsureDocument(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return letter, true
}

// Send godoc
// @Summary Email the offer letter
// @Description Sends the generated PDF link to the candidate through the email relay
// @Tags offer-letters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer letter ID"
// @Success 200 {object} dto.APIResponse{data=dto.OfferLetterResponse}
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Failure 409 {object} dto.ErrorResponse "Document not generated yet"
// @Failure 502 {object} dto.ErrorResponse "Email relay failed"
// @Router /offer-letters/{id}/send [post]
func (c *OfferLetterController) Send(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	letter, err := c.service.Notify(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.NewSuccessResponse(dto.NewOfferLetterResponse(letter))
	resp.Message = "Offer letter sent to " + letter.CandidateEmail
	ctx.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete an offer letter
// @Tags offer-letters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer letter ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /offer-letters/{id} [delete]
func (c *OfferLetterController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.Delete(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Offer letter deleted"))
}
