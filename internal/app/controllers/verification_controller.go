package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/app/models/dto"
	"github.com/yigit/offerdesk/internal/app/services"
	"github.com/yigit/offerdesk/internal/middleware"
)

// VerificationController serves the public reference lookup
type VerificationController struct {
	service services.VerificationService
}

// NewVerificationController creates a new VerificationController
func NewVerificationController(service services.VerificationService) *VerificationController {
	return &VerificationController{service: service}
}

// Verify godoc
// @Summary Verify an offer letter
// @Description Public lookup of a generated or sent offer letter by reference number
// @Tags verify
// @Produce json
// @Param ref path string true "Reference number" example(OL482913)
// @Success 200 {object} dto.APIResponse{data=dto.VerificationResponse}
// @Failure 400 {object} dto.ErrorResponse "Empty reference number"
// @Failure 404 {object} dto.ErrorResponse "No offer letter found with this reference number"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /verify/{ref} [get]
func (c *VerificationController) Verify(ctx *gin.Context) {
	letter, err := c.service.Verify(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewVerificationResponse(letter)))
}

// Domains godoc
// @Summary Suggested internship domains
// @Tags offer-letters
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DomainsResponse}
// @Router /domains [get]
func (c *VerificationController) Domains(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DomainsResponse{Domains: models.SuggestedDomains}))
}
