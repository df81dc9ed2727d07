package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
)

// RefLookup finds a letter by reference code
type RefLookup interface {
	FindByRef(ctx context.Context, refNo string, statuses ...models.OfferLetterStatus) (*models.OfferLetter, error)
}

// VerificationService answers public reference-code lookups
type VerificationService interface {
	Verify(ctx context.Context, refNo string) (*models.OfferLetter, error)
}

type verificationServiceImpl struct {
	letters RefLookup
	metrics *metrics.Metrics
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(letters RefLookup, m *metrics.Metrics) VerificationService {
	return &verificationServiceImpl{letters: letters, metrics: m}
}

// Verify finds a generated or sent letter by its reference code.
// Drafts are indistinguishable from unknown codes.
func (s *verificationServiceImpl) Verify(ctx context.Context, refNo string) (*models.OfferLetter, error) {
	refNo = strings.TrimSpace(refNo)
	if refNo == "" {
		s.metrics.VerifyLookup("invalid")
		return nil, apperrors.NewValidationError("refNo", "Please enter a reference number")
	}

	o, err := s.letters.FindByRef(ctx, refNo, models.PublicStatuses...)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.metrics.VerifyLookup("not_found")
			return nil, apperrors.NewResourceNotFoundError("No offer letter found with this reference number")
		}
		s.metrics.VerifyLookup("error")
		return nil, fmt.Errorf("error verifying offer letter: %w", err)
	}

	s.metrics.VerifyLookup("found")
	return o, nil
}
