package auth

import (
	"context"
	"errors"

	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/logger"
)

// UserLookup is the part of the user repository authorization needs
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	users UserLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(users UserLookup) *AuthorizationService {
	return &AuthorizationService{users: users}
}

// ValidateUser checks that the account behind a token still exists
func (s *AuthorizationService) ValidateUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return apperrors.NewForbiddenError("Invalid user")
	}
	_, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewForbiddenError("Account no longer exists")
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in ValidateUser")
		return err
	}
	return nil
}

// EnsureOwner hides other owners' letters behind a not-found error
func (s *AuthorizationService) EnsureOwner(o *models.OfferLetter, userID int64) error {
	if o == nil || o.CreatedBy != userID {
		return apperrors.NewResourceNotFoundError("Offer letter not found")
	}
	return nil
}
