package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestValidateUser(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	users.On("GetByID", ctx, int64(2)).Return(nil, apperrors.NewResourceNotFoundError("User not found"))
	users.On("GetByID", ctx, int64(3)).Return(nil, errors.New("connection reset"))

	s := NewAuthorizationService(users)

	assert.NoError(t, s.ValidateUser(ctx, 1))
	assert.ErrorIs(t, s.ValidateUser(ctx, 2), apperrors.ErrPermissionDenied)
	assert.EqualError(t, s.ValidateUser(ctx, 3), "connection reset")
	assert.ErrorIs(t, s.ValidateUser(ctx, 0), apperrors.ErrPermissionDenied)
	users.AssertExpectations(t)
}

func TestEnsureOwner(t *testing.T) {
	s := NewAuthorizationService(new(mockUsers))

	assert.NoError(t, s.EnsureOwner(&models.OfferLetter{CreatedBy: 7}, 7))
	assert.ErrorIs(t, s.EnsureOwner(&models.OfferLetter{CreatedBy: 7}, 8), apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, s.EnsureOwner(nil, 7), apperrors.ErrResourceNotFound)
}
