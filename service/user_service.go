package service

import (
	"context"
	"errors"
	"studylab-api/model"
	"studylab-api/repository"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// UserService handles user-related lookups.
type UserService struct {
	userRepo repository.IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the public projection of a user. Store failures are
// returned unchanged so callers can tell them apart from ErrUserNotFound.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (model.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.PublicUser{}, ErrUserNotFound
		}
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}
