package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
)

// Service exposes public profiles and profile edits.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// List returns all users, newest first.
func (s Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Get returns one user.
func (s Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile applies the provided fields to userID's profile.
func (s Service) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	update.FullName = trimmed(update.FullName)
	update.Bio = trimmed(update.Bio)
	update.Location = trimmed(update.Location)
	update.Avatar = trimmed(update.Avatar)
	if update.FullName != nil && *update.FullName == "" {
		return nil, domain.Invalid("fullName", "cannot be empty")
	}
	if update.Empty() {
		return s.users.GetUserByID(ctx, userID)
	}
	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
