package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/pkg/crypto"
)

var (
	// ErrUnauthorized wraps every Auth Gate failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("token required")
	// ErrUnknownUser is returned when a valid token names a user that no longer resolves.
	ErrUnknownUser = errors.New("unknown user")
)

// Tokens issues and verifies bearer tokens.
type Tokens interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// Service handles registration, login and request authorization.
type Service struct {
	users  repository.UserRepository
	tokens Tokens
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Service.
func New(users repository.UserRepository, tokens Tokens, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{users: users, tokens: tokens, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// RegisterInput carries the signup form.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Username string
	Bio      string
	Location string
	Avatar   string
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in RegisterInput) validate() (RegisterInput, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Email == "":
		return in, domain.Invalid("email", "is required")
	case in.Password == "":
		return in, domain.Invalid("password", "is required")
	case in.FullName == "":
		return in, domain.Invalid("fullName", "is required")
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return in, domain.Invalid("email", "is not a valid address")
	}
	if len([]rune(in.Password)) < crypto.MinPasswordLength {
		return in, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", crypto.MinPasswordLength))
	}
	if len(in.Password) > crypto.MaxPasswordBytes {
		return in, domain.Invalid("password", fmt.Sprintf("must be at most %d bytes", crypto.MaxPasswordBytes))
	}
	if in.Username == "" {
		in.Username, _, _ = strings.Cut(in.Email, "@")
	}
	return in, nil
}

// Register creates an account and returns it with a fresh token.
func (s Service) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	in, err := in.validate()
	if err != nil {
		return nil, "", err
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		Bio:          strings.TrimSpace(in.Bio),
		Location:     strings.TrimSpace(in.Location),
		Avatar:       strings.TrimSpace(in.Avatar),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", domain.ErrDuplicateUser
		}
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Verify checks an email and password pair. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (s Service) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			crypto.BurnCompare(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and returns a token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", domain.Invalid("", "email and password are required")
	}
	user, err := s.Verify(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Authorize resolves a bearer token to its user. Every failure wraps
// ErrUnauthorized together with the specific reason.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken)
	}
	userID, err := s.tokens.Verify(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrUnknownUser)
		}
		return nil, err
	}
	return user, nil
}
