package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/mahora/task-tracker/internal/models"
	"github.com/mahora/task-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMissingCredentials = errors.New("credentialId and credentialSecret are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	CredentialID     string
	CredentialSecret string
}

// Login verifies credentials and returns the authenticated user. Credentials
// are stored and compared as plain text.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	if input.CredentialID == "" || input.CredentialSecret == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, input.CredentialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Credential), []byte(input.CredentialSecret)) != 1 {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
