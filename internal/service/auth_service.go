package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"bandprep/internal/models"
	"bandprep/internal/repository"
	"bandprep/internal/security"
	"bandprep/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo     *repository.UserRepository
	tokens       *security.TokenManager
	emailService *EmailService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenManager, emailService *EmailService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokens:       tokens,
		emailService: emailService,
	}
}

// Register creates a new user account and returns the user with a signed
// token. The first account created becomes the admin.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	userCount, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to count users: %w", err)
	}

	role := models.RoleUser
	if userCount == 0 {
		role = models.RoleAdmin
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Role:         role,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// Best effort: a failed welcome email never fails registration.
	if s.emailService != nil && s.emailService.IsEnabled() {
		if err := s.emailService.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Authenticate verifies credentials and returns the user with a signed token
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// OAuthLogin authenticates or creates a user from a verified OAuth identity
// and returns the user with a signed token
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.User, string, error) {
	if provider == "" || subject == "" {
		return nil, "", errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, "", fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, "", ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, existingUser.ID, provider, subject); err != nil {
				return nil, "", fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}

			// OAuth accounts get a random password so the hash column is
			// never empty; it cannot be used to log in.
			randomPasswordHash, err := security.HashPassword(uuid.New().String())
			if err != nil {
				return nil, "", fmt.Errorf("failed to generate oauth password hash: %w", err)
			}

			userCount, err := s.userRepo.CountUsers(ctx)
			if err != nil {
				return nil, "", fmt.Errorf("failed to count users: %w", err)
			}
			role := models.RoleUser
			if userCount == 0 {
				role = models.RoleAdmin
			}

			newUser := &models.User{
				ID:           uuid.New().String(),
				Email:        email,
				PasswordHash: randomPasswordHash,
				Name:         name,
				Role:         role,
			}
			if err := s.userRepo.CreateUser(ctx, newUser); err != nil {
				return nil, "", fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, newUser.ID, provider, subject); err != nil {
				return nil, "", fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = newUser
		}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}
