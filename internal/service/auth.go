package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsato/pulsato-server/internal/repository/models"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenSigner mints a session token for an authenticated user.
type TokenSigner func(userID, email string, ttl time.Duration) (string, error)

const sessionTTL = 30 * 24 * time.Hour

// AuthService handles signup and login.
type AuthService struct {
	companies CompanyStore
	sign      TokenSigner
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// AuthResult is a successful signup or login.
type AuthResult struct {
	Token    string
	UserID   string
	Username string
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(companies CompanyStore, sign TokenSigner, logger *zap.Logger) *AuthService {
	if companies == nil {
		panic("nil store provided to NewAuthService")
	}
	if sign == nil {
		panic("nil TokenSigner provided to NewAuthService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		companies: companies,
		sign:      sign,
		logger:    logger.Named("auth-service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrInvalidInput)
	}

	existing, err := s.companies.FindProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           s.newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.companies.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	token, err := s.sign(profile.ID, profile.Email, sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("profile created", zap.String("user_id", profile.ID))
	return &AuthResult{Token: token, UserID: profile.ID, Username: profile.Username}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	profile, err := s.companies.FindProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sign(profile.ID, profile.Email, sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, UserID: profile.ID, Username: profile.Username}, nil
}
