package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-service/apperrors"
	"checkout-service/models"
	"checkout-service/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type IUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type ITokenService interface {
	GenerateTokenPair(user *models.User) (*TokenPair, error)
	GenerateAccessToken(user *models.User) (string, error)
	ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error)
}

type LoginResult struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         models.PublicUser `json:"user"`
}

type AuthService struct {
	userRepo       IUserRepository
	tokenService   ITokenService
	passwords      *PasswordValidator
	adminSecretKey string
	logger         *zap.Logger
	now            func() time.Time
}

func NewAuthService(ur IUserRepository, ts ITokenService, adminSecretKey string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:       ur,
		tokenService:   ts,
		passwords:      NewPasswordValidator(),
		adminSecretKey: adminSecretKey,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("Login with wrong password", zap.String("username", username))
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("record last login: %w", err)
	}

	tokens, err := s.tokenService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info("Admin logged in", zap.String("username", username))
	return &LoginResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user.Public(),
	}, nil
}

// RefreshAccessToken issues a new access token for the user named by a valid refresh token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokenService.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// CreateAdmin registers a new administrator. secretKey must match the configured admin key.
func (s *AuthService) CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.PublicUser, error) {
	if s.adminSecretKey == "" || subtle.ConstantTimeCompare([]byte(req.SecretKey), []byte(s.adminSecretKey)) != 1 {
		s.logger.Warn("Create admin attempted with invalid secret key")
		return nil, apperrors.ErrInvalidAdminKey
	}
	if err := ValidateUsername(req.Username); err != nil {
		return nil, apperrors.New(apperrors.ErrBadRequest.Code, err.Error(), nil)
	}
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrWeakPassword, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Created:  s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("Admin created", zap.String("username", user.Username))
	public := user.Public()
	return &public, nil
}
