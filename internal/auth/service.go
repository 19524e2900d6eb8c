package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/config"
)

var ErrInvalidToken = apperr.Unauthorized("invalid token")

type Service struct {
	config     *config.AuthConfig
	twoFactor  *config.TwoFactorConfig
	log        *zap.Logger
	repository Repository
}

type Claims struct {
	UserID       string `json:"userId"`
	SecondFactor bool   `json:"isSecondFactorAuthenticated"`
	jwt.RegisteredClaims
}

func NewService(config *config.AuthConfig, twoFactor *config.TwoFactorConfig, log *zap.Logger, repo Repository) *Service {
	return &Service{
		config:     config,
		twoFactor:  twoFactor,
		log:        log,
		repository: repo,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (s *Service) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueSession signs a session token for userID.
func (s *Service) IssueSession(userID uuid.UUID, secondFactor bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID.String(),
		SecondFactor: secondFactor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ResolveSession turns a session token into its user. A user with two-factor
// authentication enabled is only resolved from a token that carries the second
// factor, unless firstFactorOnly is set.
func (s *Service) ResolveSession(ctx context.Context, tokenString string, firstFactorOnly bool) (*User, *Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.repository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	if user.TwoFactorEnabled && !claims.SecondFactor && !firstFactorOnly {
		return nil, nil, apperr.Unauthorized("two-factor authentication required")
	}

	return user, claims, nil
}

// RefreshSession re-issues a still valid token, keeping its second-factor claim.
func (s *Service) RefreshSession(ctx context.Context, tokenString string) (string, error) {
	if !s.config.RefreshTokenEnabled {
		return "", apperr.PolicyViolation("refresh token functionality is disabled")
	}

	user, claims, err := s.ResolveSession(ctx, tokenString, true)
	if err != nil {
		return "", err
	}

	return s.IssueSession(user.ID, claims.SecondFactor)
}

func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*User, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: &hashedPassword,
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// VerifyCredentials checks an email/password pair.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.HashPassword("dummy") // Prevent timing attacks
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	if user.PasswordHash == nil || !s.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repository.GetUserByID(ctx, id)
}

func (s *Service) UpdateName(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := s.repository.UpdateName(ctx, id, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return s.repository.GetUserByID(ctx, id)
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.InvalidInput("name is required")
	}
	if len(name) < 3 || len(name) > 32 {
		return apperr.InvalidInput("name must be between 3 and 32 characters")
	}
	return nil
}

func validateRegistration(name, email, password string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if password == "" {
		return apperr.InvalidInput("password is required")
	}
	if len(password) < 8 {
		return apperr.InvalidInput("password must be at least 8 characters")
	}
	if email == "" {
		return apperr.InvalidInput("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.InvalidInput("invalid email format")
	}
	return nil
}
