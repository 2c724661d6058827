package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealership/internal/models"
	"dealership/internal/repository"
	"dealership/internal/validation"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the payload of an API token. Subject holds the profile id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number" validate:"phone"`
	Role        string `json:"role" validate:"omitempty,oneof=admin staff"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.Profile, error)
	ParseToken(token string) (*Claims, error)
	Register(ctx context.Context, in RegisterInput) (*models.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

type authService struct {
	profiles repository.ProfileRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(profiles repository.ProfileRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{profiles: profiles, secret: []byte(secret), tokenTTL: tokenTTL}
}

// HashPassword returns the bcrypt hash stored on a profile.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.Profile, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return "", nil, ErrInactiveProfile
	}

	now := timeNow()
	claims := Claims{
		Email: profile.Email,
		Role:  profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, profile, nil
}

func (s *authService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = string(models.RoleStaff)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		Email:        in.Email,
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *authService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *authService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.List(ctx)
}
