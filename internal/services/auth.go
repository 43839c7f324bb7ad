package services

import (
	"errors"
	"strings"
	"time"

	"github.com/KrishanLala/KREIT-Score/internal/config"
	"github.com/KrishanLala/KREIT-Score/internal/database"
	"github.com/KrishanLala/KREIT-Score/internal/models"
	"github.com/KrishanLala/KREIT-Score/pkg/auth"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService struct {
	db  *database.DB
	cfg *config.Config
}

func NewAuthService(db *database.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Request/Response types
type SignupRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	User         *UserResponse `json:"user"`
}

type UserResponse struct {
	ID               uint      `json:"id"`
	KreitID          string    `json:"kreit_id"`
	Email            string    `json:"email"`
	FirstName        *string   `json:"first_name,omitempty"`
	LastName         *string   `json:"last_name,omitempty"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
}

// Signup creates a new user with an email and password
func (s *AuthService) Signup(req *SignupRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, errors.New("email is already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		KreitID:          newKreitID(),
		Email:            email,
		PasswordHash:     hash,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		SubscriptionTier: models.TierFree,
		Role:             "user",
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return s.buildAuthResponse(&user)
}

// Login authenticates an email/password pair
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, errors.New("invalid email or password")
	}

	return s.buildAuthResponse(&user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(req *RefreshTokenRequest) (*AuthResponse, error) {
	claims, err := auth.ValidateRefreshToken(req.RefreshToken, s.cfg.JWTSecretKey)
	if err != nil {
		return nil, errors.New("invalid or expired refresh token")
	}

	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	return s.buildAuthResponse(&user)
}

func (s *AuthService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	accessToken, refreshToken, err := auth.GenerateTokenPair(
		user.ID,
		s.cfg.JWTSecretKey,
		s.cfg.JWTAccessTokenExpireMin,
		s.cfg.JWTRefreshTokenExpireDays,
	)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		User: &UserResponse{
			ID:               user.ID,
			KreitID:          user.KreitID,
			Email:            user.Email,
			FirstName:        user.FirstName,
			LastName:         user.LastName,
			SubscriptionTier: user.SubscriptionTier,
			CreatedAt:        user.CreatedAt,
		},
	}, nil
}

// newKreitID returns a short public user identifier
func newKreitID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "KREIT-" + id[:8]
}
