package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/apperrors"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
	"github.com/pageza/recipeshare/backend/internal/validation"
)

var (
	ErrEmailInUse          = apperrors.AlreadyExists("Email already in use")
	ErrInvalidCredentials  = apperrors.Unauthorized("Invalid credentials")
	ErrInvalidVerification = apperrors.Validation("Invalid or expired verification token")
	ErrInvalidResetToken   = apperrors.Validation("Invalid or expired reset token")
	ErrAlreadyVerified     = apperrors.Validation("Email is already verified")
	ErrEmailRequired       = apperrors.Validation("Email is required")
	ErrInvalidToken        = errors.New("invalid token")
)

// ErrEmailNotVerified tells the client to offer a verification resend
var ErrEmailNotVerified = apperrors.Forbidden(
	"Please verify your email before logging in. Check your inbox for a verification link.",
).WithField("requiresVerification", true)

type AuthService struct {
	db     *gorm.DB
	cfg    config.AuthConfig
	mailer Mailer
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg config.AuthConfig, mailer Mailer, logger zerolog.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:     db,
		cfg:    cfg,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeEmail trims and case-folds an address for storage and lookup
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// Register creates an unverified account, mails a verification link and
// returns the user with a session token. A failed send does not fail the
// registration.
func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*models.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	if err := validation.Validate(req); err != nil {
		return nil, "", err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, "", ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return nil, "", err
	}
	until := s.now().Add(s.cfg.VerificationTTL)

	user := &models.User{
		Name:                   req.Name,
		Email:                  req.Email,
		PasswordHash:           string(hash),
		EmailVerificationToken: &token,
		EmailVerificationUntil: &until,
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send verification email")
	}

	jwtToken, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, jwtToken, nil
}

// Login checks credentials and returns a session token for verified users
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// VerifyEmail marks the account holding an unexpired verification token as verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidVerification
	}
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email_verification_token = ? AND email_verification_until > ?", token, s.now()).
		First(&user).Error
	if err != nil {
		return notFound(err, ErrInvalidVerification)
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"is_email_verified":        true,
		"email_verification_token": nil,
		"email_verification_until": nil,
	}).Error
}

// ResendVerification issues a fresh verification token and mails it
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	until := s.now().Add(s.cfg.VerificationTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_verification_token": token,
		"email_verification_until": until,
	}).Error; err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		return apperrors.Internal("Failed to send verification email", err)
	}
	return nil
}

// RequestPasswordReset stores a reset token and mails the reset link. A
// failed send is logged; the token stays valid.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return notFound(err, ErrUserNotFound)
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	until := s.now().Add(s.cfg.ResetTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_password_token": token,
		"reset_password_until": until,
	}).Error; err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send password reset email")
	}
	return nil
}

// ConfirmPasswordReset sets a new password for the holder of an unexpired reset token
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := validation.Validate(types.ConfirmResetRequest{Token: token, Password: password}); err != nil {
		return err
	}
	var user models.User
	err := s.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_until > ?", token, s.now()).
		First(&user).Error
	if err != nil {
		return notFound(err, ErrInvalidResetToken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":        string(hash),
		"reset_password_token": nil,
		"reset_password_until": nil,
	}).Error
}

// GenerateToken signs a session token carrying the user's id, email and name
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// randomToken returns 32 random bytes, hex encoded
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
