package services

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenService issues and redeems single-use, time-limited credentials
// for email verification and password reset. The two families share the
// issue/redeem contract but are never interchangeable.
type TokenService struct {
	tokens          repository.TokenRepository
	users           repository.UserRepository
	verificationTTL time.Duration
	resetTTL        time.Duration
}

func NewTokenService(tokens repository.TokenRepository, users repository.UserRepository, verificationTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{
		tokens:          tokens,
		users:           users,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
}

// IssueVerificationToken stores a fresh unguessable token and returns it
// for out-of-band delivery. The caller emails it; it is never logged.
func (s *TokenService) IssueVerificationToken(ctx context.Context, userID uint64) (string, error) {
	var token string
	err := s.withDuplicateRetry(func() error {
		token = uuid.NewString()
		return s.tokens.CreateEmailVerification(ctx, &domain.EmailVerification{
			UserID:    userID,
			Token:     token,
			ExpiresAt: time.Now().Add(s.verificationTTL),
		})
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *TokenService) RedeemVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	rec, err := s.tokens.ConsumeEmailVerification(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidToken
	}
	if !rec.IsUsed {
		// The conditional update refused the row: live but past expiry.
		return nil, ErrTokenExpired
	}
	return s.owner(ctx, rec.UserID)
}

func (s *TokenService) IssuePasswordResetToken(ctx context.Context, userID uint64) (string, error) {
	var token string
	err := s.withDuplicateRetry(func() error {
		token = uuid.NewString()
		return s.tokens.CreatePasswordResetToken(ctx, &domain.PasswordResetToken{
			UserID:    userID,
			Token:     token,
			ExpiresAt: time.Now().Add(s.resetTTL),
		})
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *TokenService) RedeemPasswordResetToken(ctx context.Context, token string) (*domain.User, error) {
	rec, err := s.tokens.ConsumePasswordResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidToken
	}
	if !rec.IsUsed {
		return nil, ErrTokenExpired
	}
	return s.owner(ctx, rec.UserID)
}

func (s *TokenService) owner(ctx context.Context, userID uint64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// A v4 token colliding is not a realistic event, but the unique index
// reports it if it happens; one retry with a fresh token covers it.
func (s *TokenService) withDuplicateRetry(create func() error) error {
	err := create()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = create()
	}
	return err
}
