package mysql

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/repository"

	"gorm.io/gorm"
)

type tokenRepo struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) CreateEmailVerification(ctx context.Context, t *domain.EmailVerification) error {
	return dbFrom(ctx, r.db).Create(t).Error
}

func (r *tokenRepo) ConsumeEmailVerification(ctx context.Context, token string) (*domain.EmailVerification, error) {
	var rec domain.EmailVerification
	err := r.consume(ctx, &domain.EmailVerification{}, &rec, token)
	if err != nil || rec.ID == 0 {
		return nil, err
	}
	return &rec, nil
}

func (r *tokenRepo) CreatePasswordResetToken(ctx context.Context, t *domain.PasswordResetToken) error {
	return dbFrom(ctx, r.db).Create(t).Error
}

func (r *tokenRepo) ConsumePasswordResetToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var rec domain.PasswordResetToken
	err := r.consume(ctx, &domain.PasswordResetToken{}, &rec, token)
	if err != nil || rec.ID == 0 {
		return nil, err
	}
	return &rec, nil
}

// consume marks the token used with a single conditional UPDATE so two
// concurrent redemptions can never both win. Expired rows are refused by
// the predicate and come back with IsUsed still false; missing or
// already-used tokens leave dst zero-valued.
func (r *tokenRepo) consume(ctx context.Context, model, dst any, token string) error {
	db := dbFrom(ctx, r.db)

	res := db.Model(model).
		Where("token = ? AND is_used = ? AND expires_at > ?", token, false, time.Now()).
		Update("is_used", true)
	if res.Error != nil {
		return res.Error
	}

	// Re-fetch only rows this caller could still act on: the one it just
	// consumed, or an unused-but-expired one. Rows consumed earlier (by
	// anyone) stay invisible, so a second redemption reads nothing.
	query := db.Where("token = ? AND is_used = ?", token, false)
	if res.RowsAffected == 1 {
		query = db.Where("token = ? AND is_used = ?", token, true)
	}
	err := query.First(dst).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return nil
}
