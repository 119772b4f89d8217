package repository

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// TokenRepository persists the two token families. The families are
// deliberately separate methods over separate tables: redeeming a
// verification token can never satisfy a password reset.
//
// Consume methods are atomic compare-and-set operations, not a
// read-then-write pair: the row is marked used in the same statement
// that checks it is still live, so two concurrent redemptions cannot
// both succeed. On success the returned record has IsUsed true. A
// record returned with IsUsed still false exists and is unused but is
// past its expiry. A nil record means no unused row matched the token.
type TokenRepository interface {
	CreateEmailVerification(ctx context.Context, t *domain.EmailVerification) error
	ConsumeEmailVerification(ctx context.Context, token string) (*domain.EmailVerification, error)

	CreatePasswordResetToken(ctx context.Context, t *domain.PasswordResetToken) error
	ConsumePasswordResetToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
}
