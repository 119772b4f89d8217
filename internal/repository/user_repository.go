package repository

import (
	"context"

	"ecommerce-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type ActivityRepository interface {
	Append(ctx context.Context, a *domain.UserActivity) error
	ListByUser(ctx context.Context, userID uint64) ([]domain.UserActivity, error)
}
