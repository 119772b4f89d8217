package repository

import (
	"context"

	"ecommerce-backend/internal/domain"
)

// AddressRepository persists the address book. At most one address per
// user is the default; ClearDefault demotes the current one so a new
// default can be promoted in the same transaction.
type AddressRepository interface {
	Create(ctx context.Context, a *domain.UserAddress) error
	FindByID(ctx context.Context, id uint64) (*domain.UserAddress, error)
	ListByUser(ctx context.Context, userID uint64) ([]domain.UserAddress, error)
	Update(ctx context.Context, a *domain.UserAddress) error
	Delete(ctx context.Context, id uint64) error
	ClearDefault(ctx context.Context, userID uint64) error
}
