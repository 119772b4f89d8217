package repository

import (
	"context"

	"ecommerce-backend/internal/domain"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	// AdjustTrackedQuantity applies delta to the product's on-hand count,
	// floored at zero, in a single statement. Products with quantity
	// tracking disabled are left untouched.
	AdjustTrackedQuantity(ctx context.Context, productID uint64, delta int64) error
}
