package repository

import (
	"context"

	"ecommerce-backend/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	// FindByIDForUpdate loads the order with its items under a row lock.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uint64) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	AppendHistory(ctx context.Context, h *domain.OrderStatusHistory) error
	History(ctx context.Context, orderID uint64) ([]domain.OrderStatusHistory, error)
}
