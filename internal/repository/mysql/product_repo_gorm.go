package mysql

import (
	"context"
	"errors"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	err := dbFrom(ctx, r.db).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	var out []domain.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbFrom(ctx, r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) AdjustTrackedQuantity(ctx context.Context, productID uint64, delta int64) error {
	// One conditional UPDATE: floors at zero and skips untracked
	// products without a prior read. The row lock it takes keeps
	// concurrent transitions on the same product serialized.
	return dbFrom(ctx, r.db).
		Model(&domain.Product{}).
		Where("id = ? AND track_quantity = ?", productID, true).
		Update("quantity", gorm.Expr("GREATEST(0, quantity + ?)", delta)).
		Error
}
