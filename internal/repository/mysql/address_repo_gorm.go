package mysql

import (
	"context"
	"errors"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/repository"

	"gorm.io/gorm"
)

type addressRepo struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) repository.AddressRepository {
	return &addressRepo{db: db}
}

func (r *addressRepo) Create(ctx context.Context, a *domain.UserAddress) error {
	return dbFrom(ctx, r.db).Create(a).Error
}

func (r *addressRepo) FindByID(ctx context.Context, id uint64) (*domain.UserAddress, error) {
	var a domain.UserAddress
	err := dbFrom(ctx, r.db).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *addressRepo) ListByUser(ctx context.Context, userID uint64) ([]domain.UserAddress, error) {
	var out []domain.UserAddress
	err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *addressRepo) Update(ctx context.Context, a *domain.UserAddress) error {
	return dbFrom(ctx, r.db).Save(a).Error
}

func (r *addressRepo) Delete(ctx context.Context, id uint64) error {
	return dbFrom(ctx, r.db).Delete(&domain.UserAddress{}, id).Error
}

func (r *addressRepo) ClearDefault(ctx context.Context, userID uint64) error {
	return dbFrom(ctx, r.db).
		Model(&domain.UserAddress{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).
		Error
}
