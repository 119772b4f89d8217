package services

import (
	"time"

	"ecommerce-backend/internal/domain"

	"github.com/shopspring/decimal"
)

func testOrder(id uint64, status domain.OrderStatus, payment domain.PaymentStatus, items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:            id,
		OrderNumber:   "ORD-TEST0001",
		CustomerEmail: "buyer@example.com",
		Status:        status,
		PaymentStatus: payment,
		Items:         items,
		CreatedAt:     time.Now(),
	}
}

func testItem(productID uint64, qty uint32) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   productID,
		ProductName: "Test Product",
		ProductSKU:  "SKU-1",
		UnitPrice:   decimal.NewFromInt(100),
		Quantity:    qty,
		TotalPrice:  decimal.NewFromInt(100).Mul(decimal.NewFromInt(int64(qty))),
	}
}

func testUser(id uint64, email, passwordHash string) *domain.User {
	return &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    "Test",
		LastName:     "User",
	}
}
