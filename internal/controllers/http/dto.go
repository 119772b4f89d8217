package http

import (
	"ecommerce-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LogoutRequest struct {
	UserID uint64 `json:"userId" binding:"required"`
}

type ChangePasswordRequest struct {
	UserID          uint64 `json:"userId" binding:"required"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
}

type AddressRequest struct {
	AddressDTO
	IsDefault bool `json:"isDefault"`
}

type AddressDTO struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	Country      string `json:"country" binding:"required"`
	ZipCode      string `json:"zipCode" binding:"required"`
}

type CreateOrderItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  uint32 `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	UserID          *uint64                  `json:"userId"`
	CustomerEmail   string                   `json:"customerEmail" binding:"required,email"`
	CustomerPhone   string                   `json:"customerPhone"`
	PaymentMethod   string                   `json:"paymentMethod"`
	TaxAmount       decimal.Decimal          `json:"taxAmount"`
	ShippingCost    decimal.Decimal          `json:"shippingCost"`
	DiscountAmount  decimal.Decimal          `json:"discountAmount"`
	ShippingAddress AddressDTO               `json:"shippingAddress" binding:"required"`
	BillingAddress  AddressDTO               `json:"billingAddress" binding:"required"`
	CustomerNotes   string                   `json:"customerNotes"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type TransitionRequest struct {
	Status        domain.OrderStatus   `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded"`
	ActorID       *uint64              `json:"actorId"`
}

func (a AddressDTO) toDomain() domain.Address {
	return domain.Address{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		Country:      a.Country,
		ZipCode:      a.ZipCode,
	}
}
