package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is a point-in-time snapshot copied onto the order. It is never
// linked back to a live address record.
type Address struct {
	FirstName    string `json:"firstName" gorm:"size:100"`
	LastName     string `json:"lastName" gorm:"size:100"`
	AddressLine1 string `json:"addressLine1" gorm:"size:255"`
	AddressLine2 string `json:"addressLine2" gorm:"size:255"`
	City         string `json:"city" gorm:"size:100"`
	State        string `json:"state" gorm:"size:100"`
	Country      string `json:"country" gorm:"size:100"`
	ZipCode      string `json:"zipCode" gorm:"size:20"`
}

type Order struct {
	ID            uint64        `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber   string        `json:"orderNumber" gorm:"size:32;uniqueIndex;not null"`
	UserID        *uint64       `json:"userId" gorm:"index"`
	CustomerEmail string        `json:"customerEmail" gorm:"size:255;not null"`
	CustomerPhone string        `json:"customerPhone" gorm:"size:32"`
	Status        OrderStatus   `json:"status" gorm:"type:enum('pending','confirmed','processing','shipped','delivered','cancelled','refunded');default:'pending';index"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"type:enum('pending','paid','failed','refunded');default:'pending';index"`
	PaymentMethod string        `json:"paymentMethod" gorm:"size:50"`
	TransactionID string        `json:"transactionId" gorm:"size:100"`

	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	TaxAmount      decimal.Decimal `json:"taxAmount" gorm:"type:decimal(10,2);not null"`
	ShippingCost   decimal.Decimal `json:"shippingCost" gorm:"type:decimal(10,2);not null"`
	DiscountAmount decimal.Decimal `json:"discountAmount" gorm:"type:decimal(10,2);not null"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`

	ShippingAddress Address `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  Address `json:"billingAddress" gorm:"embedded;embeddedPrefix:billing_"`

	CustomerNotes string `json:"customerNotes" gorm:"type:text"`
	AdminNotes    string `json:"adminNotes" gorm:"type:text"`

	PaidAt      *time.Time `json:"paidAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CancelledAt *time.Time `json:"cancelledAt"`

	Items []OrderItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem snapshots the product name, SKU and unit price at purchase
// time. The snapshot stays fixed even if the catalog entry changes.
type OrderItem struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     uint64          `json:"orderId" gorm:"not null;index"`
	ProductID   uint64          `json:"productId" gorm:"not null;index"`
	ProductName string          `json:"productName" gorm:"size:255;not null"`
	ProductSKU  string          `json:"productSku" gorm:"size:100;not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	Quantity    uint32          `json:"quantity" gorm:"not null"`
	TotalPrice  decimal.Decimal `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// OrderStatusHistory is an append-only audit row. OldStatus is nil for
// the creation event. Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64       `json:"orderId" gorm:"not null;index"`
	OldStatus *OrderStatus `json:"oldStatus" gorm:"size:20"`
	NewStatus OrderStatus  `json:"newStatus" gorm:"size:20;not null"`
	Note      string       `json:"note" gorm:"type:text"`
	CreatedBy *uint64      `json:"createdBy"`
	CreatedAt time.Time    `json:"createdAt" gorm:"autoCreateTime"`
}

// InFulfillment reports whether the status holds reserved inventory.
func (s OrderStatus) InFulfillment() bool {
	return s == StatusConfirmed || s == StatusProcessing
}

// Restocks reports whether the status returns inventory to the shelf.
func (s OrderStatus) Restocks() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// InventoryDirection returns the per-item stock adjustment sign for a
// status change: -1 reserves stock, +1 restocks, 0 leaves it alone.
// Moving between two fulfillment statuses (or two restock statuses) is
// a no-op. Re-entering fulfillment after a cancellation reserves again;
// toggling back and forth therefore adjusts more than once.
func InventoryDirection(old, new OrderStatus) int {
	switch {
	case new.InFulfillment() && !old.InFulfillment():
		return -1
	case new.Restocks() && !old.Restocks():
		return +1
	}
	return 0
}

// StampTransitionTimes sets the derived timestamps that first become
// reachable by this transition. Each timestamp is written at most once
// and never cleared by a later transition away from the status.
func StampTransitionTimes(prevStatus OrderStatus, prevPayment PaymentStatus, o *Order, now time.Time) {
	if prevPayment != PaymentPaid && o.PaymentStatus == PaymentPaid && o.PaidAt == nil {
		o.PaidAt = &now
	}
	if prevStatus != StatusShipped && o.Status == StatusShipped && o.ShippedAt == nil {
		o.ShippedAt = &now
	}
	if prevStatus != StatusDelivered && o.Status == StatusDelivered && o.DeliveredAt == nil {
		o.DeliveredAt = &now
	}
	if prevStatus != StatusCancelled && o.Status == StatusCancelled && o.CancelledAt == nil {
		o.CancelledAt = &now
	}
}
