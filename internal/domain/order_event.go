package domain

import "time"

type OrderCreatedEvent struct {
	OrderID     uint64      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	UserID      *uint64     `json:"userId"`
	Status      OrderStatus `json:"status"`
	TotalAmount string      `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID       uint64        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	OldStatus     OrderStatus   `json:"oldStatus"`
	NewStatus     OrderStatus   `json:"newStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	ChangedAt     time.Time     `json:"changedAt"`
}
