package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product quantity is adjusted by the order state engine whenever an
// order enters or leaves fulfillment. TrackQuantity opts a product out
// of that accounting entirely.
type Product struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	SKU           string          `json:"sku" gorm:"size:100;uniqueIndex;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity      int64           `json:"quantity" gorm:"not null;default:0"`
	TrackQuantity bool            `json:"trackQuantity" gorm:"default:true"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}
