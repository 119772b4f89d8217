package domain

import "time"

// UserAddress is a live address-book entry owned by a user. Orders never
// reference it; checkout copies the fields onto the order as a snapshot,
// so later edits here leave past orders untouched.
type UserAddress struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"userId" gorm:"not null;index"`
	Address   Address   `json:"address" gorm:"embedded"`
	IsDefault bool      `json:"isDefault" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
