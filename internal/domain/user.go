package domain

import "time"

type User struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email           string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"`
	FirstName       string    `json:"firstName" gorm:"size:100"`
	LastName        string    `json:"lastName" gorm:"size:100"`
	Phone           string    `json:"phone" gorm:"size:32"`
	IsEmailVerified bool      `json:"isEmailVerified" gorm:"default:false"`
	CreatedAt       time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Activity type tags recorded by the account flows.
const (
	ActivityRegistration      = "registration"
	ActivityLogin             = "login"
	ActivityLogout            = "logout"
	ActivityEmailVerification = "email_verification"
	ActivityPasswordChange    = "password_change"
	ActivityPasswordReset     = "password_reset"
)

// UserActivity is an append-only security log entry. Rows are write-only
// from the application's point of view.
type UserActivity struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint64    `json:"userId" gorm:"not null;index"`
	ActivityType string    `json:"activityType" gorm:"size:32;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	IPAddress    string    `json:"ipAddress" gorm:"size:45"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
