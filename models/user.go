package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User account statuses
const (
	StatusActive  = "active"
	StatusPending = "pending"
)

// User represents an administrator or a freelance contractor
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"not null" json:"name"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	Password          string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role              string         `gorm:"not null;default:'user'" json:"role"`     // "admin" or "user"
	Status            string         `gorm:"not null;default:'pending'" json:"status"` // "active" or "pending"
	TemporaryPassword bool           `gorm:"not null;default:false" json:"temporary_password"`
	Address           string         `json:"address"`
	Phone             string         `json:"phone"`
	DOB               string         `json:"dob"`
	ShirtSize         string         `json:"shirt_size"`
	FirstAidCert      string         `json:"first_aid_cert"`
	Allergies         []string       `gorm:"serializer:json" json:"allergies"`
	HourlyRate        float64        `json:"hourly_rate"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
