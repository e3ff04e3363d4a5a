package models

import (
	"time"

	"gorm.io/gorm"
)

// Correction review statuses
const (
	CorrectionPending  = "Pending"
	CorrectionApproved = "Approved"
	CorrectionDeclined = "Declined"
)

// Correction represents a freelancer-submitted amendment request against an
// event assignment, reviewed by an admin
type Correction struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CorrectionName     string         `gorm:"not null" json:"correction_name"`
	EventID            uint           `gorm:"not null;index" json:"event_id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	RequestType        string         `gorm:"not null" json:"request_type"`
	Description        string         `json:"description"`
	Status             string         `gorm:"not null;default:'Pending'" json:"status"` // Pending, Approved, Declined
	AdditionalComments string         `json:"additional_comments"`
	Event              Event          `gorm:"foreignKey:EventID" json:"event"`
	User               User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt          time.Time      `json:"submitted_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Correction model
func (Correction) TableName() string {
	return "corrections"
}

// ValidCorrectionStatus reports whether s is one of the review statuses
func ValidCorrectionStatus(s string) bool {
	return s == CorrectionPending || s == CorrectionApproved || s == CorrectionDeclined
}
