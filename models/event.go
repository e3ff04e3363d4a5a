package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment statuses. A contractor's row holds exactly one of these at a
// time, so an id can never sit in both the accepted and rejected buckets.
const (
	AssignmentInvited  = "invited"
	AssignmentApplied  = "applied"
	AssignmentRejected = "rejected"
	AssignmentApproved = "approved"
	AssignmentDenied   = "denied"
)

// Event represents a staffing engagement with load-in/load-out windows
type Event struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	EventName         string            `gorm:"not null" json:"event_name"`
	EventLocation     string            `gorm:"not null" json:"event_location"`
	EventLoadIn       time.Time         `gorm:"not null" json:"event_load_in"`
	EventLoadOut      time.Time         `gorm:"not null" json:"event_load_out"`
	EventLoadInHours  float64           `gorm:"not null" json:"event_load_in_hours"`
	EventLoadOutHours float64           `gorm:"not null" json:"event_load_out_hours"`
	EventDescription  string            `json:"event_description"`
	Assignments       []EventAssignment `gorm:"foreignKey:EventID" json:"-"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Event model
func (Event) TableName() string {
	return "events"
}

// EventAssignment links one contractor to one event and carries the
// assignment status. The unique index keeps a single row per pair.
type EventAssignment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EventID      uint       `gorm:"not null;index;uniqueIndex:idx_event_contractor" json:"event_id"`
	ContractorID uint       `gorm:"not null;index;uniqueIndex:idx_event_contractor" json:"contractor_id"`
	Status       string     `gorm:"not null;default:'invited'" json:"status"`
	RespondedAt  *time.Time `json:"responded_at"` // set when the contractor applies or rejects
	DecidedAt    *time.Time `json:"decided_at"`   // set when an admin approves or denies
	Contractor   User       `gorm:"foreignKey:ContractorID" json:"contractor"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the EventAssignment model
func (EventAssignment) TableName() string {
	return "event_assignments"
}

// EventResponse is the wire shape of an event with its contractor buckets
// materialized from the assignment rows.
type EventResponse struct {
	Event
	AssignedContractors []User `json:"assigned_contractors"` // invited, not yet terminal
	AcceptedContractors []uint `json:"accepted_contractors"` // applied or approved
	RejectedContractors []uint `json:"rejected_contractors"`
	ApprovedContractors []User `json:"approved_contractors"`
}

// BuildEventResponse materializes the contractor buckets from preloaded
// assignment rows. Approved contractors are excluded from the invited list.
func BuildEventResponse(event Event, assignments []EventAssignment) EventResponse {
	resp := EventResponse{
		Event:               event,
		AssignedContractors: []User{},
		AcceptedContractors: []uint{},
		RejectedContractors: []uint{},
		ApprovedContractors: []User{},
	}

	for _, a := range assignments {
		switch a.Status {
		case AssignmentInvited:
			resp.AssignedContractors = append(resp.AssignedContractors, a.Contractor)
		case AssignmentApplied:
			resp.AssignedContractors = append(resp.AssignedContractors, a.Contractor)
			resp.AcceptedContractors = append(resp.AcceptedContractors, a.ContractorID)
		case AssignmentRejected:
			resp.RejectedContractors = append(resp.RejectedContractors, a.ContractorID)
		case AssignmentApproved:
			resp.AcceptedContractors = append(resp.AcceptedContractors, a.ContractorID)
			resp.ApprovedContractors = append(resp.ApprovedContractors, a.Contractor)
		}
	}

	return resp
}
