package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
	"github.com/crewcall-app/crewcall-api/utils"
)

// deniedJobVisibility is how long a denied job stays visible to the contractor
const deniedJobVisibility = 24 * time.Hour

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	EventName         string    `json:"event_name" binding:"required"`
	EventLocation     string    `json:"event_location" binding:"required"`
	EventLoadIn       time.Time `json:"event_load_in" binding:"required"`
	EventLoadOut      time.Time `json:"event_load_out" binding:"required"`
	EventLoadInHours  float64   `json:"event_load_in_hours" binding:"required,gt=0"`
	EventLoadOutHours float64   `json:"event_load_out_hours" binding:"required,gt=0"`
	EventDescription  string    `json:"event_description"`
	ContractorIDs     []uint    `json:"contractor_ids"`
}

// UpdateEventRequest represents the request body for updating an event
type UpdateEventRequest struct {
	EventName         string     `json:"event_name"`
	EventLocation     string     `json:"event_location"`
	EventLoadIn       *time.Time `json:"event_load_in"`
	EventLoadOut      *time.Time `json:"event_load_out"`
	EventLoadInHours  *float64   `json:"event_load_in_hours" binding:"omitempty,gt=0"`
	EventLoadOutHours *float64   `json:"event_load_out_hours" binding:"omitempty,gt=0"`
	EventDescription  *string    `json:"event_description"`
}

// AssignContractorsRequest represents the request body for inviting contractors
type AssignContractorsRequest struct {
	ContractorIDs []uint `json:"contractor_ids" binding:"required,min=1"`
}

// ReviewApplicationRequest represents the admin approval decision body
type ReviewApplicationRequest struct {
	ContractorID uint  `json:"contractor_id" binding:"required"`
	Approved     *bool `json:"approved" binding:"required"`
}

// ListEvents handles GET /api/v1/events - lists events with in-memory
// filtering and sorting (admin only)
func ListEvents(c *gin.Context) {
	db := config.GetDB()
	var events []models.Event
	if err := db.Preload("Assignments.Contractor").Find(&events).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch events")
		return
	}

	search := c.Query("search")
	start, err := utils.ParseDateBound(c.Query("start_date"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_DATE", "start_date must be RFC3339 or YYYY-MM-DD")
		return
	}
	end, err := utils.ParseDateBound(c.Query("end_date"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_DATE", "end_date must be RFC3339 or YYYY-MM-DD")
		return
	}

	var contractorFilter []uint
	if raw := c.Query("contractor"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "INVALID_CONTRACTOR", "contractor must be a user id")
			return
		}
		contractorFilter = append(contractorFilter, uint(id))
	}

	filtered := utils.Filter(events, func(e models.Event) bool {
		if !utils.MatchesSearch(search, e.EventName, e.EventLocation) {
			return false
		}
		if !utils.InDateRange(e.EventLoadIn, start, end) {
			return false
		}
		if len(contractorFilter) > 0 {
			matched := false
			for _, a := range e.Assignments {
				if utils.Contains(contractorFilter, a.ContractorID) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	})

	order := utils.NormalizeOrder(c.Query("order"))
	switch c.DefaultQuery("sort", "event_load_in") {
	case "event_name":
		utils.SortByString(filtered, func(e models.Event) string { return e.EventName }, order)
	case "created_at":
		utils.SortByTime(filtered, func(e models.Event) time.Time { return e.CreatedAt }, order)
	default:
		utils.SortByTime(filtered, func(e models.Event) time.Time { return e.EventLoadIn }, order)
	}

	responses := make([]models.EventResponse, 0, len(filtered))
	for _, e := range filtered {
		responses = append(responses, models.BuildEventResponse(e, e.Assignments))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
	})
}

// CreateEvent handles POST /api/v1/events - creates an event, optionally
// inviting an initial set of contractors (admin only)
func CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.EventLoadOut.Before(req.EventLoadIn) {
		errorJSON(c, http.StatusBadRequest, "INVALID_WINDOW", "Load-out must not precede load-in")
		return
	}

	event := models.Event{
		EventName:         req.EventName,
		EventLocation:     req.EventLocation,
		EventLoadIn:       req.EventLoadIn,
		EventLoadOut:      req.EventLoadOut,
		EventLoadInHours:  req.EventLoadInHours,
		EventLoadOutHours: req.EventLoadOutHours,
		EventDescription:  req.EventDescription,
	}

	db := config.GetDB()
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return inviteContractors(tx, event.ID, req.ContractorIDs)
	}); err != nil {
		if errors.Is(err, errNotAContractor) {
			errorJSON(c, http.StatusBadRequest, "INVALID_CONTRACTOR", "Only freelancer accounts can be invited")
			return
		}
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create event")
		return
	}

	resp, err := loadEventResponse(db, event.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    resp,
	})
}

// GetEvent handles GET /api/v1/events/:id - returns one event with its
// contractor buckets
func GetEvent(c *gin.Context) {
	db := config.GetDB()
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	resp, err := loadEventResponse(db, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
			return
		}
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// UpdateEvent handles PUT /api/v1/events/:id - partially updates an event (admin only)
func UpdateEvent(c *gin.Context) {
	db := config.GetDB()
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.EventName != "" {
		updates["event_name"] = req.EventName
	}
	if req.EventLocation != "" {
		updates["event_location"] = req.EventLocation
	}

	// Validate the resulting window, whichever side moved
	loadIn := event.EventLoadIn
	loadOut := event.EventLoadOut
	if req.EventLoadIn != nil {
		loadIn = *req.EventLoadIn
		updates["event_load_in"] = loadIn
	}
	if req.EventLoadOut != nil {
		loadOut = *req.EventLoadOut
		updates["event_load_out"] = loadOut
	}
	if loadOut.Before(loadIn) {
		errorJSON(c, http.StatusBadRequest, "INVALID_WINDOW", "Load-out must not precede load-in")
		return
	}

	if req.EventLoadInHours != nil {
		updates["event_load_in_hours"] = *req.EventLoadInHours
	}
	if req.EventLoadOutHours != nil {
		updates["event_load_out_hours"] = *req.EventLoadOutHours
	}
	if req.EventDescription != nil {
		updates["event_description"] = *req.EventDescription
	}

	if len(updates) > 0 {
		if err := db.Model(&event).Updates(updates).Error; err != nil {
			errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update event")
			return
		}
	}

	resp, err := loadEventResponse(db, event.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// DeleteEvent handles DELETE /api/v1/events/:id - deletes an event and its
// assignment rows in one transaction (admin only)
func DeleteEvent(c *gin.Context) {
	db := config.GetDB()
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
		return
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	}); err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": event.ID},
	})
}

// AssignContractors handles POST /api/v1/events/:id/assign - invites
// contractors to an event, idempotently per contractor (admin only)
func AssignContractors(c *gin.Context) {
	db := config.GetDB()
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
		return
	}

	var req AssignContractorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return inviteContractors(tx, event.ID, req.ContractorIDs)
	}); err != nil {
		if errors.Is(err, errNotAContractor) {
			errorJSON(c, http.StatusBadRequest, "INVALID_CONTRACTOR", "Only freelancer accounts can be invited")
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "Invited contractor not found")
			return
		}
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to invite contractors")
		return
	}

	resp, err := loadEventResponse(db, event.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// ApplyToEvent handles POST /api/v1/events/:id/apply - an invited contractor
// accepts the job. Transition: invited -> applied.
func ApplyToEvent(c *gin.Context) {
	transitionAssignment(c, models.AssignmentInvited, models.AssignmentApplied)
}

// RejectEvent handles POST /api/v1/events/:id/reject - an invited contractor
// declines the job. Transition: invited -> rejected (terminal).
func RejectEvent(c *gin.Context) {
	transitionAssignment(c, models.AssignmentInvited, models.AssignmentRejected)
}

// transitionAssignment applies a contractor-driven status change. The guard
// requires an existing row in the `from` status, so a contractor who already
// responded (or was never invited) gets a conflict, and the updated event is
// returned so clients render from the response rather than patching
// optimistically.
func transitionAssignment(c *gin.Context, from, to string) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
		return
	}

	var assignment models.EventAssignment
	if err := db.Where("event_id = ? AND contractor_id = ?", event.ID, session.UserID).
		First(&assignment).Error; err != nil {
		errorJSON(c, http.StatusForbidden, "NOT_INVITED", "You are not invited to this event")
		return
	}

	if assignment.Status != from {
		errorJSON(c, http.StatusConflict, "ALREADY_RESPONDED", "You have already responded to this event")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       to,
		"responded_at": &now,
	}
	if err := db.Model(&assignment).Updates(updates).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update assignment")
		return
	}

	resp, err := loadEventResponse(db, event.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// ReviewApplication handles POST /api/v1/events/:id/approve - an admin
// approves or denies an applied contractor. Transition: applied -> approved
// or denied (terminal).
func ReviewApplication(c *gin.Context) {
	db := config.GetDB()
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
		return
	}

	var req ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	var assignment models.EventAssignment
	if err := db.Where("event_id = ? AND contractor_id = ?", event.ID, req.ContractorID).
		First(&assignment).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "ASSIGNMENT_NOT_FOUND", "Contractor is not assigned to this event")
		return
	}

	if assignment.Status != models.AssignmentApplied {
		errorJSON(c, http.StatusConflict, "NOT_APPLIED", "Contractor has not applied to this event")
		return
	}

	status := models.AssignmentDenied
	if *req.Approved {
		status = models.AssignmentApproved
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"decided_at": &now,
	}
	if err := db.Model(&assignment).Updates(updates).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record decision")
		return
	}

	resp, err := loadEventResponse(db, event.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// ListAssignedEvents handles GET /api/v1/events/assigned - the caller's
// actionable invites: only rows still in the invited status
func ListAssignedEvents(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var assignments []models.EventAssignment
	if err := db.Where("contractor_id = ? AND status = ?", session.UserID, models.AssignmentInvited).
		Find(&assignments).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch assignments")
		return
	}

	events := eventsForAssignments(db, assignments)
	if events == nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    events,
	})
}

// CurrentJob is one row of a contractor's current-jobs view
type CurrentJob struct {
	Event     models.Event `json:"event"`
	Status    string       `json:"status"`
	DecidedAt *time.Time   `json:"decided_at"`
}

// ListCurrentJobs handles GET /api/v1/events/jobs - the caller's current
// jobs under the visibility rule: approved always; applied only before
// load-in; denied only within 24 hours of the decision. A read-side filter,
// never a state transition.
func ListCurrentJobs(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var assignments []models.EventAssignment
	if err := db.Where("contractor_id = ?", session.UserID).Find(&assignments).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch assignments")
		return
	}

	now := time.Now()
	jobs := []CurrentJob{}
	for _, a := range assignments {
		var event models.Event
		if err := db.First(&event, a.EventID).Error; err != nil {
			continue
		}

		visible := false
		switch a.Status {
		case models.AssignmentApproved:
			visible = true
		case models.AssignmentApplied:
			visible = now.Before(event.EventLoadIn)
		case models.AssignmentDenied:
			visible = a.DecidedAt != nil && now.Sub(*a.DecidedAt) < deniedJobVisibility
		}
		if visible {
			jobs = append(jobs, CurrentJob{Event: event, Status: a.Status, DecidedAt: a.DecidedAt})
		}
	}

	utils.SortByTime(jobs, func(j CurrentJob) time.Time { return j.Event.EventLoadIn }, utils.OrderAsc)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    jobs,
	})
}

// errNotAContractor rejects invites aimed at admin accounts
var errNotAContractor = errors.New("invited user is not a contractor")

// inviteContractors creates invited assignment rows, skipping contractors who
// already hold a row for the event
func inviteContractors(tx *gorm.DB, eventID uint, contractorIDs []uint) error {
	for _, contractorID := range contractorIDs {
		var contractor models.User
		if err := tx.First(&contractor, contractorID).Error; err != nil {
			return err
		}
		if contractor.Role != models.RoleUser {
			return errNotAContractor
		}

		var existing models.EventAssignment
		err := tx.Where("event_id = ? AND contractor_id = ?", eventID, contractorID).
			First(&existing).Error
		if err == nil {
			continue // already invited or responded
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment := models.EventAssignment{
			EventID:      eventID,
			ContractorID: contractorID,
			Status:       models.AssignmentInvited,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
	}
	return nil
}

// loadEventResponse fetches an event and materializes its contractor buckets
func loadEventResponse(db *gorm.DB, eventID uint) (models.EventResponse, error) {
	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		return models.EventResponse{}, err
	}

	var assignments []models.EventAssignment
	if err := db.Preload("Contractor").Where("event_id = ?", eventID).Find(&assignments).Error; err != nil {
		return models.EventResponse{}, err
	}

	return models.BuildEventResponse(event, assignments), nil
}

// eventsForAssignments loads the events behind a set of assignment rows,
// ordered by load-in. Returns nil on database failure.
func eventsForAssignments(db *gorm.DB, assignments []models.EventAssignment) []models.Event {
	events := []models.Event{}
	if len(assignments) == 0 {
		return events
	}

	ids := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.EventID)
	}

	if err := db.Where("id IN ?", ids).Order("event_load_in asc").Find(&events).Error; err != nil {
		return nil
	}
	return events
}

// parseEventID reads and validates the :id path parameter
func parseEventID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_EVENT_ID", "Event ID must be numeric")
		return 0, false
	}
	return uint(id), true
}
