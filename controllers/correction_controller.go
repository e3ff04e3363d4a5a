package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
	"github.com/crewcall-app/crewcall-api/utils"
)

// CreateCorrectionRequest represents the request body for filing a correction
type CreateCorrectionRequest struct {
	CorrectionName string `json:"correction_name" binding:"required"`
	EventID        uint   `json:"event_id" binding:"required"`
	RequestType    string `json:"request_type" binding:"required"`
	Description    string `json:"description"`
}

// UpdateCorrectionRequest represents the owner's edit body. Status and admin
// comments are not accepted here.
type UpdateCorrectionRequest struct {
	CorrectionName string  `json:"correction_name"`
	RequestType    string  `json:"request_type"`
	Description    *string `json:"description"`
}

// ReviewCorrectionRequest represents the admin review body
type ReviewCorrectionRequest struct {
	Status             string  `json:"status" binding:"required"`
	AdditionalComments *string `json:"additional_comments"`
}

// CreateCorrection handles POST /api/v1/corrections - a freelancer files a
// correction against an event they hold an assignment for. The submitter is
// always the session user; status starts Pending.
func CreateCorrection(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	db := config.GetDB()
	var event models.Event
	if err := db.First(&event, req.EventID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
		return
	}

	var assignment models.EventAssignment
	if err := db.Where("event_id = ? AND contractor_id = ?", event.ID, session.UserID).
		First(&assignment).Error; err != nil {
		errorJSON(c, http.StatusForbidden, "NOT_ASSIGNED", "You can only file corrections against your own assignments")
		return
	}

	correction := models.Correction{
		CorrectionName: req.CorrectionName,
		EventID:        event.ID,
		UserID:         session.UserID,
		RequestType:    req.RequestType,
		Description:    req.Description,
		Status:         models.CorrectionPending,
	}

	if err := db.Create(&correction).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create correction")
		return
	}

	if err := db.Preload("Event").Preload("User").First(&correction, correction.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load correction details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    correction,
	})
}

// ListCorrections handles GET /api/v1/corrections - all corrections with
// event and user preloads and in-memory query (admin only)
func ListCorrections(c *gin.Context) {
	db := config.GetDB()
	var corrections []models.Correction
	if err := db.Preload("Event").Preload("User").Find(&corrections).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch corrections")
		return
	}

	search := c.Query("search")
	status := c.Query("status")

	var eventFilter uint
	if raw := c.Query("event_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "INVALID_EVENT_ID", "event_id must be numeric")
			return
		}
		eventFilter = uint(id)
	}

	filtered := utils.Filter(corrections, func(cor models.Correction) bool {
		if !utils.MatchesSearch(search, cor.CorrectionName, cor.RequestType) {
			return false
		}
		if status != "" && cor.Status != status {
			return false
		}
		if eventFilter != 0 && cor.EventID != eventFilter {
			return false
		}
		return true
	})

	order := utils.NormalizeOrder(c.Query("order"))
	switch c.DefaultQuery("sort", "submitted_at") {
	case "correction_name":
		utils.SortByString(filtered, func(cor models.Correction) string { return cor.CorrectionName }, order)
	case "status":
		utils.SortByString(filtered, func(cor models.Correction) string { return cor.Status }, order)
	default:
		utils.SortByTime(filtered, func(cor models.Correction) time.Time { return cor.CreatedAt }, order)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    filtered,
	})
}

// ListMyCorrections handles GET /api/v1/corrections/mine - the caller's own
// corrections, newest first
func ListMyCorrections(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	corrections := []models.Correction{}
	if err := db.Preload("Event").Where("user_id = ?", session.UserID).
		Order("created_at DESC").Find(&corrections).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch corrections")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    corrections,
	})
}

// GetCorrection handles GET /api/v1/corrections/:id - visible to the owner
// or an admin
func GetCorrection(c *gin.Context) {
	_, correction, ok := fetchCorrectionForCaller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    correction,
	})
}

// UpdateCorrection handles PUT /api/v1/corrections/:id - the owner edits the
// original fields, only while the correction is still Pending
func UpdateCorrection(c *gin.Context) {
	session, correction, ok := fetchCorrectionForCaller(c)
	if !ok {
		return
	}

	if correction.UserID != session.UserID {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "Only the submitter can edit a correction")
		return
	}

	if correction.Status != models.CorrectionPending {
		errorJSON(c, http.StatusConflict, "ALREADY_REVIEWED", "A reviewed correction can no longer be edited")
		return
	}

	var req UpdateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.CorrectionName != "" {
		updates["correction_name"] = req.CorrectionName
	}
	if req.RequestType != "" {
		updates["request_type"] = req.RequestType
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	db := config.GetDB()
	if len(updates) > 0 {
		if err := db.Model(&correction).Updates(updates).Error; err != nil {
			errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update correction")
			return
		}
	}

	if err := db.Preload("Event").Preload("User").First(&correction, correction.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load correction details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    correction,
	})
}

// ReviewCorrection handles PUT /api/v1/corrections/:id/review - an admin
// mutates only the status and additional comments
func ReviewCorrection(c *gin.Context) {
	db := config.GetDB()
	var correction models.Correction
	if err := db.First(&correction, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "CORRECTION_NOT_FOUND", "Correction not found")
		return
	}

	var req ReviewCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if !models.ValidCorrectionStatus(req.Status) {
		errorJSON(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be Pending, Approved, or Declined")
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.AdditionalComments != nil {
		updates["additional_comments"] = *req.AdditionalComments
	}

	if err := db.Model(&correction).Updates(updates).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to review correction")
		return
	}

	if err := db.Preload("Event").Preload("User").First(&correction, correction.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load correction details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    correction,
	})
}

// DeleteCorrection handles DELETE /api/v1/corrections/:id - permitted for the
// owner or an admin
func DeleteCorrection(c *gin.Context) {
	_, correction, ok := fetchCorrectionForCaller(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(&correction).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete correction")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": correction.ID},
	})
}

// fetchCorrectionForCaller loads a correction and enforces owner-or-admin
// visibility. Writes the error response itself when access is denied.
func fetchCorrectionForCaller(c *gin.Context) (*middleware.Session, models.Correction, bool) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, models.Correction{}, false
	}

	db := config.GetDB()
	var correction models.Correction
	if err := db.Preload("Event").Preload("User").First(&correction, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "CORRECTION_NOT_FOUND", "Correction not found")
		return nil, models.Correction{}, false
	}

	if session.Role != models.RoleAdmin && correction.UserID != session.UserID {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this correction")
		return nil, models.Correction{}, false
	}

	return session, correction, true
}
