package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
	"github.com/crewcall-app/crewcall-api/services"
	"github.com/crewcall-app/crewcall-api/utils"
)

var mailer services.Mailer = services.NewLogMailer()

// SetMailer replaces the mailer implementation (used by tests)
func SetMailer(m services.Mailer) {
	mailer = m
}

// CreateUserRequest represents the request body for provisioning a user
type CreateUserRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required,email"`
	Role       string   `json:"role" binding:"omitempty,oneof=admin user"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	DOB        string   `json:"dob"`
	ShirtSize  string   `json:"shirt_size"`
	Allergies  []string `json:"allergies"`
	HourlyRate float64  `json:"hourly_rate" binding:"omitempty,gte=0"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name         string   `json:"name" binding:"omitempty"`
	Email        string   `json:"email" binding:"omitempty,email"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	DOB          string   `json:"dob"`
	ShirtSize    string   `json:"shirt_size"`
	FirstAidCert string   `json:"first_aid_cert"`
	Allergies    []string `json:"allergies"`
	HourlyRate   *float64 `json:"hourly_rate" binding:"omitempty"`
}

// UpdateProfileRequest represents the self-service profile update body.
// Role, email, and hourly rate stay admin-only and are not accepted here.
type UpdateProfileRequest struct {
	Name         string   `json:"name" binding:"omitempty"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	DOB          string   `json:"dob"`
	ShirtSize    string   `json:"shirt_size"`
	FirstAidCert string   `json:"first_aid_cert"`
	Allergies    []string `json:"allergies"`
}

// ListUsers handles GET /api/v1/users - lists users with in-memory
// filtering and sorting (admin only)
func ListUsers(c *gin.Context) {
	db := config.GetDB()
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch users")
		return
	}

	search := c.Query("search")
	role := c.Query("role")
	status := c.Query("status")

	filtered := utils.Filter(users, func(u models.User) bool {
		if !utils.MatchesSearch(search, u.Name, u.Email) {
			return false
		}
		if role != "" && u.Role != role {
			return false
		}
		if status != "" && u.Status != status {
			return false
		}
		return true
	})

	order := utils.NormalizeOrder(c.Query("order"))
	switch c.DefaultQuery("sort", "name") {
	case "email":
		utils.SortByString(filtered, func(u models.User) string { return u.Email }, order)
	case "created_at":
		utils.SortByTime(filtered, func(u models.User) time.Time { return u.CreatedAt }, order)
	case "hourly_rate":
		utils.SortByFloat(filtered, func(u models.User) float64 { return u.HourlyRate }, order)
	default:
		utils.SortByString(filtered, func(u models.User) string { return u.Name }, order)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    filtered,
	})
}

// CreateUser handles POST /api/v1/users - provisions a freelancer with a
// generated temporary password and queues an invite notification (admin only)
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	tempPassword, err := generateTemporaryPassword()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "PASSWORD_ERROR", "Failed to generate temporary password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Name:              req.Name,
		Email:             req.Email,
		Password:          string(hash),
		Role:              role,
		Status:            models.StatusPending,
		TemporaryPassword: true,
		Address:           req.Address,
		Phone:             req.Phone,
		DOB:               req.DOB,
		ShirtSize:         req.ShirtSize,
		Allergies:         req.Allergies,
		HourlyRate:        req.HourlyRate,
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			errorJSON(c, http.StatusConflict, "USER_EXISTS", "A user with this email already exists")
			return
		}
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	if err := mailer.SendInvite(user.Email, user.Name, tempPassword); err != nil {
		// The account exists either way; the invite can be resent
		errorJSON(c, http.StatusInternalServerError, "MAILER_ERROR", "User created but invite notification failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateUser handles PUT /api/v1/users/:id - partially updates a user (admin only)
func UpdateUser(c *gin.Context) {
	db := config.GetDB()
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.DOB != "" {
		updates["dob"] = req.DOB
	}
	if req.ShirtSize != "" {
		updates["shirt_size"] = req.ShirtSize
	}
	if req.FirstAidCert != "" {
		updates["first_aid_cert"] = req.FirstAidCert
	}
	if req.HourlyRate != nil {
		updates["hourly_rate"] = *req.HourlyRate
	}

	if len(updates) == 0 && req.Allergies == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		if isDuplicateError(err) {
			errorJSON(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user")
		return
	}

	// Allergies live in a serialized column, so the map update path above
	// cannot express them
	if req.Allergies != nil {
		user.Allergies = req.Allergies
		if err := db.Save(&user).Error; err != nil {
			errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user")
			return
		}
	}

	if err := db.First(&user, user.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch updated user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// DeleteUser handles DELETE /api/v1/users/:id - soft-deletes a user (admin only)
func DeleteUser(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	if user.ID == session.UserID {
		errorJSON(c, http.StatusConflict, "SELF_DELETE", "You cannot delete your own account")
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": user.ID},
	})
}

// ResendInvite handles POST /api/v1/users/:id/resend-invite - regenerates the
// temporary password for a pending user and re-queues the notification (admin only)
func ResendInvite(c *gin.Context) {
	db := config.GetDB()
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	if user.Status != models.StatusPending {
		errorJSON(c, http.StatusConflict, "USER_ACTIVE", "User has already completed their profile")
		return
	}

	tempPassword, err := generateTemporaryPassword()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "PASSWORD_ERROR", "Failed to generate temporary password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password")
		return
	}

	updates := map[string]interface{}{
		"password":           string(hash),
		"temporary_password": true,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reset temporary password")
		return
	}

	if err := mailer.SendInvite(user.Email, user.Name, tempPassword); err != nil {
		errorJSON(c, http.StatusInternalServerError, "MAILER_ERROR", "Failed to send invite notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"resent": user.ID},
	})
}

// GetProfile handles GET /api/v1/users/profile/:email - returns a profile,
// visible to its owner or an admin
func GetProfile(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	email := c.Param("email")
	if session.Role != models.RoleAdmin && !strings.EqualFold(session.Email, email) {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "You can only view your own profile")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateProfile handles PUT /api/v1/users/profile/:email - updates a profile,
// permitted for its owner or an admin
func UpdateProfile(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	email := c.Param("email")
	if session.Role != models.RoleAdmin && !strings.EqualFold(session.Email, email) {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "You can only update your own profile")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.DOB != "" {
		updates["dob"] = req.DOB
	}
	if req.ShirtSize != "" {
		updates["shirt_size"] = req.ShirtSize
	}
	if req.FirstAidCert != "" {
		updates["first_aid_cert"] = req.FirstAidCert
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile")
			return
		}
	}

	if req.Allergies != nil {
		user.Allergies = req.Allergies
		if err := db.Save(&user).Error; err != nil {
			errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile")
			return
		}
	}

	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch updated profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// generateTemporaryPassword returns a random 16-hex-character password
func generateTemporaryPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// isDuplicateError detects unique-constraint violations on both PostgreSQL
// and SQLite
func isDuplicateError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
