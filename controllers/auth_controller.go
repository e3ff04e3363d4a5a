package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdatePasswordRequest represents the request body for setting a new password
type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// Login handles POST /api/v1/login - verifies credentials and issues a session token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		errorJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		errorJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to generate session token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":                 token,
			"user_id":               user.ID,
			"role":                  user.Role,
			"must_complete_profile": user.TemporaryPassword,
		},
	})
}

// UpdatePassword handles PUT /api/v1/users/password - sets the caller's own
// password, clearing the temporary flag and activating the account
func UpdatePassword(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, session.UserID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	updates := map[string]interface{}{
		"password":           string(hash),
		"temporary_password": false,
		"status":             models.StatusActive,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
