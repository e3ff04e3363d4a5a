package controllers

import "github.com/gin-gonic/gin"

// errorJSON writes the standard error envelope
func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// validationJSON writes a validation error envelope with binding details
func validationJSON(c *gin.Context, status int, details string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": details,
		},
	})
}
