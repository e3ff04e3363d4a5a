package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestHealthCheck is a unit test for the healthCheck handler function
func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")

	assert.Equal(t, true, response["success"], "Expected success to be true")
	assert.Equal(t, "CrewCall API is running", response["message"], "Expected correct message")
}

// TestHealthCheckResponseFormat tests the exact JSON format
func TestHealthCheckResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response, 2, "Response should have exactly 2 fields")
	assert.Contains(t, response, "success")
	assert.Contains(t, response, "message")
}

// TestSetupRoutes verifies every route group is registered
func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	setupRoutes(router)

	routes := router.Routes()
	registered := make(map[string]bool, len(routes))
	for _, r := range routes {
		registered[r.Method+" "+r.Path] = true
	}

	expected := []string{
		"GET /api/v1/health",
		"POST /api/v1/login",
		"PUT /api/v1/users/password",
		"GET /api/v1/events/assigned",
		"GET /api/v1/events/jobs",
		"POST /api/v1/events/:id/apply",
		"POST /api/v1/events/:id/reject",
		"POST /api/v1/events/:id/approve",
		"POST /api/v1/corrections",
		"PUT /api/v1/corrections/:id/review",
		"GET /api/v1/invoices/user/:id",
		"DELETE /api/v1/invoices/:id/items/:index",
		"POST /api/v1/users/:id/resend-invite",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "Route %s should be registered", route)
	}
}
