package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/controllers"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
	"github.com/crewcall-app/crewcall-api/services"
	"github.com/crewcall-app/crewcall-api/tests/testutil"
)

// StaffingAcceptanceTestSuite drives the full API over HTTP with real token
// authentication, from login through the staffing lifecycle
type StaffingAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
	mailer *services.RecordingMailer
}

// SetupSuite runs once before all tests
func (suite *StaffingAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("DATABASE_URL", "postgresql://localhost/crewcall_test")
	os.Setenv("JWT_SECRET", "acceptance-test-secret")
	os.Setenv("PORT", "8080")

	_, err := config.Load()
	suite.NoError(err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventAssignment{},
		&models.Correction{},
		&models.Invoice{},
	)
	suite.NoError(err)
	config.SetDB(db)

	suite.mailer = &services.RecordingMailer{}
	controllers.SetMailer(suite.mailer)

	suite.server = httptest.NewServer(suite.createRouter())
}

// TearDownSuite runs once after all tests
func (suite *StaffingAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *StaffingAcceptanceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM invoices")
	suite.db.Exec("DELETE FROM corrections")
	suite.db.Exec("DELETE FROM event_assignments")
	suite.db.Exec("DELETE FROM events")
	suite.db.Exec("DELETE FROM users")
	suite.mailer.Invites = nil
}

// createRouter builds the application router with the real auth middleware
func (suite *StaffingAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/login", controllers.Login)
	}

	authed := router.Group("/api/v1")
	authed.Use(middleware.RequireAuth())
	{
		authed.PUT("/users/password", controllers.UpdatePassword)
		authed.GET("/events/assigned", controllers.ListAssignedEvents)
		authed.GET("/events/jobs", controllers.ListCurrentJobs)
		authed.POST("/events/:id/apply", controllers.ApplyToEvent)
		authed.POST("/corrections", controllers.CreateCorrection)
		authed.GET("/invoices/user/:id", controllers.ListUserInvoices)
	}

	admin := router.Group("/api/v1")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("/users", controllers.ListUsers)
		admin.POST("/users", controllers.CreateUser)
		admin.POST("/events", controllers.CreateEvent)
		admin.POST("/events/:id/approve", controllers.ReviewApplication)
		admin.POST("/invoices", controllers.CreateInvoice)
	}

	return router
}

// makeRequest performs an HTTP request against the test server
func (suite *StaffingAcceptanceTestSuite) makeRequest(method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyJSON, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyJSON)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequest(method, suite.server.URL+path, bodyReader)
	suite.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.NoError(err)

	var responseData map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&responseData)
	suite.NoError(err)
	resp.Body.Close()

	return resp, responseData
}

// login authenticates and returns the session token
func (suite *StaffingAcceptanceTestSuite) login(email, password string) string {
	resp, response := suite.makeRequest(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	return response["data"].(map[string]interface{})["token"].(string)
}

// createAdmin seeds an active admin account directly
func (suite *StaffingAcceptanceTestSuite) createAdmin() models.User {
	admin := models.User{Name: "Ops Admin", Email: "ops@crewcall.test", Role: models.RoleAdmin, Status: models.StatusActive}
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	admin.Password = string(hash)
	suite.Require().NoError(suite.db.Create(&admin).Error)
	return admin
}

// TestOnboardingScenario provisions a freelancer, who logs in with the
// mailed temporary password and activates the account
func (suite *StaffingAcceptanceTestSuite) TestOnboardingScenario() {
	t := suite.T()

	suite.createAdmin()
	adminToken := suite.login("ops@crewcall.test", "admin-password")

	// Admin provisions the freelancer
	resp, _ := suite.makeRequest(http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":  "New Stagehand",
		"email": "newhand@crewcall.test",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	suite.Require().Len(suite.mailer.Invites, 1)
	tempPassword := suite.mailer.Invites[0].TemporaryPassword

	// Freelancer signs in with the temporary password
	resp, response := suite.makeRequest(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "newhand@crewcall.test",
		"password": tempPassword,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loginData := response["data"].(map[string]interface{})
	assert.Equal(t, true, loginData["must_complete_profile"])
	crewToken := loginData["token"].(string)

	// Setting a real password activates the account
	resp, _ = suite.makeRequest(http.MethodPut, "/api/v1/users/password", crewToken, map[string]string{
		"password": "chosen-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, response = suite.makeRequest(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "newhand@crewcall.test",
		"password": "chosen-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, response["data"].(map[string]interface{})["must_complete_profile"])
}

// TestStaffingScenario runs invite, apply, approve, and invoice over HTTP
func (suite *StaffingAcceptanceTestSuite) TestStaffingScenario() {
	t := suite.T()

	suite.createAdmin()
	adminToken := suite.login("ops@crewcall.test", "admin-password")

	crew := models.User{Name: "Stagehand", Email: "stagehand@crewcall.test", Role: models.RoleUser, Status: models.StatusActive}
	hash, _ := bcrypt.GenerateFromPassword([]byte("crew-password"), bcrypt.MinCost)
	crew.Password = string(hash)
	suite.Require().NoError(suite.db.Create(&crew).Error)
	crewToken := suite.login("stagehand@crewcall.test", "crew-password")

	// Admin creates an event with the freelancer invited
	loadIn := time.Now().Add(96 * time.Hour).UTC().Truncate(time.Second)
	resp, response := suite.makeRequest(http.MethodPost, "/api/v1/events", adminToken, map[string]interface{}{
		"event_name":           "Summer Festival",
		"event_location":       "Riverside Park",
		"event_load_in":        loadIn.Format(time.RFC3339),
		"event_load_out":       loadIn.Add(16 * time.Hour).Format(time.RFC3339),
		"event_load_in_hours":  8,
		"event_load_out_hours": 6,
		"contractor_ids":       []uint{crew.ID},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	eventID := int(response["data"].(map[string]interface{})["id"].(float64))

	// Freelancer sees the invite and applies
	resp, response = suite.makeRequest(http.MethodGet, "/api/v1/events/assigned", crewToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, response["data"], 1)

	resp, _ = suite.makeRequest(http.MethodPost, fmt.Sprintf("/api/v1/events/%d/apply", eventID), crewToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Admin approves, freelancer's job list shows the booking
	resp, _ = suite.makeRequest(http.MethodPost, fmt.Sprintf("/api/v1/events/%d/approve", eventID), adminToken, map[string]interface{}{
		"contractor_id": crew.ID,
		"approved":      true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, response = suite.makeRequest(http.MethodGet, "/api/v1/events/jobs", crewToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	jobs := response["data"].([]interface{})
	suite.Require().Len(jobs, 1)
	assert.Equal(t, models.AssignmentApproved, jobs[0].(map[string]interface{})["status"])

	// Admin raises the invoice; the freelancer can read it
	resp, response = suite.makeRequest(http.MethodPost, "/api/v1/invoices", adminToken, map[string]interface{}{
		"show":           "Summer Festival",
		"venue":          "Riverside Park",
		"invoice_number": "INV-0099",
		"user_id":        crew.ID,
		"tax_percentage": 5,
		"items": []map[string]interface{}{
			{"date": "07/04/2025", "actual_hours": 8, "billable_hours": 8, "rate": 25},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 200.0, response["data"].(map[string]interface{})["subtotal"])

	resp, response = suite.makeRequest(http.MethodGet, fmt.Sprintf("/api/v1/invoices/user/%d", crew.ID), crewToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, response["data"], 1)
}

// TestAdminRoutesRejectFreelancers confirms the role gate over real tokens
func (suite *StaffingAcceptanceTestSuite) TestAdminRoutesRejectFreelancers() {
	t := suite.T()

	crew := models.User{Name: "Stagehand", Email: "stagehand@crewcall.test", Role: models.RoleUser, Status: models.StatusActive}
	hash, _ := bcrypt.GenerateFromPassword([]byte("crew-password"), bcrypt.MinCost)
	crew.Password = string(hash)
	suite.Require().NoError(suite.db.Create(&crew).Error)
	crewToken := suite.login("stagehand@crewcall.test", "crew-password")

	resp, response := suite.makeRequest(http.MethodGet, "/api/v1/users", crewToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", response["error"].(map[string]interface{})["code"])
}

// TestRequestsWithoutTokensAreRejected confirms unauthenticated access fails
func (suite *StaffingAcceptanceTestSuite) TestRequestsWithoutTokensAreRejected() {
	t := suite.T()

	resp, _ := suite.makeRequest(http.MethodGet, "/api/v1/events/jobs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = suite.makeRequest(http.MethodGet, "/api/v1/events/jobs", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestStaffingAcceptanceTestSuite runs the acceptance test suite
func TestStaffingAcceptanceTestSuite(t *testing.T) {
	testutil.RequireTestEnvironmentOrSkip(t)
	suite.Run(t, new(StaffingAcceptanceTestSuite))
}
