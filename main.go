package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/controllers"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
)

func main() {
	// Basic logging
	log.Println("Starting CrewCall API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventAssignment{},
		&models.Correction{},
		&models.Invoice{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize Gin router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	setupRoutes(router)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes registers all API v1 routes
func setupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.POST("/login", controllers.Login)
	}

	// Authenticated endpoints
	authed := router.Group("/api/v1")
	authed.Use(middleware.RequireAuth())
	{
		authed.PUT("/users/password", controllers.UpdatePassword)
		authed.GET("/users/profile/:email", controllers.GetProfile)
		authed.PUT("/users/profile/:email", controllers.UpdateProfile)

		authed.GET("/events/assigned", controllers.ListAssignedEvents)
		authed.GET("/events/jobs", controllers.ListCurrentJobs)
		authed.GET("/events/:id", controllers.GetEvent)
		authed.POST("/events/:id/apply", controllers.ApplyToEvent)
		authed.POST("/events/:id/reject", controllers.RejectEvent)

		authed.POST("/corrections", controllers.CreateCorrection)
		authed.GET("/corrections/mine", controllers.ListMyCorrections)
		authed.GET("/corrections/:id", controllers.GetCorrection)
		authed.PUT("/corrections/:id", controllers.UpdateCorrection)
		authed.DELETE("/corrections/:id", controllers.DeleteCorrection)

		authed.GET("/invoices/user/:id", controllers.ListUserInvoices)
		authed.GET("/invoices/:id", controllers.GetInvoice)
		authed.PUT("/invoices/:id", controllers.UpdateInvoice)
		authed.DELETE("/invoices/:id/items/:index", controllers.DeleteInvoiceItem)
	}

	// Admin-only endpoints
	admin := router.Group("/api/v1")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("/users", controllers.ListUsers)
		admin.POST("/users", controllers.CreateUser)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.POST("/users/:id/resend-invite", controllers.ResendInvite)

		admin.GET("/events", controllers.ListEvents)
		admin.POST("/events", controllers.CreateEvent)
		admin.PUT("/events/:id", controllers.UpdateEvent)
		admin.DELETE("/events/:id", controllers.DeleteEvent)
		admin.POST("/events/:id/assign", controllers.AssignContractors)
		admin.POST("/events/:id/approve", controllers.ReviewApplication)

		admin.GET("/corrections", controllers.ListCorrections)
		admin.PUT("/corrections/:id/review", controllers.ReviewCorrection)

		admin.GET("/invoices", controllers.ListInvoices)
		admin.POST("/invoices", controllers.CreateInvoice)
		admin.DELETE("/invoices/:id", controllers.DeleteInvoice)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "CrewCall API is running",
	})
}
