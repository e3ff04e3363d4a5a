package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crewcall-app/crewcall-api/config"
	"github.com/crewcall-app/crewcall-api/middleware"
	"github.com/crewcall-app/crewcall-api/models"
	"github.com/crewcall-app/crewcall-api/utils"
)

// itemDatePattern validates invoice row dates as MM/DD/YYYY
var itemDatePattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|[12][0-9]|3[01])/\d{4}$`)

// CreateInvoiceRequest represents the request body for creating an invoice
type CreateInvoiceRequest struct {
	Show          string               `json:"show" binding:"required"`
	Venue         string               `json:"venue"`
	InvoiceNumber string               `json:"invoice_number" binding:"required"`
	LPONumber     string               `json:"lpo_number"`
	UserID        uint                 `json:"user_id" binding:"required"`
	Items         []models.InvoiceItem `json:"items"`
	TaxPercentage float64              `json:"tax_percentage" binding:"omitempty,gte=0"`
}

// UpdateInvoiceRequest replaces the whole items array - the only update
// protocol the invoice editor exposes
type UpdateInvoiceRequest struct {
	Items []models.InvoiceItem `json:"items" binding:"required"`
}

// CreateInvoice handles POST /api/v1/invoices - creates an invoice for a
// user with validated, recomputed rows (admin only)
func CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateItems(req.Items); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ITEM", err.Error())
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, req.UserID).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "Invoice user not found")
		return
	}

	invoice := models.Invoice{
		Show:          req.Show,
		Venue:         req.Venue,
		InvoiceNumber: req.InvoiceNumber,
		LPONumber:     req.LPONumber,
		UserID:        user.ID,
		Items:         req.Items,
		TaxPercentage: req.TaxPercentage,
	}
	if invoice.Items == nil {
		invoice.Items = []models.InvoiceItem{}
	}
	invoice.RecalculateItems()

	if err := db.Create(&invoice).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create invoice")
		return
	}

	if err := db.Preload("User").First(&invoice, invoice.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load invoice details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    models.BuildInvoiceResponse(invoice),
	})
}

// ListInvoices handles GET /api/v1/invoices - all invoices with in-memory
// query (admin only)
func ListInvoices(c *gin.Context) {
	db := config.GetDB()
	var invoices []models.Invoice
	if err := db.Preload("User").Find(&invoices).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch invoices")
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

	filtered := utils.Filter(invoices, func(inv models.Invoice) bool {
		if !utils.MatchesSearch(search, inv.Show, inv.Venue, inv.InvoiceNumber) {
			return false
		}
		return utils.InDateRange(inv.CreatedAt, start, end)
	})

	order := utils.NormalizeOrder(c.Query("order"))
	switch c.DefaultQuery("sort", "created_at") {
	case "show":
		utils.SortByString(filtered, func(inv models.Invoice) string { return inv.Show }, order)
	case "invoice_number":
		utils.SortByString(filtered, func(inv models.Invoice) string { return inv.InvoiceNumber }, order)
	default:
		utils.SortByTime(filtered, func(inv models.Invoice) time.Time { return inv.CreatedAt }, order)
	}

	responses := make([]models.InvoiceResponse, 0, len(filtered))
	for _, inv := range filtered {
		responses = append(responses, models.BuildInvoiceResponse(inv))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
	})
}

// ListUserInvoices handles GET /api/v1/invoices/user/:id - a user's
// invoices, visible to that user or an admin
func ListUserInvoices(c *gin.Context) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	userID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_USER_ID", "User ID must be numeric")
		return
	}
	userID := uint(userID64)

	if session.Role != models.RoleAdmin && session.UserID != userID {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "You can only view your own invoices")
		return
	}

	db := config.GetDB()
	invoices := []models.Invoice{}
	if err := db.Preload("User").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&invoices).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch invoices")
		return
	}

	responses := make([]models.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, models.BuildInvoiceResponse(inv))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
	})
}

// GetInvoice handles GET /api/v1/invoices/:id - one invoice with derived
// totals, visible to its owner or an admin
func GetInvoice(c *gin.Context) {
	invoice, ok := fetchInvoiceForCaller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    models.BuildInvoiceResponse(invoice),
	})
}

// UpdateInvoice handles PUT /api/v1/invoices/:id - replaces the whole items
// array. Every row is validated, totals are recomputed server-side, and the
// updated invoice is returned so no client reload is needed.
func UpdateInvoice(c *gin.Context) {
	invoice, ok := fetchInvoiceForCaller(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateItems(req.Items); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_ITEM", err.Error())
		return
	}

	invoice.Items = req.Items
	invoice.RecalculateItems()

	db := config.GetDB()
	if err := db.Save(&invoice).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update invoice")
		return
	}

	if err := db.Preload("User").First(&invoice, invoice.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load invoice details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    models.BuildInvoiceResponse(invoice),
	})
}

// DeleteInvoiceItem handles DELETE /api/v1/invoices/:id/items/:index -
// removes one row by index. An out-of-range index is rejected before any
// write happens.
func DeleteInvoiceItem(c *gin.Context) {
	invoice, ok := fetchInvoiceForCaller(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_INDEX", "Item index must be numeric")
		return
	}

	if index < 0 || index >= len(invoice.Items) {
		errorJSON(c, http.StatusBadRequest, "INDEX_OUT_OF_RANGE",
			fmt.Sprintf("Item index %d is out of range for %d items", index, len(invoice.Items)))
		return
	}

	invoice.Items = append(invoice.Items[:index], invoice.Items[index+1:]...)

	db := config.GetDB()
	if err := db.Save(&invoice).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update invoice")
		return
	}

	if err := db.Preload("User").First(&invoice, invoice.ID).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load invoice details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    models.BuildInvoiceResponse(invoice),
	})
}

// DeleteInvoice handles DELETE /api/v1/invoices/:id - soft-deletes an
// invoice (admin only)
func DeleteInvoice(c *gin.Context) {
	db := config.GetDB()
	var invoice models.Invoice
	if err := db.First(&invoice, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "INVOICE_NOT_FOUND", "Invoice not found")
		return
	}

	if err := db.Delete(&invoice).Error; err != nil {
		errorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete invoice")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": invoice.ID},
	})
}

// validateItems checks every row before anything is written: date format,
// positive billable hours, positive rate
func validateItems(items []models.InvoiceItem) error {
	for i, item := range items {
		if !itemDatePattern.MatchString(item.Date) {
			return fmt.Errorf("item %d: date must be MM/DD/YYYY", i)
		}
		if item.BillableHours <= 0 {
			return fmt.Errorf("item %d: billable hours must be positive", i)
		}
		if item.Rate <= 0 {
			return fmt.Errorf("item %d: rate must be positive", i)
		}
		if item.ActualHours < 0 {
			return fmt.Errorf("item %d: actual hours must not be negative", i)
		}
	}
	return nil
}

// fetchInvoiceForCaller loads an invoice and enforces owner-or-admin
// visibility. Writes the error response itself when access is denied.
func fetchInvoiceForCaller(c *gin.Context) (models.Invoice, bool) {
	session, err := middleware.CurrentSession(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return models.Invoice{}, false
	}

	db := config.GetDB()
	var invoice models.Invoice
	if err := db.Preload("User").First(&invoice, c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "INVOICE_NOT_FOUND", "Invoice not found")
		return models.Invoice{}, false
	}

	if session.Role != models.RoleAdmin && invoice.UserID != session.UserID {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this invoice")
		return models.Invoice{}, false
	}

	return invoice, true
}
