package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// InvoiceItem is one billable date-of-work row on an invoice
type InvoiceItem struct {
	Date          string  `json:"date"` // MM/DD/YYYY
	ActualHours   float64 `json:"actual_hours"`
	Notes         string  `json:"notes"`
	BillableHours float64 `json:"billable_hours"`
	Rate          float64 `json:"rate"`
	Total         float64 `json:"total"` // always recomputed as billable_hours * rate
}

// Invoice represents a freelancer invoice. Items are stored as a single JSON
// column because the update protocol replaces the whole array at once.
type Invoice struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Show          string         `gorm:"not null" json:"show"`
	Venue         string         `json:"venue"`
	InvoiceNumber string         `gorm:"not null" json:"invoice_number"`
	LPONumber     string         `json:"lpo_number"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"user"`
	Items         []InvoiceItem  `gorm:"serializer:json" json:"items"`
	TaxPercentage float64        `json:"tax_percentage"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Round2 rounds a monetary amount to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecalculateItems recomputes every row total from billable hours and rate,
// discarding whatever totals the client sent
func (inv *Invoice) RecalculateItems() {
	for i := range inv.Items {
		inv.Items[i].Total = Round2(inv.Items[i].BillableHours * inv.Items[i].Rate)
	}
}

// Subtotal is the sum of all row totals
func (inv *Invoice) Subtotal() float64 {
	var sum float64
	for _, item := range inv.Items {
		sum += item.Total
	}
	return Round2(sum)
}

// TaxAmount derives the tax due from the subtotal and tax percentage
func (inv *Invoice) TaxAmount() float64 {
	return Round2(inv.Subtotal() * inv.TaxPercentage / 100)
}

// GrandTotal is subtotal plus tax
func (inv *Invoice) GrandTotal() float64 {
	return Round2(inv.Subtotal() + inv.TaxAmount())
}

// InvoiceResponse is the wire shape of an invoice with derived totals.
// Totals are never stored; they are recomputed on every read.
type InvoiceResponse struct {
	Invoice
	Subtotal   float64 `json:"subtotal"`
	TaxAmount  float64 `json:"tax_amount"`
	GrandTotal float64 `json:"grand_total"`
}

// BuildInvoiceResponse attaches derived totals to an invoice
func BuildInvoiceResponse(inv Invoice) InvoiceResponse {
	return InvoiceResponse{
		Invoice:    inv,
		Subtotal:   inv.Subtotal(),
		TaxAmount:  inv.TaxAmount(),
		GrandTotal: inv.GrandTotal(),
	}
}
