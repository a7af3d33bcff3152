package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an invoice header. It exclusively owns Items; deleting the sale deletes them.
type Sale struct {
	ID            int64           `json:"id" db:"id"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	CustomerID    *int64          `json:"customer_id,omitempty" db:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	TaxAmount     decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	FinalAmount   decimal.Decimal `json:"final_amount" db:"final_amount"`
	SaleDate      time.Time       `json:"sale_date" db:"sale_date"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy     *int64          `json:"created_by,omitempty" db:"created_by"`
	CustomerName  *string         `json:"customer_name,omitempty" db:"customer_name"`
	Items         []SaleItem      `json:"items,omitempty"`
}

// SaleItem is one line of a sale. TotalPrice is fixed when the line is created.
type SaleItem struct {
	ID          int64           `json:"id" db:"id"`
	SaleID      int64           `json:"sale_id" db:"sale_id"`
	ItemID      int64           `json:"item_id" db:"item_id"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	ItemSN      *string         `json:"item_sn,omitempty" db:"item_sn"`
	ItemProduct *string         `json:"item_product,omitempty" db:"item_product"`
	ItemUOM     *string         `json:"item_uom,omitempty" db:"item_uom"`
}

// Purchase is a vendor invoice header owning its PurchaseItems.
type Purchase struct {
	ID            int64           `json:"id" db:"id"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	VendorID      *int64          `json:"vendor_id,omitempty" db:"vendor_id"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	TaxAmount     decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	FinalAmount   decimal.Decimal `json:"final_amount" db:"final_amount"`
	PurchaseDate  time.Time       `json:"purchase_date" db:"purchase_date"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy     *int64          `json:"created_by,omitempty" db:"created_by"`
	VendorName    *string         `json:"vendor_name,omitempty" db:"vendor_name"`
	Items         []PurchaseItem  `json:"items,omitempty"`
}

// PurchaseItem is one line of a purchase.
type PurchaseItem struct {
	ID          int64           `json:"id" db:"id"`
	PurchaseID  int64           `json:"purchase_id" db:"purchase_id"`
	ItemID      int64           `json:"item_id" db:"item_id"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	ItemSN      *string         `json:"item_sn,omitempty" db:"item_sn"`
	ItemProduct *string         `json:"item_product,omitempty" db:"item_product"`
	ItemUOM     *string         `json:"item_uom,omitempty" db:"item_uom"`
}

// LedgerFilters defines the available filters for listing sales or purchases.
// PartyID is the customer for sales and the vendor for purchases.
type LedgerFilters struct {
	PartyID  *int64  `form:"party_id"`
	Date     *string `form:"date"` // Expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
