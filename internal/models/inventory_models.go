package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a stock-keeping unit identified by its serial number.
// CurrentQuantity is only changed by the inventory adjuster and the bulk importer.
type Item struct {
	ID              int64           `json:"id" db:"id"`
	SN              string          `json:"sn" db:"sn"`
	Product         string          `json:"product" db:"product"`
	Category        string          `json:"category" db:"category"`
	Brand           string          `json:"brand" db:"brand"`
	CP              decimal.Decimal `json:"cp" db:"cp"`               // cost price
	Wholesale       decimal.Decimal `json:"wholesale" db:"wholesale"` // wholesale price
	SP              decimal.Decimal `json:"sp" db:"sp"`               // selling price
	UOM             string          `json:"uom" db:"uom"`             // unit of measure
	OpeningQuantity decimal.Decimal `json:"opening_quantity" db:"opening_quantity"`
	CurrentQuantity decimal.Decimal `json:"current_quantity" db:"current_quantity"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemFilters narrows item listings.
type ItemFilters struct {
	InStockOnly bool    `form:"in_stock"`
	Search      *string `form:"q"`
}

// Stock movement types recorded by the adjuster and the importer.
const (
	MovementTypeSale             = "sale"
	MovementTypeSaleReversal     = "sale_reversal"
	MovementTypePurchase         = "purchase"
	MovementTypePurchaseReversal = "purchase_reversal"
	MovementTypeImport           = "import"
)

// StockMovement is one audited change to an item's current quantity.
type StockMovement struct {
	ID              int64           `json:"id" db:"id"`
	ItemID          int64           `json:"item_id" db:"item_id"`
	MovementType    string          `json:"movement_type" db:"movement_type"`
	QuantityChanged decimal.Decimal `json:"quantity_changed" db:"quantity_changed"`
	Reference       *string         `json:"reference,omitempty" db:"reference"`
	UserID          *int64          `json:"user_id,omitempty" db:"user_id"`
	MovementDate    time.Time       `json:"movement_date" db:"movement_date"`
	ItemSN          *string         `json:"item_sn,omitempty" db:"item_sn"`
	ItemProduct     *string         `json:"item_product,omitempty" db:"item_product"`
}

// StockMovementFilters narrows the movement audit trail.
type StockMovementFilters struct {
	ItemID       *int64  `form:"item_id"`
	MovementType *string `form:"movement_type"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}
