package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the optional counterparty of a sale.
type Customer struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Email     *string         `json:"email,omitempty" db:"email"`
	Phone     *string         `json:"phone,omitempty" db:"phone"`
	Address   *string         `json:"address,omitempty" db:"address"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Vendor is the optional counterparty of a purchase. Rates are percentages.
type Vendor struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Email        *string         `json:"email,omitempty" db:"email"`
	Phone        *string         `json:"phone,omitempty" db:"phone"`
	Address      *string         `json:"address,omitempty" db:"address"`
	Balance      decimal.Decimal `json:"balance" db:"balance"`
	TaxNumber    *string         `json:"tax_number,omitempty" db:"tax_number"`
	DiscountRate decimal.Decimal `json:"discount_rate" db:"discount_rate"`
	VATRate      decimal.Decimal `json:"vat_rate" db:"vat_rate"`
	ExciseRate   decimal.Decimal `json:"excise_rate" db:"excise_rate"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
