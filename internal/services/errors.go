package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrItemInUse          = errors.New("item is referenced by sales or purchases")
	ErrDuplicateSerial    = errors.New("an item with this serial number already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrImportInProgress   = errors.New("another import is already running")
	// ErrInvoiceConflict is returned when every attempt to allocate a unique invoice number collided.
	ErrInvoiceConflict = errors.New("could not allocate a unique invoice number")
)

// ValidationError reports input that was rejected before anything was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError aborts a sale whose requested quantity exceeds what is on hand.
type InsufficientStockError struct {
	ItemID    int64
	Product   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %s", e.Product, e.Available.String())
}

// SchemaError is returned when an import file lacks required columns.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "Missing columns: " + strings.Join(e.Missing, ", ")
}

// RowProcessingError describes one rejected import row. Row is the 1-based
// spreadsheet row, counting the header as row 1.
type RowProcessingError struct {
	Row int
	Err error
}

func (e *RowProcessingError) Error() string {
	return fmt.Sprintf("Row %d: %v", e.Row, e.Err)
}

func (e *RowProcessingError) Unwrap() error { return e.Err }
