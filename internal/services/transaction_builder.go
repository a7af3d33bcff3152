package services

import (
	"context"
	"errors"
	"fmt"

	"invoicing_backend/internal/metrics"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// maxInvoiceAttempts bounds how many times a create transaction is retried
// after its invoice number collided with one issued by another process.
const maxInvoiceAttempts = 5

// LineRequest is one requested line of a sale or purchase.
type LineRequest struct {
	ItemID    int64           `json:"item_id" binding:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"gte=0"`
}

// BuiltLine is a validated line with its fixed total.
type BuiltLine struct {
	ItemID     int64
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// BuiltTransaction holds the computed amounts of a sale or purchase before it is stored.
type BuiltTransaction struct {
	Lines       []BuiltLine
	TotalAmount decimal.Decimal
	Discount    decimal.Decimal
	TaxAmount   decimal.Decimal
	FinalAmount decimal.Decimal
}

// StockLines returns the item/quantity pairs the inventory adjuster needs.
func (b *BuiltTransaction) StockLines() []StockLine {
	lines := make([]StockLine, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = StockLine{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return lines
}

// BuildTransaction validates the requested lines and computes every amount.
// Line totals are quantity × unit price rounded half away from zero to two
// places; final = total − discount and is never clamped.
func BuildTransaction(ctx context.Context, discount decimal.Decimal, lines []LineRequest) (*BuiltTransaction, error) {
	if len(lines) == 0 {
		return nil, newValidationError("items", "at least one line item is required")
	}
	if discount.IsNegative() {
		return nil, newValidationError("discount", "must not be negative")
	}
	if !utils.HasMoneyPrecision(discount) {
		return nil, newValidationError("discount", "must have at most %d decimal places", utils.MoneyPlaces)
	}

	built := &BuiltTransaction{
		Lines:       make([]BuiltLine, 0, len(lines)),
		TotalAmount: decimal.Zero,
		Discount:    discount,
		TaxAmount:   decimal.Zero,
	}
	for i, line := range lines {
		field := fmt.Sprintf("items[%d]", i)
		if line.ItemID <= 0 {
			return nil, newValidationError(field+".item_id", "must reference an item")
		}
		if !line.Quantity.IsPositive() {
			return nil, newValidationError(field+".quantity", "must be greater than zero")
		}
		if !utils.HasMoneyPrecision(line.Quantity) {
			return nil, newValidationError(field+".quantity", "must have at most %d decimal places", utils.MoneyPlaces)
		}
		if line.UnitPrice.IsNegative() {
			return nil, newValidationError(field+".unit_price", "must not be negative")
		}
		if !utils.HasMoneyPrecision(line.UnitPrice) {
			return nil, newValidationError(field+".unit_price", "must have at most %d decimal places", utils.MoneyPlaces)
		}

		total := utils.RoundMoney(line.Quantity.Mul(line.UnitPrice))
		built.Lines = append(built.Lines, BuiltLine{
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: total,
		})
		built.TotalAmount = built.TotalAmount.Add(total)
	}

	built.FinalAmount = built.TotalAmount.Sub(discount)
	if built.FinalAmount.IsNegative() {
		utils.Logger(ctx).Warn().
			Str("total_amount", built.TotalAmount.String()).
			Str("discount", discount.String()).
			Msg("Discount exceeds total, final amount is negative")
	}
	return built, nil
}

// ledgerWrite describes how one sale or purchase is persisted inside a create transaction.
type ledgerWrite struct {
	kind   LedgerKind
	prefix string
	built  *BuiltTransaction
	// checkParty verifies the optional customer or vendor inside the transaction.
	checkParty func(ctx context.Context, tx *sqlx.Tx) error
	// insert writes the header and its lines and returns the header id.
	insert func(ctx context.Context, tx *sqlx.Tx, invoiceNumber string) (int64, error)
}

// TransactionBuilder turns validated requests into stored sales and purchases.
// Header, lines, stock updates and movements of one call share one transaction.
type TransactionBuilder struct {
	db       *sqlx.DB
	adjuster InventoryAdjuster
	invoices *InvoiceNumberGenerator
}

// NewTransactionBuilder creates a TransactionBuilder.
func NewTransactionBuilder(db *sqlx.DB, adjuster InventoryAdjuster, invoices *InvoiceNumberGenerator) *TransactionBuilder {
	return &TransactionBuilder{db: db, adjuster: adjuster, invoices: invoices}
}

// create runs w in a fresh transaction, retrying with a new invoice number when
// the number turns out to be taken already.
func (b *TransactionBuilder) create(ctx context.Context, w ledgerWrite) (int64, error) {
	for attempt := 1; attempt <= maxInvoiceAttempts; attempt++ {
		id, invoiceNumber, err := b.createOnce(ctx, w)
		if err == nil {
			metrics.RecordTransaction(string(w.kind), "created")
			return id, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			metrics.RecordTransaction(string(w.kind), "rejected")
			return 0, err
		}
		metrics.InvoiceRetriesCounter.WithLabelValues(string(w.kind)).Inc()
		utils.Logger(ctx).Warn().
			Str("invoice_number", invoiceNumber).
			Int("attempt", attempt).
			Msg("Invoice number already taken, retrying")
	}
	metrics.RecordTransaction(string(w.kind), "rejected")
	return 0, ErrInvoiceConflict
}

func (b *TransactionBuilder) createOnce(ctx context.Context, w ledgerWrite) (int64, string, error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	invoiceNumber := b.invoices.Next(w.prefix)

	if w.checkParty != nil {
		if err := w.checkParty(ctx, tx); err != nil {
			return 0, invoiceNumber, err
		}
	}

	if err := b.adjuster.Adjust(ctx, tx, w.kind, Apply, invoiceNumber, w.built.StockLines()); err != nil {
		return 0, invoiceNumber, err
	}

	id, err := w.insert(ctx, tx, invoiceNumber)
	if err != nil {
		return 0, invoiceNumber, err
	}

	if err := tx.Commit(); err != nil {
		return 0, invoiceNumber, fmt.Errorf("failed to commit %s transaction: %w", w.kind, err)
	}
	utils.Logger(ctx).Info().
		Str("kind", string(w.kind)).
		Str("invoice_number", invoiceNumber).
		Int64("id", id).
		Str("final_amount", w.built.FinalAmount.String()).
		Msg("Transaction created")
	return id, invoiceNumber, nil
}

// remove reverses the stock effect of an existing transaction and deletes it
// in one database transaction.
func (b *TransactionBuilder) remove(ctx context.Context, kind LedgerKind, load func(ctx context.Context, tx *sqlx.Tx) (string, []StockLine, error), del func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	invoiceNumber, lines, err := load(ctx, tx)
	if err != nil {
		return err
	}
	if err := b.adjuster.Adjust(ctx, tx, kind, Reverse, invoiceNumber, lines); err != nil {
		return err
	}
	if err := del(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s deletion: %w", kind, err)
	}
	metrics.RecordTransaction(string(kind), "deleted")
	utils.Logger(ctx).Info().
		Str("kind", string(kind)).
		Str("invoice_number", invoiceNumber).
		Msg("Transaction deleted and stock reversed")
	return nil
}
