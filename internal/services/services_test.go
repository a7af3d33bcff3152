package services

import (
	"context"
	"testing"
	"time"

	"invoicing_backend/internal/config"
	"invoicing_backend/internal/database"
	"invoicing_backend/internal/locks"
	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// fixture wires every service against a fresh in-memory SQLite database.
type fixture struct {
	db           *sqlx.DB
	itemRepo     repositories.ItemRepository
	saleRepo     repositories.SaleRepository
	purchaseRepo repositories.PurchaseRepository
	customerRepo repositories.CustomerRepository
	vendorRepo   repositories.VendorRepository
	movementRepo repositories.StockMovementRepository
	invoices     *InvoiceNumberGenerator
	sales        SaleService
	purchases    PurchaseService
	items        ItemService
	locker       *locks.LocalLocker
}

func newFixture(t *testing.T, clock func() time.Time) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, config.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	f := &fixture{
		db:           db,
		itemRepo:     repositories.NewItemRepository(db),
		saleRepo:     repositories.NewSaleRepository(db),
		purchaseRepo: repositories.NewPurchaseRepository(db),
		customerRepo: repositories.NewCustomerRepository(db),
		vendorRepo:   repositories.NewVendorRepository(db),
		movementRepo: repositories.NewStockMovementRepository(db),
		invoices:     NewInvoiceNumberGenerator(clock),
		locker:       locks.NewLocalLocker(),
	}
	adjuster := NewInventoryAdjuster(f.itemRepo, f.movementRepo)
	builder := NewTransactionBuilder(db, adjuster, f.invoices)
	f.sales = NewSaleService(db, builder, f.saleRepo, f.customerRepo)
	f.purchases = NewPurchaseService(db, builder, f.purchaseRepo, f.vendorRepo)
	f.items = NewItemService(db, f.itemRepo)
	return f
}

func (f *fixture) importer(mode config.ReimportMode) ImportService {
	return NewImportService(f.db, f.itemRepo, f.movementRepo, f.locker, config.ImportConfig{ReimportMode: mode, LockTTL: time.Minute})
}

func (f *fixture) createItem(t *testing.T, sn string, qty string) *models.Item {
	t.Helper()
	item, err := f.items.CreateItem(context.Background(), CreateItemRequest{
		SN: sn, Product: "Product " + sn, UOM: "pcs",
		CP: dec("5"), Wholesale: dec("7"), SP: dec("10"),
		OpeningQuantity: dec(qty),
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", sn, err)
	}
	return item
}

func (f *fixture) quantity(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	item, err := f.itemRepo.GetByID(context.Background(), f.db, id)
	if err != nil {
		t.Fatalf("GetByID(%d): %v", id, err)
	}
	return item.CurrentQuantity
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
