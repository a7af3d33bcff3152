package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoicing_backend/internal/models"
)

func TestBuildTransaction_Amounts(t *testing.T) {
	cases := []struct {
		name     string
		discount string
		lines    []LineRequest
		total    string
		final    string
		lineTots []string
	}{
		{
			name:     "fractional quantity",
			discount: "0",
			lines:    []LineRequest{{ItemID: 1, Quantity: dec("2.5"), UnitPrice: dec("10.00")}},
			total:    "25",
			final:    "25",
			lineTots: []string{"25"},
		},
		{
			name:     "several lines with discount",
			discount: "3.50",
			lines: []LineRequest{
				{ItemID: 1, Quantity: dec("2"), UnitPrice: dec("10.25")},
				{ItemID: 2, Quantity: dec("1"), UnitPrice: dec("4.99")},
			},
			total:    "25.49",
			final:    "21.99",
			lineTots: []string{"20.5", "4.99"},
		},
		{
			name:     "line total rounds half away from zero",
			discount: "0",
			lines:    []LineRequest{{ItemID: 1, Quantity: dec("0.5"), UnitPrice: dec("0.05")}},
			total:    "0.03",
			final:    "0.03",
			lineTots: []string{"0.03"},
		},
		{
			name:     "discount larger than total is not clamped",
			discount: "30",
			lines:    []LineRequest{{ItemID: 1, Quantity: dec("1"), UnitPrice: dec("20")}},
			total:    "20",
			final:    "-10",
			lineTots: []string{"20"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			built, err := BuildTransaction(context.Background(), dec(tc.discount), tc.lines)
			if err != nil {
				t.Fatalf("BuildTransaction: %v", err)
			}
			if !built.TotalAmount.Equal(dec(tc.total)) {
				t.Fatalf("total: expected %s, got %s", tc.total, built.TotalAmount)
			}
			if !built.FinalAmount.Equal(dec(tc.final)) {
				t.Fatalf("final: expected %s, got %s", tc.final, built.FinalAmount)
			}
			if !built.FinalAmount.Equal(built.TotalAmount.Sub(built.Discount)) {
				t.Fatalf("final %s != total %s - discount %s", built.FinalAmount, built.TotalAmount, built.Discount)
			}
			sum := dec("0")
			for i, l := range built.Lines {
				if !l.TotalPrice.Equal(dec(tc.lineTots[i])) {
					t.Fatalf("line %d total: expected %s, got %s", i, tc.lineTots[i], l.TotalPrice)
				}
				sum = sum.Add(l.TotalPrice)
			}
			if !sum.Equal(built.TotalAmount) {
				t.Fatalf("sum of lines %s != total %s", sum, built.TotalAmount)
			}
		})
	}
}

func TestBuildTransaction_RejectsBadInput(t *testing.T) {
	ok := LineRequest{ItemID: 1, Quantity: dec("1"), UnitPrice: dec("1")}
	cases := []struct {
		name     string
		discount string
		lines    []LineRequest
	}{
		{"no lines", "0", nil},
		{"zero quantity", "0", []LineRequest{{ItemID: 1, Quantity: dec("0"), UnitPrice: dec("1")}}},
		{"negative quantity", "0", []LineRequest{{ItemID: 1, Quantity: dec("-1"), UnitPrice: dec("1")}}},
		{"negative price", "0", []LineRequest{{ItemID: 1, Quantity: dec("1"), UnitPrice: dec("-0.01")}}},
		{"three decimal quantity", "0", []LineRequest{{ItemID: 1, Quantity: dec("1.005"), UnitPrice: dec("1")}}},
		{"three decimal price", "0", []LineRequest{{ItemID: 1, Quantity: dec("1"), UnitPrice: dec("9.999")}}},
		{"negative discount", "-1", []LineRequest{ok}},
		{"missing item", "0", []LineRequest{{ItemID: 0, Quantity: dec("1"), UnitPrice: dec("1")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildTransaction(context.Background(), dec(tc.discount), tc.lines)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateSale_ThenDeleteRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "10")
	b := f.createItem(t, "B", "3.5")

	sale, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		Discount: dec("1"),
		Items: []LineRequest{
			{ItemID: a.ID, Quantity: dec("2.5"), UnitPrice: dec("10.00")},
			{ItemID: b.ID, Quantity: dec("3.5"), UnitPrice: dec("2")},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !sale.TotalAmount.Equal(dec("32")) || !sale.FinalAmount.Equal(dec("31")) {
		t.Fatalf("unexpected amounts total=%s final=%s", sale.TotalAmount, sale.FinalAmount)
	}
	if len(sale.Items) != 2 || !sale.Items[0].TotalPrice.Equal(dec("25")) {
		t.Fatalf("unexpected lines: %+v", sale.Items)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("7.5")) {
		t.Fatalf("A: expected 7.5 left, got %s", got)
	}
	if got := f.quantity(t, b.ID); !got.IsZero() {
		t.Fatalf("B: selling all stock should leave 0, got %s", got)
	}

	if err := f.sales.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("10")) {
		t.Fatalf("A: expected 10 after delete, got %s", got)
	}
	if got := f.quantity(t, b.ID); !got.Equal(dec("3.5")) {
		t.Fatalf("B: expected 3.5 after delete, got %s", got)
	}
	if n := f.count(t, "sale_items"); n != 0 {
		t.Fatalf("expected lines deleted with header, %d left", n)
	}
	if _, err := f.sales.GetSaleByID(ctx, sale.ID); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
	if err := f.sales.DeleteSale(ctx, sale.ID); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("second delete: expected ErrSaleNotFound, got %v", err)
	}

	movements, total, err := f.movementRepo.GetMovements(ctx, models.StockMovementFilters{ItemID: &a.ID})
	if err != nil {
		t.Fatalf("GetMovements: %v", err)
	}
	if total != 2 || len(movements) != 2 {
		t.Fatalf("expected sale and sale_reversal movements for A, got %d", total)
	}
}

func TestCreateSale_OversellLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "5")
	b := f.createItem(t, "B", "1")

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{
		{ItemID: a.ID, Quantity: dec("2"), UnitPrice: dec("1")},
		{ItemID: b.ID, Quantity: dec("1.5"), UnitPrice: dec("1")},
	}})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ItemID != b.ID || !stockErr.Available.Equal(dec("1")) || !stockErr.Requested.Equal(dec("1.5")) {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}
	if stockErr.Error() != "Insufficient stock for Product B. Available: 1" {
		t.Fatalf("unexpected message %q", stockErr.Error())
	}

	if n := f.count(t, "sales"); n != 0 {
		t.Fatalf("expected no sale header, found %d", n)
	}
	if n := f.count(t, "stock_movements"); n != 0 {
		t.Fatalf("expected no movements, found %d", n)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("5")) {
		t.Fatalf("A must be untouched, got %s", got)
	}
}

func TestCreateSale_RepeatedItemChecksCumulativeQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "3")

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{
		{ItemID: a.ID, Quantity: dec("2"), UnitPrice: dec("1")},
		{ItemID: a.ID, Quantity: dec("2"), UnitPrice: dec("1")},
	}})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("3")) {
		t.Fatalf("expected 3 untouched, got %s", got)
	}
}

func TestCreateSale_UnknownReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "3")

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{{ItemID: 999, Quantity: dec("1"), UnitPrice: dec("1")}}})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	missing := int64(42)
	_, err = f.sales.CreateSale(ctx, CreateSaleRequest{
		CustomerID: &missing,
		Items:      []LineRequest{{ItemID: a.ID, Quantity: dec("1"), UnitPrice: dec("1")}},
	})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("3")) {
		t.Fatalf("expected 3 untouched, got %s", got)
	}
}

func TestCreateSale_WithCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "3")
	customer := &models.Customer{Name: "Acme"}
	if _, err := f.customerRepo.Create(ctx, f.db, customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	notes := "paid cash"

	sale, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		CustomerID: &customer.ID,
		Notes:      &notes,
		Items:      []LineRequest{{ItemID: a.ID, Quantity: dec("1"), UnitPrice: dec("9.99")}},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if sale.CustomerName == nil || *sale.CustomerName != "Acme" {
		t.Fatalf("expected joined customer name, got %v", sale.CustomerName)
	}
	if sale.Notes == nil || *sale.Notes != notes {
		t.Fatalf("expected notes to be stored, got %v", sale.Notes)
	}
	if sale.Items[0].ItemProduct == nil || *sale.Items[0].ItemProduct != "Product A" {
		t.Fatalf("expected joined item product, got %v", sale.Items[0].ItemProduct)
	}
}

func TestCreatePurchase_AddsStockAndReversalMayUnderflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "0")

	purchase, err := f.purchases.CreatePurchase(ctx, CreatePurchaseRequest{Items: []LineRequest{
		{ItemID: a.ID, Quantity: dec("5"), UnitPrice: dec("3.10")},
	}})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if !purchase.TotalAmount.Equal(dec("15.5")) {
		t.Fatalf("expected total 15.5, got %s", purchase.TotalAmount)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("5")) {
		t.Fatalf("expected 5 after purchase, got %s", got)
	}

	if _, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{
		{ItemID: a.ID, Quantity: dec("4"), UnitPrice: dec("10")},
	}}); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if err := f.purchases.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("-4")) {
		t.Fatalf("expected -4 after reversing the purchase, got %s", got)
	}
}

func TestCreatePurchase_ThenDeleteRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "2.25")

	purchase, err := f.purchases.CreatePurchase(ctx, CreatePurchaseRequest{Items: []LineRequest{
		{ItemID: a.ID, Quantity: dec("0.75"), UnitPrice: dec("1")},
	}})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("3")) {
		t.Fatalf("expected 3, got %s", got)
	}
	if err := f.purchases.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("2.25")) {
		t.Fatalf("expected 2.25, got %s", got)
	}
}

func TestCreateSale_RetriesAfterInvoiceCollision(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, fixedClock(at))
	a := f.createItem(t, "A", "10")

	// Another process already used this second's number.
	taken := &models.Sale{InvoiceNumber: "SALE-20240101120000", TotalAmount: dec("0"), FinalAmount: dec("0"), SaleDate: at}
	if _, err := f.saleRepo.CreateSale(ctx, f.db, taken); err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	sale, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{{ItemID: a.ID, Quantity: dec("1"), UnitPrice: dec("1")}}})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if sale.InvoiceNumber != "SALE-20240101120001" {
		t.Fatalf("expected bumped invoice number, got %s", sale.InvoiceNumber)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("9")) {
		t.Fatalf("stock must be decremented exactly once, got %s", got)
	}
	if n := f.count(t, "stock_movements"); n != 1 {
		t.Fatalf("expected 1 movement, got %d", n)
	}
}

func TestCreateSale_GivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, fixedClock(at))
	a := f.createItem(t, "A", "10")

	for i := 0; i < maxInvoiceAttempts; i++ {
		stamp := at.Add(time.Duration(i) * time.Second).Format(invoiceTimeLayout)
		taken := &models.Sale{InvoiceNumber: SalePrefix + "-" + stamp, TotalAmount: dec("0"), FinalAmount: dec("0"), SaleDate: at}
		if _, err := f.saleRepo.CreateSale(ctx, f.db, taken); err != nil {
			t.Fatalf("seed sale %d: %v", i, err)
		}
	}

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{{ItemID: a.ID, Quantity: dec("1"), UnitPrice: dec("1")}}})
	if !errors.Is(err, ErrInvoiceConflict) {
		t.Fatalf("expected ErrInvoiceConflict, got %v", err)
	}
	if got := f.quantity(t, a.ID); !got.Equal(dec("10")) {
		t.Fatalf("stock must be untouched, got %s", got)
	}
}

func TestGetSales_FiltersAndPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createItem(t, "A", "10")
	for i := 0; i < 3; i++ {
		if _, err := f.sales.CreateSale(ctx, CreateSaleRequest{Items: []LineRequest{{ItemID: a.ID, Quantity: dec("1"), UnitPrice: dec("1")}}}); err != nil {
			t.Fatalf("CreateSale %d: %v", i, err)
		}
	}

	sales, total, err := f.sales.GetSales(ctx, models.LedgerFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("GetSales: %v", err)
	}
	if total != 3 || len(sales) != 2 {
		t.Fatalf("expected 2 of 3 sales, got %d of %d", len(sales), total)
	}

	bad := "yesterday"
	if _, _, err := f.sales.GetSales(ctx, models.LedgerFilters{Date: &bad}); err == nil {
		t.Fatal("expected validation error for bad date")
	}
}
