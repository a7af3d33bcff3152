package services

import (
	"testing"
	"time"
)

func TestInvoiceNumberGenerator_SameSecondStillUnique(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 7, 6, 500, time.UTC)
	g := NewInvoiceNumberGenerator(fixedClock(at))

	first := g.Next(SalePrefix)
	second := g.Next(SalePrefix)
	if first != "SALE-20240309080706" {
		t.Fatalf("unexpected first number %s", first)
	}
	if second != "SALE-20240309080707" {
		t.Fatalf("expected bump to next second, got %s", second)
	}
	if got := g.Next(PurchasePrefix); got != "PUR-20240309080706" {
		t.Fatalf("prefixes must be independent, got %s", got)
	}
}

func TestInvoiceNumberGenerator_FollowsClock(t *testing.T) {
	current := time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC)
	g := NewInvoiceNumberGenerator(func() time.Time { return current })

	g.Next(SalePrefix)
	current = current.Add(time.Minute)
	if got := g.Next(SalePrefix); got != "SALE-20240309080806" {
		t.Fatalf("expected clock time once it has moved on, got %s", got)
	}
}
