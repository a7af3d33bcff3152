package services

import (
	"sync"
	"time"
)

const (
	SalePrefix     = "SALE"
	PurchasePrefix = "PUR"

	invoiceTimeLayout = "20060102150405"
)

// InvoiceNumberGenerator issues {prefix}-{YYYYMMDDHHMMSS} numbers. Within one
// process numbers for a prefix strictly increase: when the clock has not moved
// past the last issued second, the next second is used instead.
type InvoiceNumberGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]time.Time
}

// NewInvoiceNumberGenerator creates a generator. A nil clock means time.Now.
func NewInvoiceNumberGenerator(clock func() time.Time) *InvoiceNumberGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &InvoiceNumberGenerator{now: clock, last: make(map[string]time.Time)}
}

// Next returns the next invoice number for prefix.
func (g *InvoiceNumberGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	at := g.now().UTC().Truncate(time.Second)
	if last, ok := g.last[prefix]; ok && !at.After(last) {
		at = last.Add(time.Second)
	}
	g.last[prefix] = at
	return prefix + "-" + at.Format(invoiceTimeLayout)
}
