package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "invoicing"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Ledger metrics
	TransactionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_transactions_total",
			Help: "Sales and purchases by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	StockMovementsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Stock movements recorded, by movement type",
		},
		[]string{"movement_type"},
	)

	InsufficientStockCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_insufficient_stock_total",
			Help: "Sales rejected because an item did not have enough stock",
		},
	)

	InvoiceRetriesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_invoice_number_retries_total",
			Help: "Create transactions retried after an invoice number collision",
		},
		[]string{"kind"},
	)

	// Import metrics
	ImportRowsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_import_rows_total",
			Help: "Imported spreadsheet rows by outcome",
		},
		[]string{"outcome"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_import_duration_seconds",
			Help:    "Duration of bulk imports in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordTransaction counts a create or delete of a sale or purchase.
func RecordTransaction(kind, outcome string) {
	TransactionsCounter.WithLabelValues(kind, outcome).Inc()
}

// RecordStockMovement counts one movement row.
func RecordStockMovement(movementType string) {
	StockMovementsCounter.WithLabelValues(movementType).Inc()
}

// RecordImport records the row outcomes and the duration of one import.
func RecordImport(succeeded, failed int, startTime time.Time) {
	ImportRowsCounter.WithLabelValues("success").Add(float64(succeeded))
	ImportRowsCounter.WithLabelValues("error").Add(float64(failed))
	ImportDuration.Observe(time.Since(startTime).Seconds())
}

// GinMiddleware tracks request counts and latency per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
