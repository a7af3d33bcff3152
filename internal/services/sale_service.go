package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest is the payload for recording a sale.
type CreateSaleRequest struct {
	CustomerID *int64          `json:"customer_id"`
	Discount   decimal.Decimal `json:"discount" binding:"gte=0"`
	Notes      *string         `json:"notes"`
	Items      []LineRequest   `json:"items" binding:"required,min=1,dive"`
}

// SaleService defines the interface for sale operations.
type SaleService interface {
	CreateSale(ctx context.Context, req CreateSaleRequest) (*models.Sale, error)
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetSales(ctx context.Context, filters models.LedgerFilters) ([]models.Sale, int, error)
	DeleteSale(ctx context.Context, id int64) error
}

type saleService struct {
	db           *sqlx.DB
	builder      *TransactionBuilder
	saleRepo     repositories.SaleRepository
	customerRepo repositories.CustomerRepository
}

// NewSaleService creates a new SaleService.
func NewSaleService(db *sqlx.DB, builder *TransactionBuilder, saleRepo repositories.SaleRepository, customerRepo repositories.CustomerRepository) SaleService {
	return &saleService{db: db, builder: builder, saleRepo: saleRepo, customerRepo: customerRepo}
}

func (s *saleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*models.Sale, error) {
	built, err := BuildTransaction(ctx, req.Discount, req.Items)
	if err != nil {
		return nil, err
	}

	id, err := s.builder.create(ctx, ledgerWrite{
		kind:   KindSale,
		prefix: SalePrefix,
		built:  built,
		checkParty: func(ctx context.Context, tx *sqlx.Tx) error {
			if req.CustomerID == nil {
				return nil
			}
			if _, err := s.customerRepo.GetByID(ctx, tx, *req.CustomerID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: customer ID %d", ErrCustomerNotFound, *req.CustomerID)
				}
				return fmt.Errorf("failed to fetch customer %d: %w", *req.CustomerID, err)
			}
			return nil
		},
		insert: func(ctx context.Context, tx *sqlx.Tx, invoiceNumber string) (int64, error) {
			sale := models.Sale{
				InvoiceNumber: invoiceNumber,
				CustomerID:    req.CustomerID,
				TotalAmount:   built.TotalAmount,
				Discount:      built.Discount,
				TaxAmount:     built.TaxAmount,
				FinalAmount:   built.FinalAmount,
				SaleDate:      time.Now().UTC(),
				Notes:         utils.NewNullString(utils.DerefString(req.Notes, "")),
				CreatedBy:     utils.UserIDFromContext(ctx),
			}
			saleID, err := s.saleRepo.CreateSale(ctx, tx, &sale)
			if err != nil {
				return 0, fmt.Errorf("failed to create sale record: %w", err)
			}
			for _, line := range built.Lines {
				item := models.SaleItem{
					SaleID:     saleID,
					ItemID:     line.ItemID,
					Quantity:   line.Quantity,
					UnitPrice:  line.UnitPrice,
					TotalPrice: line.TotalPrice,
				}
				if _, err := s.saleRepo.CreateSaleItem(ctx, tx, &item); err != nil {
					return 0, fmt.Errorf("failed to create sale item (item_id: %d): %w", line.ItemID, err)
				}
			}
			return saleID, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return s.GetSaleByID(ctx, id)
}

func (s *saleService) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale %d: %w", id, err)
	}
	return sale, nil
}

func (s *saleService) GetSales(ctx context.Context, filters models.LedgerFilters) ([]models.Sale, int, error) {
	sales, total, err := s.saleRepo.ListSales(ctx, filters)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidFilter) {
			return nil, 0, &ValidationError{Field: "date", Message: err.Error()}
		}
		return nil, 0, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, total, nil
}

// DeleteSale adds every line's quantity back to stock and removes the sale.
func (s *saleService) DeleteSale(ctx context.Context, id int64) error {
	return s.builder.remove(ctx, KindSale,
		func(ctx context.Context, tx *sqlx.Tx) (string, []StockLine, error) {
			sale, err := s.saleRepo.GetSaleByID(ctx, tx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return "", nil, ErrSaleNotFound
				}
				return "", nil, fmt.Errorf("failed to load sale %d: %w", id, err)
			}
			lines := make([]StockLine, len(sale.Items))
			for i, it := range sale.Items {
				lines[i] = StockLine{ItemID: it.ItemID, Quantity: it.Quantity}
			}
			return sale.InvoiceNumber, lines, nil
		},
		func(ctx context.Context, tx *sqlx.Tx) error {
			if err := s.saleRepo.DeleteSale(ctx, tx, id); err != nil {
				return fmt.Errorf("failed to delete sale %d: %w", id, err)
			}
			return nil
		},
	)
}
