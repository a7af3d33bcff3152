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

// CreatePurchaseRequest is the payload for recording a purchase.
type CreatePurchaseRequest struct {
	VendorID *int64          `json:"vendor_id"`
	Discount decimal.Decimal `json:"discount" binding:"gte=0"`
	Notes    *string         `json:"notes"`
	Items    []LineRequest   `json:"items" binding:"required,min=1,dive"`
}

// PurchaseService defines the interface for purchase operations.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*models.Purchase, error)
	GetPurchaseByID(ctx context.Context, id int64) (*models.Purchase, error)
	GetPurchases(ctx context.Context, filters models.LedgerFilters) ([]models.Purchase, int, error)
	DeletePurchase(ctx context.Context, id int64) error
}

type purchaseService struct {
	db           *sqlx.DB
	builder      *TransactionBuilder
	purchaseRepo repositories.PurchaseRepository
	vendorRepo   repositories.VendorRepository
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(db *sqlx.DB, builder *TransactionBuilder, purchaseRepo repositories.PurchaseRepository, vendorRepo repositories.VendorRepository) PurchaseService {
	return &purchaseService{db: db, builder: builder, purchaseRepo: purchaseRepo, vendorRepo: vendorRepo}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*models.Purchase, error) {
	built, err := BuildTransaction(ctx, req.Discount, req.Items)
	if err != nil {
		return nil, err
	}

	id, err := s.builder.create(ctx, ledgerWrite{
		kind:   KindPurchase,
		prefix: PurchasePrefix,
		built:  built,
		checkParty: func(ctx context.Context, tx *sqlx.Tx) error {
			if req.VendorID == nil {
				return nil
			}
			if _, err := s.vendorRepo.GetByID(ctx, tx, *req.VendorID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: vendor ID %d", ErrVendorNotFound, *req.VendorID)
				}
				return fmt.Errorf("failed to fetch vendor %d: %w", *req.VendorID, err)
			}
			return nil
		},
		insert: func(ctx context.Context, tx *sqlx.Tx, invoiceNumber string) (int64, error) {
			purchase := models.Purchase{
				InvoiceNumber: invoiceNumber,
				VendorID:      req.VendorID,
				TotalAmount:   built.TotalAmount,
				Discount:      built.Discount,
				TaxAmount:     built.TaxAmount,
				FinalAmount:   built.FinalAmount,
				PurchaseDate:  time.Now().UTC(),
				Notes:         utils.NewNullString(utils.DerefString(req.Notes, "")),
				CreatedBy:     utils.UserIDFromContext(ctx),
			}
			purchaseID, err := s.purchaseRepo.CreatePurchase(ctx, tx, &purchase)
			if err != nil {
				return 0, fmt.Errorf("failed to create purchase record: %w", err)
			}
			for _, line := range built.Lines {
				item := models.PurchaseItem{
					PurchaseID: purchaseID,
					ItemID:     line.ItemID,
					Quantity:   line.Quantity,
					UnitPrice:  line.UnitPrice,
					TotalPrice: line.TotalPrice,
				}
				if _, err := s.purchaseRepo.CreatePurchaseItem(ctx, tx, &item); err != nil {
					return 0, fmt.Errorf("failed to create purchase item (item_id: %d): %w", line.ItemID, err)
				}
			}
			return purchaseID, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return s.GetPurchaseByID(ctx, id)
}

func (s *purchaseService) GetPurchaseByID(ctx context.Context, id int64) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetPurchaseByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to get purchase %d: %w", id, err)
	}
	return purchase, nil
}

func (s *purchaseService) GetPurchases(ctx context.Context, filters models.LedgerFilters) ([]models.Purchase, int, error) {
	purchases, total, err := s.purchaseRepo.ListPurchases(ctx, filters)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidFilter) {
			return nil, 0, &ValidationError{Field: "date", Message: err.Error()}
		}
		return nil, 0, fmt.Errorf("failed to get purchases: %w", err)
	}
	return purchases, total, nil
}

// DeletePurchase takes every line's quantity back out of stock and removes the purchase.
// Stock may go negative if the goods were sold meanwhile; that is logged, not refused.
func (s *purchaseService) DeletePurchase(ctx context.Context, id int64) error {
	return s.builder.remove(ctx, KindPurchase,
		func(ctx context.Context, tx *sqlx.Tx) (string, []StockLine, error) {
			purchase, err := s.purchaseRepo.GetPurchaseByID(ctx, tx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return "", nil, ErrPurchaseNotFound
				}
				return "", nil, fmt.Errorf("failed to load purchase %d: %w", id, err)
			}
			lines := make([]StockLine, len(purchase.Items))
			for i, it := range purchase.Items {
				lines[i] = StockLine{ItemID: it.ItemID, Quantity: it.Quantity}
			}
			return purchase.InvoiceNumber, lines, nil
		},
		func(ctx context.Context, tx *sqlx.Tx) error {
			if err := s.purchaseRepo.DeletePurchase(ctx, tx, id); err != nil {
				return fmt.Errorf("failed to delete purchase %d: %w", id, err)
			}
			return nil
		},
	)
}
