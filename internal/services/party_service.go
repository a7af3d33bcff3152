package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// --- Customer & Vendor DTOs ---

// CustomerRequest is used both to create a customer and to replace one on update.
type CustomerRequest struct {
	Name    string          `json:"name" binding:"required,max=100"`
	Email   *string         `json:"email"`
	Phone   *string         `json:"phone"`
	Address *string         `json:"address"`
	Balance decimal.Decimal `json:"balance"`
}

// VendorRequest is used both to create a vendor and to replace one on update.
type VendorRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	Address      *string         `json:"address"`
	Balance      decimal.Decimal `json:"balance"`
	TaxNumber    *string         `json:"tax_number"`
	DiscountRate decimal.Decimal `json:"discount_rate" binding:"gte=0,lte=100"`
	VATRate      decimal.Decimal `json:"vat_rate" binding:"gte=0,lte=100"`
	ExciseRate   decimal.Decimal `json:"excise_rate" binding:"gte=0,lte=100"`
}

// CustomerService defines the interface for customer operations.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, req CustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// VendorService defines the interface for vendor operations.
type VendorService interface {
	CreateVendor(ctx context.Context, req VendorRequest) (*models.Vendor, error)
	GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error)
	GetVendors(ctx context.Context) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, id int64, req VendorRequest) (*models.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error
}

// contactFields are validated and normalised the same way for customers and vendors.
type contactFields struct {
	name    string
	email   *string
	phone   *string
	address *string
}

func normalizeContact(c contactFields, phoneRegion string) (contactFields, error) {
	c.name = strings.TrimSpace(c.name)
	if c.name == "" {
		return c, newValidationError("name", "cannot be empty")
	}
	if c.email != nil {
		em := strings.ToLower(strings.TrimSpace(*c.email))
		if em != "" && !utils.IsValidEmail(em) {
			return c, newValidationError("email", "format is invalid")
		}
		c.email = utils.NewNullString(em)
	}
	if c.phone != nil {
		c.phone = utils.NewNullString(utils.NormalizePhone(*c.phone, phoneRegion))
	}
	if c.address != nil {
		c.address = utils.NewNullString(strings.TrimSpace(*c.address))
	}
	return c, nil
}

func checkMoney(field string, d decimal.Decimal) error {
	if !utils.HasMoneyPrecision(d) {
		return newValidationError(field, "must have at most %d decimal places", utils.MoneyPlaces)
	}
	return nil
}

func checkRate(field string, d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return newValidationError(field, "must be between 0 and 100")
	}
	return checkMoney(field, d)
}

// --- customerService Implementation ---
type customerService struct {
	db          *sqlx.DB
	repo        repositories.CustomerRepository
	phoneRegion string
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(db *sqlx.DB, repo repositories.CustomerRepository, phoneRegion string) CustomerService {
	return &customerService{db: db, repo: repo, phoneRegion: phoneRegion}
}

func (s *customerService) build(req CustomerRequest) (*models.Customer, error) {
	c, err := normalizeContact(contactFields{req.Name, req.Email, req.Phone, req.Address}, s.phoneRegion)
	if err != nil {
		return nil, err
	}
	if err := checkMoney("balance", req.Balance); err != nil {
		return nil, err
	}
	return &models.Customer{Name: c.name, Email: c.email, Phone: c.phone, Address: c.address, Balance: req.Balance}, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*models.Customer, error) {
	customer, err := s.build(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, s.db, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int64, req CustomerRequest) (*models.Customer, error) {
	customer, err := s.build(req)
	if err != nil {
		return nil, err
	}
	customer.ID = id
	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return s.GetCustomerByID(ctx, id)
}

// DeleteCustomer removes the customer; their sales keep existing without a customer.
func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}
	return nil
}

// --- vendorService Implementation ---
type vendorService struct {
	db          *sqlx.DB
	repo        repositories.VendorRepository
	phoneRegion string
}

// NewVendorService creates a new instance of VendorService.
func NewVendorService(db *sqlx.DB, repo repositories.VendorRepository, phoneRegion string) VendorService {
	return &vendorService{db: db, repo: repo, phoneRegion: phoneRegion}
}

func (s *vendorService) build(req VendorRequest) (*models.Vendor, error) {
	c, err := normalizeContact(contactFields{req.Name, req.Email, req.Phone, req.Address}, s.phoneRegion)
	if err != nil {
		return nil, err
	}
	if err := checkMoney("balance", req.Balance); err != nil {
		return nil, err
	}
	if err := checkRate("discount_rate", req.DiscountRate); err != nil {
		return nil, err
	}
	if err := checkRate("vat_rate", req.VATRate); err != nil {
		return nil, err
	}
	if err := checkRate("excise_rate", req.ExciseRate); err != nil {
		return nil, err
	}
	taxNumber := req.TaxNumber
	if taxNumber != nil {
		taxNumber = utils.NewNullString(strings.TrimSpace(*taxNumber))
	}
	return &models.Vendor{
		Name: c.name, Email: c.email, Phone: c.phone, Address: c.address, Balance: req.Balance,
		TaxNumber: taxNumber, DiscountRate: req.DiscountRate, VATRate: req.VATRate, ExciseRate: req.ExciseRate,
	}, nil
}

func (s *vendorService) CreateVendor(ctx context.Context, req VendorRequest) (*models.Vendor, error) {
	vendor, err := s.build(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, s.db, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}
	return vendor, nil
}

func (s *vendorService) GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor %d: %w", id, err)
	}
	return vendor, nil
}

func (s *vendorService) GetVendors(ctx context.Context) ([]models.Vendor, error) {
	vendors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get vendors: %w", err)
	}
	return vendors, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, id int64, req VendorRequest) (*models.Vendor, error) {
	vendor, err := s.build(req)
	if err != nil {
		return nil, err
	}
	vendor.ID = id
	if err := s.repo.Update(ctx, s.db, vendor); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to update vendor %d: %w", id, err)
	}
	return s.GetVendorByID(ctx, id)
}

func (s *vendorService) DeleteVendor(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVendorNotFound
		}
		return fmt.Errorf("failed to delete vendor %d: %w", id, err)
	}
	return nil
}
