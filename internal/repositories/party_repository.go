package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"invoicing_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	Create(ctx context.Context, executor SQLExecutor, customer *models.Customer) (int64, error)
	GetByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Customer, error)
	Update(ctx context.Context, executor SQLExecutor, customer *models.Customer) error
	Delete(ctx context.Context, executor SQLExecutor, id int64) error
	List(ctx context.Context) ([]models.Customer, error)
	Count(ctx context.Context) (int, error)
}

// VendorRepository defines the interface for vendor-related database operations.
type VendorRepository interface {
	Create(ctx context.Context, executor SQLExecutor, vendor *models.Vendor) (int64, error)
	GetByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Vendor, error)
	Update(ctx context.Context, executor SQLExecutor, vendor *models.Vendor) error
	Delete(ctx context.Context, executor SQLExecutor, id int64) error
	List(ctx context.Context) ([]models.Vendor, error)
	Count(ctx context.Context) (int, error)
}

const customerColumns = `id, name, email, phone, address, balance, created_at, updated_at`

const vendorColumns = `id, name, email, phone, address, balance, tax_number,
	discount_rate, vat_rate, excise_rate, created_at, updated_at`

type customerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, executor SQLExecutor, customer *models.Customer) (int64, error) {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO customers (name, email, phone, address, balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customer.Name, customer.Email, customer.Phone, customer.Address, customer.Balance, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	customer.ID = id
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return id, nil
}

func (r *customerRepository) GetByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := getOne(ctx, executor, &customer, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer %d: %v", ErrDatabaseError, id, err)
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, executor SQLExecutor, customer *models.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	affected, err := execAffecting(ctx, executor,
		`UPDATE customers SET name = ?, email = ?, phone = ?, address = ?, balance = ?, updated_at = ? WHERE id = ?`,
		customer.Name, customer.Email, customer.Phone, customer.Address, customer.Balance, customer.UpdatedAt, customer.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating customer %d: %v", ErrDatabaseError, customer.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, executor SQLExecutor, id int64) error {
	affected, err := execAffecting(ctx, executor, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting customer %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if err := selectAll(ctx, r.db, &customers, "SELECT "+customerColumns+" FROM customers ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("%w: listing customers: %v", ErrDatabaseError, err)
	}
	return customers, nil
}

func (r *customerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := getOne(ctx, r.db, &count, "SELECT COUNT(*) FROM customers"); err != nil {
		return 0, fmt.Errorf("%w: counting customers: %v", ErrDatabaseError, err)
	}
	return count, nil
}

type vendorRepository struct {
	db *sqlx.DB
}

// NewVendorRepository creates a new instance of VendorRepository.
func NewVendorRepository(db *sqlx.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, executor SQLExecutor, vendor *models.Vendor) (int64, error) {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO vendors (name, email, phone, address, balance, tax_number, discount_rate, vat_rate, excise_rate, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vendor.Name, vendor.Email, vendor.Phone, vendor.Address, vendor.Balance, vendor.TaxNumber,
		vendor.DiscountRate, vendor.VATRate, vendor.ExciseRate, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: creating vendor: %v", ErrDatabaseError, err)
	}
	vendor.ID = id
	vendor.CreatedAt = now
	vendor.UpdatedAt = now
	return id, nil
}

func (r *vendorRepository) GetByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := getOne(ctx, executor, &vendor, "SELECT "+vendorColumns+" FROM vendors WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting vendor %d: %v", ErrDatabaseError, id, err)
	}
	return &vendor, nil
}

func (r *vendorRepository) Update(ctx context.Context, executor SQLExecutor, vendor *models.Vendor) error {
	vendor.UpdatedAt = time.Now().UTC()
	affected, err := execAffecting(ctx, executor,
		`UPDATE vendors SET name = ?, email = ?, phone = ?, address = ?, balance = ?, tax_number = ?,
		 discount_rate = ?, vat_rate = ?, excise_rate = ?, updated_at = ? WHERE id = ?`,
		vendor.Name, vendor.Email, vendor.Phone, vendor.Address, vendor.Balance, vendor.TaxNumber,
		vendor.DiscountRate, vendor.VATRate, vendor.ExciseRate, vendor.UpdatedAt, vendor.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating vendor %d: %v", ErrDatabaseError, vendor.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *vendorRepository) Delete(ctx context.Context, executor SQLExecutor, id int64) error {
	affected, err := execAffecting(ctx, executor, "DELETE FROM vendors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting vendor %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *vendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	if err := selectAll(ctx, r.db, &vendors, "SELECT "+vendorColumns+" FROM vendors ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("%w: listing vendors: %v", ErrDatabaseError, err)
	}
	return vendors, nil
}

func (r *vendorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := getOne(ctx, r.db, &count, "SELECT COUNT(*) FROM vendors"); err != nil {
		return 0, fmt.Errorf("%w: counting vendors: %v", ErrDatabaseError, err)
	}
	return count, nil
}
