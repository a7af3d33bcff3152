package handlers

import (
	"net/http"

	"invoicing_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

// CreateCustomer handles creation of a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists all customers.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	customers, err := h.customerService.GetCustomers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "retrieve customers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers, "total": len(customers)})
}

// GetCustomerByID fetches a single customer.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer replaces a customer's details.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}
	var req services.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer. Sales keep their rows with the customer cleared.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}

// VendorHandler holds the vendor service.
type VendorHandler struct {
	vendorService services.VendorService
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(vs services.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vs}
}

func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req services.VendorRequest
	if !bindJSON(c, &req) {
		return
	}
	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create vendor")
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) GetVendors(c *gin.Context) {
	vendors, err := h.vendorService.GetVendors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "retrieve vendors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vendors, "total": len(vendors)})
}

func (h *VendorHandler) GetVendorByID(c *gin.Context) {
	id, ok := pathID(c, "vendor")
	if !ok {
		return
	}
	vendor, err := h.vendorService.GetVendorByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve vendor")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, ok := pathID(c, "vendor")
	if !ok {
		return
	}
	var req services.VendorRequest
	if !bindJSON(c, &req) {
		return
	}
	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update vendor")
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, ok := pathID(c, "vendor")
	if !ok {
		return
	}
	if err := h.vendorService.DeleteVendor(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete vendor")
		return
	}
	c.Status(http.StatusNoContent)
}
