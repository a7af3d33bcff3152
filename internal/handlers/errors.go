package handlers

import (
	"errors"
	"net/http"

	"invoicing_backend/internal/services"
	"invoicing_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service error onto the standard error response.
// action completes "Failed to ..." in the message of unexpected errors.
func respondServiceError(c *gin.Context, err error, action string) {
	logger := utils.Logger(c.Request.Context())

	var validationErr *services.ValidationError
	var stockErr *services.InsufficientStockError
	var schemaErr *services.SchemaError

	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+validationErr.Error(), validationErr.Field))
	case errors.As(err, &stockErr):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientStock, stockErr.Error(),
			"requested "+stockErr.Requested.String()+" of item "+utils.Int64ToStr(stockErr.ItemID)))
	case errors.As(err, &schemaErr):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeSchemaMismatch, schemaErr.Error(), ""))
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrSaleNotFound),
		errors.Is(err, services.ErrPurchaseNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrVendorNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrItemInUse),
		errors.Is(err, services.ErrDuplicateSerial),
		errors.Is(err, services.ErrImportInProgress),
		errors.Is(err, services.ErrInvoiceConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", ""))
	default:
		logger.Error().Err(err).Msg("Failed to " + action)
		utils.RespondInternal(c, "Failed to "+action+".")
		return
	}
	logger.Warn().Err(err).Msg("Request rejected: " + action)
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Logger(c.Request.Context()).Warn().Err(err).Msg("Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return false
	}
	return true
}

// pathID parses the :id parameter and answers 400 when it is not a positive integer.
func pathID(c *gin.Context, what string) (int64, bool) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+what+" ID format.", err.Error()))
		return 0, false
	}
	return id, true
}

func paginated(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func bindQuery(c *gin.Context, filters interface{}) bool {
	if err := c.ShouldBindQuery(filters); err != nil {
		utils.Logger(c.Request.Context()).Warn().Err(err).Msg("Failed to bind query")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return false
	}
	return true
}
