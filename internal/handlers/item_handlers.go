package handlers

import (
	"bytes"
	"net/http"
	"time"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/services"
	"invoicing_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ItemHandler serves item CRUD plus spreadsheet import and export.
type ItemHandler struct {
	itemService   services.ItemService
	importService services.ImportService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(is services.ItemService, imp services.ImportService) *ItemHandler {
	return &ItemHandler{itemService: is, importService: imp}
}

// CreateItem handles creation of a new item. Current stock starts at the opening quantity.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.itemService.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItems lists items, optionally only those in stock or matching ?q=.
func (h *ItemHandler) GetItems(c *gin.Context) {
	var filters models.ItemFilters
	if !bindQuery(c, &filters) {
		return
	}
	items, err := h.itemService.GetItems(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "retrieve items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func (h *ItemHandler) GetItemByID(c *gin.Context) {
	id, ok := pathID(c, "item")
	if !ok {
		return
	}
	item, err := h.itemService.GetItemByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetItemBySN looks an item up by its serial number.
func (h *ItemHandler) GetItemBySN(c *gin.Context) {
	item, err := h.itemService.GetItemBySN(c.Request.Context(), c.Param("sn"))
	if err != nil {
		respondServiceError(c, err, "retrieve item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem edits descriptive fields and prices. Quantities only move through ledger writes and imports.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "item")
	if !ok {
		return
	}
	var req services.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.itemService.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "item")
	if !ok {
		return
	}
	if err := h.itemService.DeleteItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete item")
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportItems accepts a multipart upload in field "file" and runs the bulk import.
// Row errors do not fail the request, they are reported in the summary.
func (h *ItemHandler) ImportItems(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.LogError(err, "ImportItems: missing upload")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "An .xlsx file is required in form field 'file'.", err.Error()))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.LogError(err, "ImportItems: opening upload")
		utils.RespondInternal(c, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	summary, err := h.importService.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		respondServiceError(c, err, "import items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": summary.Message(), "summary": summary})
}

// ExportItems streams every item as an .xlsx workbook in the import layout.
func (h *ItemHandler) ExportItems(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.importService.ExportXLSX(c.Request.Context(), &buf); err != nil {
		respondServiceError(c, err, "export items")
		return
	}
	filename := "items-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
