package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoicing_backend/internal/config"
	"invoicing_backend/internal/database"
	"invoicing_backend/internal/locks"
	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/internal/services"
	"invoicing_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterDecimalValidation()
}

type testServer struct {
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, config.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	cfg := &config.Config{
		DefaultPhoneRegion: "US",
		LowStockThreshold:  10,
		Import:             config.ImportConfig{ReimportMode: config.ReimportOverwrite, LockTTL: time.Minute},
	}
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	auth := services.NewAuthService(db, repositories.NewUserRepository(db), jwt)
	if err := auth.EnsureAdmin(ctx, "admin", "s3cret"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	engine := gin.New()
	Setup(engine, db, cfg, locks.NewLocalLocker(), jwt)
	s := &testServer{engine: engine}

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "s3cret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var resp services.AuthResponse
	decode(t, w, &resp)
	s.token = resp.AccessToken
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func (s *testServer) createItem(t *testing.T, sn, qty string) models.Item {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/items", map[string]string{
		"sn": sn, "product": "Product " + sn, "uom": "pcs",
		"cp": "5", "wholesale": "7", "sp": "10", "opening_quantity": qty,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item status = %d: %s", w.Code, w.Body.String())
	}
	var item models.Item
	decode(t, w, &item)
	return item
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	if w := s.do(t, http.MethodGet, "/ping", nil); w.Code != http.StatusOK {
		t.Errorf("ping status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/items", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("items without token status = %d, want 401", w.Code)
	}
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", w.Code, w.Body.String())
	}
	var user models.User
	decode(t, w, &user)
	if user.Username != "admin" || user.Role != models.RoleAdmin {
		t.Errorf("me = %+v", user)
	}
}

func TestItemRoutes(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem(t, "A1", "3")
	if !item.CurrentQuantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("current = %s, want 3", item.CurrentQuantity)
	}

	w := s.do(t, http.MethodPost, "/api/v1/items", map[string]string{
		"sn": "A1", "product": "Dup", "uom": "pcs", "opening_quantity": "1",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate sn status = %d, want 409", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/items", map[string]string{
		"sn": "B1", "product": "Negative", "uom": "pcs", "sp": "-1",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative price status = %d, want 400", w.Code)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/items/sn/A1", nil); w.Code != http.StatusOK {
		t.Errorf("lookup by sn status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/items/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/items/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestSaleRoutes(t *testing.T) {
	s := newTestServer(t)
	a := s.createItem(t, "A1", "10")
	b := s.createItem(t, "B1", "1")

	w := s.do(t, http.MethodPost, "/api/v1/sales", map[string]interface{}{
		"discount": "5",
		"items":    []map[string]interface{}{{"item_id": a.ID, "quantity": "2.5", "unit_price": "10"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create sale status = %d: %s", w.Code, w.Body.String())
	}
	var sale models.Sale
	decode(t, w, &sale)
	if !sale.FinalAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("final = %s, want 20", sale.FinalAmount)
	}
	if !strings.HasPrefix(sale.InvoiceNumber, "SALE-") {
		t.Errorf("invoice number = %q", sale.InvoiceNumber)
	}

	w = s.do(t, http.MethodPost, "/api/v1/sales", map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_id": a.ID, "quantity": "1", "unit_price": "10"},
			{"item_id": b.ID, "quantity": "2", "unit_price": "10"},
		},
	})
	if w.Code != http.StatusConflict || errorCode(t, w) != utils.ErrCodeInsufficientStock {
		t.Fatalf("oversell status = %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/v1/sales", map[string]interface{}{"items": []map[string]interface{}{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty sale status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/sales?page_size=500", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list sales status = %d: %s", w.Code, w.Body.String())
	}
	var list struct {
		Data     []models.Sale `json:"data"`
		Total    int           `json:"total"`
		PageSize int           `json:"page_size"`
	}
	decode(t, w, &list)
	if list.Total != 1 || len(list.Data) != 1 || list.PageSize != 100 {
		t.Errorf("list = total %d, %d rows, page_size %d", list.Total, len(list.Data), list.PageSize)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/sales?date=yesterday", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodDelete, "/api/v1/sales/"+utils.Int64ToStr(sale.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete sale status = %d: %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodGet, "/api/v1/items/"+utils.Int64ToStr(a.ID), nil)
	var restored models.Item
	decode(t, w, &restored)
	if !restored.CurrentQuantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("current after delete = %s, want 10", restored.CurrentQuantity)
	}

	w = s.do(t, http.MethodGet, "/api/v1/stock-movements?item_id="+utils.Int64ToStr(a.ID), nil)
	var movements struct {
		Total int `json:"total"`
	}
	decode(t, w, &movements)
	if movements.Total != 2 {
		t.Errorf("movements = %d, want sale and sale_reversal", movements.Total)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/stock-movements?movement_type=theft", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown movement type status = %d, want 400", w.Code)
	}
}

func TestPurchaseAndDashboardRoutes(t *testing.T) {
	s := newTestServer(t)
	a := s.createItem(t, "A1", "0")

	w := s.do(t, http.MethodPost, "/api/v1/vendors", map[string]string{"name": "Acme"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create vendor status = %d: %s", w.Code, w.Body.String())
	}
	var vendor models.Vendor
	decode(t, w, &vendor)

	w = s.do(t, http.MethodPost, "/api/v1/purchases", map[string]interface{}{
		"vendor_id": vendor.ID,
		"items":     []map[string]interface{}{{"item_id": a.ID, "quantity": "4", "unit_price": "5"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create purchase status = %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/v1/dashboard/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d: %s", w.Code, w.Body.String())
	}
	var summary models.DashboardSummary
	decode(t, w, &summary)
	if summary.TotalVendors != 1 || summary.TotalItems != 1 || summary.TotalPurchases != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.LowStockItems) != 1 {
		t.Errorf("low stock items = %d, want 1", len(summary.LowStockItems))
	}
}

func TestImportExportRoutes(t *testing.T) {
	s := newTestServer(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"sn", "product", "category", "brand", "cp", "wholesale", "sp", "uom", "opening_quantity"},
		{"X1", "Widget", "Tools", "Acme", "1", "2", "3", "pcs", "5"},
		{"X2", "Gadget", "Tools", "Acme", "abc", "2", "3", "pcs", "5"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var sheet bytes.Buffer
	if err := f.Write(&sheet); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "items.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(sheet.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Message string                 `json:"message"`
		Summary services.ImportSummary `json:"summary"`
	}
	decode(t, w, &resp)
	if resp.Summary.SuccessCount != 1 || resp.Summary.ErrorCount != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if !strings.HasPrefix(resp.Message, "Processed 1 items successfully. 1 errors: Row 3: ") {
		t.Errorf("message = %q", resp.Message)
	}

	w = s.do(t, http.MethodPost, "/api/v1/items/import", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("import without file status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/items/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
}
