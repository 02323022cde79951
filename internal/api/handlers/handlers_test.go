package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/metrics"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
)

type fakeOrderRepo struct {
	saveFn            func(context.Context, *domain.Order) error
	findByIDFn        func(context.Context, string) (*domain.Order, error)
	findByFilterFn    func(context.Context, domain.OrderFilter, domain.Pagination) ([]*domain.Order, error)
	countOpenByItemFn func(context.Context, string) (int64, error)
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, order)
	}
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindByKind(ctx context.Context, kind domain.OrderKind, pagination domain.Pagination) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) FindByCounterparty(ctx context.Context, counterpartyID string, pagination domain.Pagination) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) FindByFilter(ctx context.Context, filter domain.OrderFilter, pagination domain.Pagination) ([]*domain.Order, error) {
	if f.findByFilterFn != nil {
		return f.findByFilterFn(ctx, filter, pagination)
	}
	return nil, nil
}

func (f *fakeOrderRepo) CountOpenByItem(ctx context.Context, itemID string) (int64, error) {
	if f.countOpenByItemFn != nil {
		return f.countOpenByItemFn(ctx, itemID)
	}
	return 0, nil
}

func (f *fakeOrderRepo) Count(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	return 0, nil
}

type fakePartyRepo struct {
	saveFn     func(context.Context, *domain.Party) error
	findByIDFn func(context.Context, string) (*domain.Party, error)
	deleteFn   func(context.Context, string) error
}

func (f *fakePartyRepo) Save(ctx context.Context, party *domain.Party) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, party)
	}
	return nil
}

func (f *fakePartyRepo) FindByID(ctx context.Context, partyID string) (*domain.Party, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, partyID)
	}
	return nil, nil
}

func (f *fakePartyRepo) FindByKind(ctx context.Context, kind domain.PartyKind, pagination domain.Pagination) ([]*domain.Party, error) {
	return nil, nil
}

func (f *fakePartyRepo) Delete(ctx context.Context, partyID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, partyID)
	}
	return nil
}

func (f *fakePartyRepo) Count(ctx context.Context, kind domain.PartyKind) (int64, error) {
	return 0, nil
}

type fakeItemRepo struct {
	saveFn     func(context.Context, *domain.Item) error
	findByIDFn func(context.Context, string) (*domain.Item, error)
	deleteFn   func(context.Context, string) error
}

func (f *fakeItemRepo) Save(ctx context.Context, item *domain.Item) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, item)
	}
	return nil
}

func (f *fakeItemRepo) FindByID(ctx context.Context, itemID string) (*domain.Item, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, itemID)
	}
	return nil, nil
}

func (f *fakeItemRepo) FindAll(ctx context.Context, pagination domain.Pagination) ([]*domain.Item, error) {
	return nil, nil
}

func (f *fakeItemRepo) FindBelowReorderLevel(ctx context.Context) ([]*domain.Item, error) {
	return nil, nil
}

func (f *fakeItemRepo) Delete(ctx context.Context, itemID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, itemID)
	}
	return nil
}

func (f *fakeItemRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeTransactionRepo struct {
	saveFn        func(context.Context, *domain.Transaction) error
	findByOrderFn func(context.Context, string) ([]*domain.Transaction, error)
}

func (f *fakeTransactionRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, tx)
	}
	return nil
}

func (f *fakeTransactionRepo) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return nil, nil
}

func (f *fakeTransactionRepo) FindByOrder(ctx context.Context, orderID string) ([]*domain.Transaction, error) {
	if f.findByOrderFn != nil {
		return f.findByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeTransactionRepo) FindByKind(ctx context.Context, kind domain.TransactionKind, pagination domain.Pagination) ([]*domain.Transaction, error) {
	return nil, nil
}

type fakeReferenceRepo struct {
	findByKindFn func(context.Context, domain.ReferenceKind) ([]domain.ReferenceEntry, error)
	saveFn       func(context.Context, domain.ReferenceEntry) error
}

func (f *fakeReferenceRepo) FindByKind(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
	if f.findByKindFn != nil {
		return f.findByKindFn(ctx, kind)
	}
	return nil, nil
}

func (f *fakeReferenceRepo) FindByKindAndParent(ctx context.Context, kind domain.ReferenceKind, parent string) ([]domain.ReferenceEntry, error) {
	return nil, nil
}

func (f *fakeReferenceRepo) Save(ctx context.Context, entry domain.ReferenceEntry) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, entry)
	}
	return nil
}

type seqIDGenerator struct {
	n atomic.Int64
}

func (g *seqIDGenerator) NextID(kind domain.EntityKind) (string, error) {
	return fmt.Sprintf("%s-%03d", kind, g.n.Add(1)), nil
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("handlers-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("handlers-test"))
}

func makeRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func testParty(kind domain.PartyKind, id string) *domain.Party {
	return &domain.Party{
		PartyID:   id,
		Kind:      kind,
		Name:      "Test Party",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func testItem(id string) *domain.Item {
	return &domain.Item{
		ItemID:            id,
		Name:              "Widget",
		PurchaseCost:      5,
		SaleCost:          8,
		QuantityPurchased: 100,
		QuantitySold:      10,
		ReorderLevel:      20,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
}

func newOrderHandler(orderRepo *fakeOrderRepo, partyRepo *fakePartyRepo, itemRepo *fakeItemRepo, txRepo *fakeTransactionRepo) *OrderHandler {
	logger := testLogger()
	idGen := &seqIDGenerator{}
	orderService := application.NewOrderService(orderRepo, partyRepo, itemRepo, idGen, logger)
	txService := application.NewTransactionService(txRepo, orderRepo, partyRepo, idGen, logger)
	return NewOrderHandler(orderService, txService, logger, testMetrics())
}

func submitOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"kind":            "sale",
		"counterpartyId":  "CUST-1a2b3c4d",
		"orderDate":       time.Now().UTC().Format(time.RFC3339),
		"referenceNumber": "INV-100",
		"lines": []map[string]interface{}{
			{
				"itemId":   "ITEM-1a2b3c4d",
				"quantity": 2,
				"unitCost": 50,
				"taxRate":  "16",
				"shipping": 100,
			},
		},
	}
}

func TestOrderHandlerSubmitOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	partyRepo := &fakePartyRepo{
		findByIDFn: func(_ context.Context, partyID string) (*domain.Party, error) {
			return testParty(domain.PartyKindCustomer, partyID), nil
		},
	}
	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, itemID string) (*domain.Item, error) {
			return testItem(itemID), nil
		},
	}
	handler := newOrderHandler(&fakeOrderRepo{}, partyRepo, itemRepo, &fakeTransactionRepo{})
	router.POST("/api/v1/orders", handler.SubmitOrder)

	rec := makeRequest(router, http.MethodPost, "/api/v1/orders", submitOrderBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data application.OrderDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sale", resp.Data.Kind)
	assert.Equal(t, "submitted", resp.Data.Status)
	assert.InDelta(t, 216.0, resp.Data.GrandTotal, 0.001)

	// Missing lines fails binding before the service runs.
	rec = makeRequest(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"kind": "sale",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandlerSubmitOrderUnknownParty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := newOrderHandler(&fakeOrderRepo{}, &fakePartyRepo{}, &fakeItemRepo{}, &fakeTransactionRepo{})
	router.POST("/api/v1/orders", handler.SubmitOrder)

	rec := makeRequest(router, http.MethodPost, "/api/v1/orders", submitOrderBody())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandlerGetOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(_ context.Context, orderID string) (*domain.Order, error) {
			if orderID == "SO-1a2b3c4d" {
				return &domain.Order{OrderID: orderID, Kind: domain.OrderKindSale, Status: domain.OrderStatusSubmitted}, nil
			}
			return nil, nil
		},
	}
	handler := newOrderHandler(orderRepo, &fakePartyRepo{}, &fakeItemRepo{}, &fakeTransactionRepo{})
	router.GET("/api/v1/orders/:orderId", handler.GetOrder)

	rec := makeRequest(router, http.MethodGet, "/api/v1/orders/SO-1a2b3c4d", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = makeRequest(router, http.MethodGet, "/api/v1/orders/SO-deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandlerListOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var captured domain.OrderFilter
	orderRepo := &fakeOrderRepo{
		findByFilterFn: func(_ context.Context, filter domain.OrderFilter, _ domain.Pagination) ([]*domain.Order, error) {
			captured = filter
			return []*domain.Order{{OrderID: "SO-1a2b3c4d", Kind: domain.OrderKindSale}}, nil
		},
	}
	handler := newOrderHandler(orderRepo, &fakePartyRepo{}, &fakeItemRepo{}, &fakeTransactionRepo{})
	router.GET("/api/v1/orders", handler.ListOrders)

	rec := makeRequest(router, http.MethodGet, "/api/v1/orders?kind=sale&status=submitted&page=2&pageSize=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.Kind)
	assert.Equal(t, domain.OrderKindSale, *captured.Kind)
	require.NotNil(t, captured.Status)
	assert.Equal(t, domain.OrderStatusSubmitted, *captured.Status)
}

func TestOrderHandlerAcceptAndReject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	orderRepo := &fakeOrderRepo{
		findByIDFn: func(_ context.Context, orderID string) (*domain.Order, error) {
			return &domain.Order{
				OrderID: orderID,
				Kind:    domain.OrderKindSale,
				Status:  domain.OrderStatusSubmitted,
			}, nil
		},
	}
	handler := newOrderHandler(orderRepo, &fakePartyRepo{}, &fakeItemRepo{}, &fakeTransactionRepo{})
	router.PUT("/api/v1/orders/:orderId/accept", handler.AcceptOrder)
	router.PUT("/api/v1/orders/:orderId/reject", handler.RejectOrder)

	rec := makeRequest(router, http.MethodPut, "/api/v1/orders/SO-1a2b3c4d/accept", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = makeRequest(router, http.MethodPut, "/api/v1/orders/SO-1a2b3c4d/reject", map[string]interface{}{
		"reason": "out of stock",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Rejection without a reason fails binding.
	rec = makeRequest(router, http.MethodPut, "/api/v1/orders/SO-1a2b3c4d/reject", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPartyHandlerCRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	partyRepo := &fakePartyRepo{
		findByIDFn: func(_ context.Context, partyID string) (*domain.Party, error) {
			if partyID == "CUST-1a2b3c4d" {
				return testParty(domain.PartyKindCustomer, partyID), nil
			}
			return nil, nil
		},
	}
	service := application.NewPartyService(partyRepo, &seqIDGenerator{}, testLogger())
	handler := NewPartyHandler(service, domain.PartyKindCustomer, testLogger())
	router.POST("/api/v1/customers", handler.CreateParty)
	router.GET("/api/v1/customers/:partyId", handler.GetParty)
	router.DELETE("/api/v1/customers/:partyId", handler.DeleteParty)

	rec := makeRequest(router, http.MethodPost, "/api/v1/customers", map[string]interface{}{
		"name":  "Jane Retailer",
		"email": "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = makeRequest(router, http.MethodPost, "/api/v1/customers", map[string]interface{}{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = makeRequest(router, http.MethodGet, "/api/v1/customers/CUST-1a2b3c4d", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = makeRequest(router, http.MethodGet, "/api/v1/customers/CUST-deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = makeRequest(router, http.MethodDelete, "/api/v1/customers/CUST-1a2b3c4d", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPartyHandlerDeleteWithBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	partyRepo := &fakePartyRepo{
		findByIDFn: func(_ context.Context, partyID string) (*domain.Party, error) {
			p := testParty(domain.PartyKindCustomer, partyID)
			p.TotalTransacted = 500
			p.TotalSettled = 200
			return p, nil
		},
	}
	service := application.NewPartyService(partyRepo, &seqIDGenerator{}, testLogger())
	handler := NewPartyHandler(service, domain.PartyKindCustomer, testLogger())
	router.DELETE("/api/v1/customers/:partyId", handler.DeleteParty)

	rec := makeRequest(router, http.MethodDelete, "/api/v1/customers/CUST-1a2b3c4d", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestItemHandlerReorderLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, itemID string) (*domain.Item, error) {
			return testItem(itemID), nil
		},
	}
	logger := testLogger()
	service := application.NewItemService(itemRepo, &fakeOrderRepo{}, &seqIDGenerator{}, logger)
	handler := NewItemHandler(service, logger, testMetrics())
	router.PUT("/api/v1/items/:itemId/reorder-level", handler.UpdateReorderLevel)

	// Remaining is 90; a level of 100 puts the item into alert immediately.
	rec := makeRequest(router, http.MethodPut, "/api/v1/items/ITEM-1a2b3c4d/reorder-level", map[string]interface{}{
		"reorderLevel": 100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data application.StockDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.ReorderRequired)

	rec = makeRequest(router, http.MethodPut, "/api/v1/items/ITEM-1a2b3c4d/reorder-level", map[string]interface{}{
		"reorderLevel": -5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemHandlerDeleteWithOpenOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	itemRepo := &fakeItemRepo{
		findByIDFn: func(_ context.Context, itemID string) (*domain.Item, error) {
			return testItem(itemID), nil
		},
	}
	orderRepo := &fakeOrderRepo{
		countOpenByItemFn: func(_ context.Context, _ string) (int64, error) {
			return 2, nil
		},
	}
	logger := testLogger()
	service := application.NewItemService(itemRepo, orderRepo, &seqIDGenerator{}, logger)
	handler := NewItemHandler(service, logger, testMetrics())
	router.DELETE("/api/v1/items/:itemId", handler.DeleteItem)

	rec := makeRequest(router, http.MethodDelete, "/api/v1/items/ITEM-1a2b3c4d", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp middleware.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.CodeConflict, errResp.Code)
}

func TestTransactionHandlerRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	order := &domain.Order{
		OrderID:        "SO-1a2b3c4d",
		Kind:           domain.OrderKindSale,
		CounterpartyID: "CUST-1a2b3c4d",
		Status:         domain.OrderStatusAccepted,
		Totals:         domain.OrderTotals{GrandTotal: 500},
	}
	orderRepo := &fakeOrderRepo{
		findByIDFn: func(_ context.Context, _ string) (*domain.Order, error) {
			return order, nil
		},
	}
	partyRepo := &fakePartyRepo{
		findByIDFn: func(_ context.Context, partyID string) (*domain.Party, error) {
			return testParty(domain.PartyKindCustomer, partyID), nil
		},
	}
	logger := testLogger()
	service := application.NewTransactionService(&fakeTransactionRepo{}, orderRepo, partyRepo, &seqIDGenerator{}, logger)
	handler := NewTransactionHandler(service, domain.TransactionKindReceipt, logger, testMetrics())
	router.POST("/api/v1/receipts", handler.RecordTransaction)

	rec := makeRequest(router, http.MethodPost, "/api/v1/receipts", map[string]interface{}{
		"orderId": "SO-1a2b3c4d",
		"amount":  200,
		"mode":    "mpesa",
		"date":    time.Now().UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Over-settlement is refused.
	rec = makeRequest(router, http.MethodPost, "/api/v1/receipts", map[string]interface{}{
		"orderId": "SO-1a2b3c4d",
		"amount":  10000,
		"mode":    "mpesa",
		"date":    time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestIDHandlerGenerateID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	service := application.NewIDService(domain.NewUUIDGenerator(), testLogger())
	handler := NewIDHandler(service, testLogger())
	router.POST("/api/v1/ids", handler.GenerateID)

	rec := makeRequest(router, http.MethodPost, "/api/v1/ids", map[string]interface{}{
		"kind": "customer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data application.GeneratedIDDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^CUST-[0-9a-f]{8}$`, resp.Data.ID)

	rec = makeRequest(router, http.MethodPost, "/api/v1/ids", map[string]interface{}{
		"kind": "starship",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	refRepo := &fakeReferenceRepo{
		findByKindFn: func(_ context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
			return []domain.ReferenceEntry{{Kind: kind, Value: "electronics"}}, nil
		},
	}
	service := application.NewReferenceService(refRepo, testLogger())
	handler := NewReferenceHandler(service, testLogger())
	router.GET("/api/v1/reference/:kind", handler.ListEntries)
	router.POST("/api/v1/reference/:kind", handler.AddEntry)

	rec := makeRequest(router, http.MethodGet, "/api/v1/reference/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = makeRequest(router, http.MethodGet, "/api/v1/reference/nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = makeRequest(router, http.MethodPost, "/api/v1/reference/categories", map[string]interface{}{
		"value": "hardware",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = makeRequest(router, http.MethodPost, "/api/v1/reference/categories", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := testLogger()
	service := application.NewDashboardService(&fakeOrderRepo{}, &fakePartyRepo{}, &fakeItemRepo{}, logger)
	handler := NewDashboardHandler(service, logger)
	router.GET("/api/v1/dashboard", handler.GetDashboard)

	rec := makeRequest(router, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
