package application

import (
	"time"

	"github.com/ims-platform/backoffice-service/internal/domain"
)

// Commands and queries

// SubmitOrderCommand represents command to submit a purchase or sales order
type SubmitOrderCommand struct {
	OrderID         string             `json:"orderId"`
	Kind            string             `json:"kind" binding:"required,oneof=purchase sale"`
	CounterpartyID  string             `json:"counterpartyId" binding:"required"`
	OrderDate       time.Time          `json:"orderDate" binding:"required"`
	ReferenceNumber string             `json:"referenceNumber" binding:"required"`
	Lines           []OrderLineCommand `json:"lines" binding:"required,min=1,dive"`
}

// OrderLineCommand represents one line of a submitted order. TaxRate arrives
// as entered on screen and is parsed server-side so malformed values (a
// trailing percent sign, stray text) are rejected before any arithmetic.
type OrderLineCommand struct {
	ItemID   string  `json:"itemId" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost float64 `json:"unitCost" binding:"required,gt=0"`
	TaxRate  string  `json:"taxRate" binding:"required"`
	Shipping float64 `json:"shipping" binding:"gte=0"`
}

// ListOrdersQuery represents query to list orders
type ListOrdersQuery struct {
	Kind           *string
	CounterpartyID *string
	Status         *string
	Page           int64
	PageSize       int64
}

// RejectOrderCommand carries the rejection reason
type RejectOrderCommand struct {
	Reason string `json:"reason" binding:"required"`
}

// CreatePartyCommand represents command to create a customer or supplier
type CreatePartyCommand struct {
	Name   string `json:"name" binding:"required"`
	Phone  string `json:"phone"`
	Email  string `json:"email" binding:"omitempty,email"`
	County string `json:"county"`
	Town   string `json:"town"`
}

// UpdatePartyCommand represents command to update contact details
type UpdatePartyCommand struct {
	Name   string `json:"name" binding:"required"`
	Phone  string `json:"phone"`
	Email  string `json:"email" binding:"omitempty,email"`
	County string `json:"county"`
	Town   string `json:"town"`
}

// CreateItemCommand represents command to create an inventory item
type CreateItemCommand struct {
	Name         string  `json:"name" binding:"required"`
	Type         string  `json:"type"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	PurchaseCost float64 `json:"purchaseCost" binding:"gte=0"`
	SaleCost     float64 `json:"saleCost" binding:"gte=0"`
	ReorderLevel float64 `json:"reorderLevel" binding:"gte=0"`
}

// UpdateReorderLevelCommand represents command to change an item's reorder level
type UpdateReorderLevelCommand struct {
	ReorderLevel float64 `json:"reorderLevel" binding:"gte=0"`
}

// CreateTransactionCommand represents command to record a payment or receipt
type CreateTransactionCommand struct {
	OrderID   string    `json:"orderId" binding:"required"`
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	Mode      string    `json:"mode" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Reference string    `json:"reference"`
}

// GenerateIDCommand represents command to issue a new identifier
type GenerateIDCommand struct {
	Kind string `json:"kind" binding:"required"`
}

// DTOs

// LineTotalsDTO carries line amounts rounded to cents for presentation
type LineTotalsDTO struct {
	AmountExclTax float64 `json:"amountExclTax"`
	TaxAmount     float64 `json:"taxAmount"`
	AmountInclTax float64 `json:"amountInclTax"`
	Shipping      float64 `json:"shipping"`
	Total         float64 `json:"total"`
}

// OrderLineDTO represents one priced order line
type OrderLineDTO struct {
	LineID         string        `json:"lineId"`
	ItemID         string        `json:"itemId"`
	ItemName       string        `json:"itemName"`
	Quantity       float64       `json:"quantity"`
	UnitCost       float64       `json:"unitCost"`
	TaxRatePercent float64       `json:"taxRatePercent"`
	Totals         LineTotalsDTO `json:"totals"`
}

// OrderDTO represents an order response
type OrderDTO struct {
	OrderID          string         `json:"orderId"`
	Kind             string         `json:"kind"`
	CounterpartyID   string         `json:"counterpartyId"`
	CounterpartyName string         `json:"counterpartyName"`
	OrderDate        time.Time      `json:"orderDate"`
	ReferenceNumber  string         `json:"referenceNumber"`
	Lines            []OrderLineDTO `json:"lines"`
	AmountExclTax    float64        `json:"amountExclTax"`
	TaxAmount        float64        `json:"taxAmount"`
	AmountInclTax    float64        `json:"amountInclTax"`
	Shipping         float64        `json:"shipping"`
	GrandTotal       float64        `json:"grandTotal"`
	AmountSettled    float64        `json:"amountSettled"`
	Outstanding      float64        `json:"outstanding"`
	SettlementStatus string         `json:"settlementStatus"`
	Status           string         `json:"status"`
	RejectionReason  string         `json:"rejectionReason,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// OrderListResponse represents paginated orders
type OrderListResponse struct {
	Data     []OrderDTO `json:"data"`
	Page     int64      `json:"page"`
	PageSize int64      `json:"pageSize"`
}

// PartyDTO represents a customer or supplier response
type PartyDTO struct {
	PartyID         string    `json:"partyId"`
	Kind            string    `json:"kind"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	County          string    `json:"county,omitempty"`
	Town            string    `json:"town,omitempty"`
	TotalTransacted float64   `json:"totalTransacted"`
	TotalSettled    float64   `json:"totalSettled"`
	Outstanding     float64   `json:"outstanding"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PartyListResponse represents paginated parties
type PartyListResponse struct {
	Data     []PartyDTO `json:"data"`
	Page     int64      `json:"page"`
	PageSize int64      `json:"pageSize"`
}

// ItemDTO represents an inventory item response
type ItemDTO struct {
	ItemID            string    `json:"itemId"`
	Name              string    `json:"name"`
	Type              string    `json:"type,omitempty"`
	Category          string    `json:"category,omitempty"`
	Subcategory       string    `json:"subcategory,omitempty"`
	PurchaseCost      float64   `json:"purchaseCost"`
	SaleCost          float64   `json:"saleCost"`
	QuantityPurchased float64   `json:"quantityPurchased"`
	QuantitySold      float64   `json:"quantitySold"`
	Remaining         float64   `json:"remaining"`
	ReorderLevel      float64   `json:"reorderLevel"`
	ReorderRequired   bool      `json:"reorderRequired"`
	LowStock          bool      `json:"lowStock"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ItemListResponse represents paginated items
type ItemListResponse struct {
	Data     []ItemDTO `json:"data"`
	Page     int64     `json:"page"`
	PageSize int64     `json:"pageSize"`
}

// StockDTO represents the reorder classification of an item
type StockDTO struct {
	ItemID          string  `json:"itemId"`
	Remaining       float64 `json:"remaining"`
	ReorderLevel    float64 `json:"reorderLevel"`
	ReorderRequired bool    `json:"reorderRequired"`
	LowStock        bool    `json:"lowStock"`
}

// TransactionDTO represents a payment or receipt response
type TransactionDTO struct {
	TransactionID string    `json:"transactionId"`
	Kind          string    `json:"kind"`
	OrderID       string    `json:"orderId"`
	PartyID       string    `json:"partyId"`
	Amount        float64   `json:"amount"`
	Mode          string    `json:"mode"`
	Date          time.Time `json:"date"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TransactionListResponse represents paginated transactions
type TransactionListResponse struct {
	Data     []TransactionDTO `json:"data"`
	Page     int64            `json:"page"`
	PageSize int64            `json:"pageSize"`
}

// GeneratedIDDTO represents an issued identifier
type GeneratedIDDTO struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ReferenceEntryDTO represents one value of a dimension set
type ReferenceEntryDTO struct {
	Value  string `json:"value"`
	Parent string `json:"parent,omitempty"`
}

// StockAlertDTO represents a dashboard stock alert row
type StockAlertDTO struct {
	ItemID       string  `json:"itemId"`
	Name         string  `json:"name"`
	Remaining    float64 `json:"remaining"`
	ReorderLevel float64 `json:"reorderLevel"`
	Severity     string  `json:"severity"`
}

// DashboardDTO represents the dashboard summary
type DashboardDTO struct {
	Customers        int64           `json:"customers"`
	Suppliers        int64           `json:"suppliers"`
	Items            int64           `json:"items"`
	PurchaseOrders   int64           `json:"purchaseOrders"`
	SalesOrders      int64           `json:"salesOrders"`
	TotalReceivables float64         `json:"totalReceivables"`
	TotalPayables    float64         `json:"totalPayables"`
	StockAlerts      []StockAlertDTO `json:"stockAlerts"`
	RecentOrders     []OrderDTO      `json:"recentOrders"`
}

// Conversion functions

func toLineTotalsDTO(t domain.LineTotals) LineTotalsDTO {
	return LineTotalsDTO{
		AmountExclTax: domain.Round2(t.AmountExclTax),
		TaxAmount:     domain.Round2(t.TaxAmount),
		AmountInclTax: domain.Round2(t.AmountInclTax),
		Shipping:      domain.Round2(t.Shipping),
		Total:         domain.Round2(t.Total),
	}
}

// ToOrderDTO converts a domain order to a DTO. All monetary fields are
// rounded to cents here; the aggregate keeps full precision.
func ToOrderDTO(o *domain.Order) *OrderDTO {
	lines := make([]OrderLineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineDTO{
			LineID:         l.LineID,
			ItemID:         l.ItemID,
			ItemName:       l.ItemName,
			Quantity:       l.Quantity,
			UnitCost:       l.UnitCost,
			TaxRatePercent: l.TaxRatePercent,
			Totals:         toLineTotalsDTO(l.Totals),
		}
	}

	return &OrderDTO{
		OrderID:          o.OrderID,
		Kind:             string(o.Kind),
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		OrderDate:        o.OrderDate,
		ReferenceNumber:  o.ReferenceNumber,
		Lines:            lines,
		AmountExclTax:    domain.Round2(o.Totals.AmountExclTax),
		TaxAmount:        domain.Round2(o.Totals.TaxAmount),
		AmountInclTax:    domain.Round2(o.Totals.AmountInclTax),
		Shipping:         domain.Round2(o.Totals.Shipping),
		GrandTotal:       domain.Round2(o.Totals.GrandTotal),
		AmountSettled:    domain.Round2(o.AmountSettled),
		Outstanding:      domain.Round2(o.Outstanding()),
		SettlementStatus: string(o.SettlementStatus),
		Status:           string(o.Status),
		RejectionReason:  o.RejectionReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToPartyDTO converts a domain party to a DTO
func ToPartyDTO(p *domain.Party) *PartyDTO {
	return &PartyDTO{
		PartyID:         p.PartyID,
		Kind:            string(p.Kind),
		Name:            p.Name,
		Phone:           p.Phone,
		Email:           p.Email,
		County:          p.County,
		Town:            p.Town,
		TotalTransacted: domain.Round2(p.TotalTransacted),
		TotalSettled:    domain.Round2(p.TotalSettled),
		Outstanding:     domain.Round2(p.OutstandingBalance()),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToItemDTO converts a domain item to a DTO
func ToItemDTO(i *domain.Item) *ItemDTO {
	c := i.Classification()
	return &ItemDTO{
		ItemID:            i.ItemID,
		Name:              i.Name,
		Type:              i.Type,
		Category:          i.Category,
		Subcategory:       i.Subcategory,
		PurchaseCost:      domain.Round2(i.PurchaseCost),
		SaleCost:          domain.Round2(i.SaleCost),
		QuantityPurchased: i.QuantityPurchased,
		QuantitySold:      i.QuantitySold,
		Remaining:         i.Remaining(),
		ReorderLevel:      i.ReorderLevel,
		ReorderRequired:   c.ReorderRequired,
		LowStock:          c.LowStock,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

// ToStockDTO converts an item's classification to a DTO
func ToStockDTO(i *domain.Item) *StockDTO {
	c := i.Classification()
	return &StockDTO{
		ItemID:          i.ItemID,
		Remaining:       i.Remaining(),
		ReorderLevel:    i.ReorderLevel,
		ReorderRequired: c.ReorderRequired,
		LowStock:        c.LowStock,
	}
}

// ToTransactionDTO converts a domain transaction to a DTO
func ToTransactionDTO(tx *domain.Transaction) *TransactionDTO {
	return &TransactionDTO{
		TransactionID: tx.TransactionID,
		Kind:          string(tx.Kind),
		OrderID:       tx.OrderID,
		PartyID:       tx.PartyID,
		Amount:        domain.Round2(tx.Amount),
		Mode:          tx.Mode,
		Date:          tx.Date,
		Reference:     tx.Reference,
		CreatedAt:     tx.CreatedAt,
	}
}
