package application

import (
	"context"
	"fmt"

	"github.com/ims-platform/backoffice-service/internal/domain"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

const recentOrdersLimit = 5

// DashboardService assembles the landing-page summary: entity counts,
// receivables and payables, stock alerts and the most recent orders.
type DashboardService struct {
	orderRepo domain.OrderRepository
	partyRepo domain.PartyRepository
	itemRepo  domain.ItemRepository
	logger    *logging.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	orderRepo domain.OrderRepository,
	partyRepo domain.PartyRepository,
	itemRepo domain.ItemRepository,
	logger *logging.Logger,
) *DashboardService {
	return &DashboardService{
		orderRepo: orderRepo,
		partyRepo: partyRepo,
		itemRepo:  itemRepo,
		logger:    logger,
	}
}

// GetDashboard builds the dashboard summary
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardDTO, error) {
	customers, err := s.partyRepo.Count(ctx, domain.PartyKindCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	suppliers, err := s.partyRepo.Count(ctx, domain.PartyKindSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}
	items, err := s.itemRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	purchaseKind := domain.OrderKindPurchase
	purchaseOrders, err := s.orderRepo.Count(ctx, domain.OrderFilter{Kind: &purchaseKind})
	if err != nil {
		return nil, fmt.Errorf("failed to count purchase orders: %w", err)
	}
	saleKind := domain.OrderKindSale
	salesOrders, err := s.orderRepo.Count(ctx, domain.OrderFilter{Kind: &saleKind})
	if err != nil {
		return nil, fmt.Errorf("failed to count sales orders: %w", err)
	}

	receivables, err := s.sumOutstanding(ctx, domain.PartyKindCustomer)
	if err != nil {
		return nil, err
	}
	payables, err := s.sumOutstanding(ctx, domain.PartyKindSupplier)
	if err != nil {
		return nil, err
	}

	alerts, err := s.stockAlerts(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.recentOrders(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardDTO{
		Customers:        customers,
		Suppliers:        suppliers,
		Items:            items,
		PurchaseOrders:   purchaseOrders,
		SalesOrders:      salesOrders,
		TotalReceivables: domain.Round2(receivables),
		TotalPayables:    domain.Round2(payables),
		StockAlerts:      alerts,
		RecentOrders:     recent,
	}, nil
}

func (s *DashboardService) sumOutstanding(ctx context.Context, kind domain.PartyKind) (float64, error) {
	pagination := domain.Pagination{Page: 1, PageSize: 500}
	var total float64
	for {
		parties, err := s.partyRepo.FindByKind(ctx, kind, pagination)
		if err != nil {
			return 0, fmt.Errorf("failed to list %ss: %w", kind, err)
		}
		for _, p := range parties {
			total += p.OutstandingBalance()
		}
		if int64(len(parties)) < pagination.PageSize {
			return total, nil
		}
		pagination.Page++
	}
}

func (s *DashboardService) stockAlerts(ctx context.Context) ([]StockAlertDTO, error) {
	// The repository pre-filters on the reorder threshold; the low-stock band
	// above it is classified here.
	items, err := s.itemRepo.FindBelowReorderLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock alerts: %w", err)
	}

	alerts := make([]StockAlertDTO, 0, len(items))
	for _, item := range items {
		c := item.Classification()
		severity := c.Severity()
		if severity == "" {
			continue
		}
		alerts = append(alerts, StockAlertDTO{
			ItemID:       item.ItemID,
			Name:         item.Name,
			Remaining:    item.Remaining(),
			ReorderLevel: item.ReorderLevel,
			Severity:     severity,
		})
	}
	return alerts, nil
}

func (s *DashboardService) recentOrders(ctx context.Context) ([]OrderDTO, error) {
	orders, err := s.orderRepo.FindByFilter(ctx, domain.OrderFilter{},
		domain.Pagination{Page: 1, PageSize: recentOrdersLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = *ToOrderDTO(o)
	}
	return dtos, nil
}
