package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// TransactionService handles payment and receipt use cases
type TransactionService struct {
	txRepo    domain.TransactionRepository
	orderRepo domain.OrderRepository
	partyRepo domain.PartyRepository
	idGen     domain.IDGenerator
	logger    *logging.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	txRepo domain.TransactionRepository,
	orderRepo domain.OrderRepository,
	partyRepo domain.PartyRepository,
	idGen domain.IDGenerator,
	logger *logging.Logger,
) *TransactionService {
	return &TransactionService{
		txRepo:    txRepo,
		orderRepo: orderRepo,
		partyRepo: partyRepo,
		idGen:     idGen,
		logger:    logger,
	}
}

// RecordTransaction records a payment (against a purchase order) or receipt
// (against a sales order) and applies it to the order and party balances.
// An amount above the order's outstanding balance is refused.
func (s *TransactionService) RecordTransaction(ctx context.Context, kind domain.TransactionKind, cmd CreateTransactionCommand) (*TransactionDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrNotFoundWithID("order", cmd.OrderID)
	}
	if order.Kind != kind.OrderKind() {
		return nil, apperrors.ErrValidation(
			fmt.Sprintf("a %s settles %s orders only", kind, kind.OrderKind()))
	}

	entityKind := domain.EntityKindPayment
	if kind == domain.TransactionKindReceipt {
		entityKind = domain.EntityKindReceipt
	}
	txID, err := s.idGen.NextID(entityKind)
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	tx, err := domain.NewTransaction(txID, kind, cmd.OrderID, order.CounterpartyID,
		cmd.Amount, cmd.Mode, cmd.Date, cmd.Reference)
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.ErrValidationWithFields("transaction validation failed", verrs.Fields())
		}
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := order.ApplySettlement(cmd.Amount); err != nil {
		switch {
		case errors.Is(err, domain.ErrSettlementExceeds):
			return nil, apperrors.ErrBusinessRule(apperrors.ReasonAmountExceedsDue,
				"amount exceeds the order's outstanding balance").
				WithDetail("orderId", cmd.OrderID)
		case errors.Is(err, domain.ErrOrderNotAccepted):
			return nil, apperrors.ErrBusinessRule(apperrors.ReasonInvalidTransition, err.Error())
		default:
			return nil, apperrors.ErrValidation(err.Error())
		}
	}

	party, err := s.partyRepo.FindByID(ctx, order.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load party: %w", err)
	}
	if party != nil {
		party.RecordSettlement(cmd.Amount)
		if err := s.partyRepo.Save(ctx, party); err != nil {
			return nil, fmt.Errorf("failed to save party: %w", err)
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		s.logger.WithError(err).Error("Failed to save transaction", "transactionId", txID)
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info("Transaction recorded",
		"transactionId", txID,
		"kind", kind,
		"orderId", cmd.OrderID,
		"amount", cmd.Amount,
		"settlementStatus", order.SettlementStatus,
	)

	return ToTransactionDTO(tx), nil
}

// GetTransaction retrieves a transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (*TransactionDTO, error) {
	tx, err := s.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, apperrors.ErrNotFoundWithID("transaction", transactionID)
	}
	return ToTransactionDTO(tx), nil
}

// ListTransactions lists transactions of a kind
func (s *TransactionService) ListTransactions(ctx context.Context, kind domain.TransactionKind, pagination domain.Pagination) (*TransactionListResponse, error) {
	if pagination.Page < 1 || pagination.PageSize < 1 {
		pagination = domain.DefaultPagination()
	}

	txs, err := s.txRepo.FindByKind(ctx, kind, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = *ToTransactionDTO(tx)
	}

	return &TransactionListResponse{
		Data:     dtos,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// ListByOrder lists transactions applied to one order
func (s *TransactionService) ListByOrder(ctx context.Context, orderID string) ([]TransactionDTO, error) {
	txs, err := s.txRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = *ToTransactionDTO(tx)
	}
	return dtos, nil
}
