package application

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ims-platform/backoffice-service/internal/domain"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

type fakeOrderRepo struct {
	saveFn            func(context.Context, *domain.Order) error
	findByIDFn        func(context.Context, string) (*domain.Order, error)
	findByKindFn      func(context.Context, domain.OrderKind, domain.Pagination) ([]*domain.Order, error)
	findByPartyFn     func(context.Context, string, domain.Pagination) ([]*domain.Order, error)
	findByFilterFn    func(context.Context, domain.OrderFilter, domain.Pagination) ([]*domain.Order, error)
	countOpenByItemFn func(context.Context, string) (int64, error)
	countFn           func(context.Context, domain.OrderFilter) (int64, error)
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
	if f.findByKindFn != nil {
		return f.findByKindFn(ctx, kind, pagination)
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindByCounterparty(ctx context.Context, counterpartyID string, pagination domain.Pagination) ([]*domain.Order, error) {
	if f.findByPartyFn != nil {
		return f.findByPartyFn(ctx, counterpartyID, pagination)
	}
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
	if f.countFn != nil {
		return f.countFn(ctx, filter)
	}
	return 0, nil
}

type fakePartyRepo struct {
	saveFn       func(context.Context, *domain.Party) error
	findByIDFn   func(context.Context, string) (*domain.Party, error)
	findByKindFn func(context.Context, domain.PartyKind, domain.Pagination) ([]*domain.Party, error)
	deleteFn     func(context.Context, string) error
	countFn      func(context.Context, domain.PartyKind) (int64, error)
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
	if f.findByKindFn != nil {
		return f.findByKindFn(ctx, kind, pagination)
	}
	return nil, nil
}

func (f *fakePartyRepo) Delete(ctx context.Context, partyID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, partyID)
	}
	return nil
}

func (f *fakePartyRepo) Count(ctx context.Context, kind domain.PartyKind) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, kind)
	}
	return 0, nil
}

type fakeItemRepo struct {
	saveFn      func(context.Context, *domain.Item) error
	findByIDFn  func(context.Context, string) (*domain.Item, error)
	findAllFn   func(context.Context, domain.Pagination) ([]*domain.Item, error)
	findBelowFn func(context.Context) ([]*domain.Item, error)
	deleteFn    func(context.Context, string) error
	countFn     func(context.Context) (int64, error)
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
	if f.findAllFn != nil {
		return f.findAllFn(ctx, pagination)
	}
	return nil, nil
}

func (f *fakeItemRepo) FindBelowReorderLevel(ctx context.Context) ([]*domain.Item, error) {
	if f.findBelowFn != nil {
		return f.findBelowFn(ctx)
	}
	return nil, nil
}

func (f *fakeItemRepo) Delete(ctx context.Context, itemID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, itemID)
	}
	return nil
}

func (f *fakeItemRepo) Count(ctx context.Context) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return 0, nil
}

type fakeTransactionRepo struct {
	saveFn        func(context.Context, *domain.Transaction) error
	findByIDFn    func(context.Context, string) (*domain.Transaction, error)
	findByOrderFn func(context.Context, string) ([]*domain.Transaction, error)
	findByKindFn  func(context.Context, domain.TransactionKind, domain.Pagination) ([]*domain.Transaction, error)
}

func (f *fakeTransactionRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, tx)
	}
	return nil
}

func (f *fakeTransactionRepo) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, transactionID)
	}
	return nil, nil
}

func (f *fakeTransactionRepo) FindByOrder(ctx context.Context, orderID string) ([]*domain.Transaction, error) {
	if f.findByOrderFn != nil {
		return f.findByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeTransactionRepo) FindByKind(ctx context.Context, kind domain.TransactionKind, pagination domain.Pagination) ([]*domain.Transaction, error) {
	if f.findByKindFn != nil {
		return f.findByKindFn(ctx, kind, pagination)
	}
	return nil, nil
}

type fakeReferenceRepo struct {
	findByKindFn func(context.Context, domain.ReferenceKind) ([]domain.ReferenceEntry, error)
	findByParent func(context.Context, domain.ReferenceKind, string) ([]domain.ReferenceEntry, error)
	saveFn       func(context.Context, domain.ReferenceEntry) error
}

func (f *fakeReferenceRepo) FindByKind(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
	if f.findByKindFn != nil {
		return f.findByKindFn(ctx, kind)
	}
	return nil, nil
}

func (f *fakeReferenceRepo) FindByKindAndParent(ctx context.Context, kind domain.ReferenceKind, parent string) ([]domain.ReferenceEntry, error) {
	if f.findByParent != nil {
		return f.findByParent(ctx, kind, parent)
	}
	return nil, nil
}

func (f *fakeReferenceRepo) Save(ctx context.Context, entry domain.ReferenceEntry) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, entry)
	}
	return nil
}

// seqIDGenerator issues deterministic identifiers so tests can assert on them.
type seqIDGenerator struct {
	n atomic.Int64
}

func (g *seqIDGenerator) NextID(kind domain.EntityKind) (string, error) {
	return fmt.Sprintf("%s-%03d", kind, g.n.Add(1)), nil
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("backoffice-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}
