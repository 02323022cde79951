package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ims-platform/backoffice-service/internal/domain"
	mongoRepo "github.com/ims-platform/backoffice-service/internal/infrastructure/mongodb"
	"github.com/ims-platform/backoffice-service/pkg/cloudevents"
	"github.com/ims-platform/backoffice-service/pkg/kafka"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/metrics"
	"github.com/ims-platform/backoffice-service/pkg/mongodb"
	"github.com/ims-platform/backoffice-service/pkg/outbox"
	"github.com/ims-platform/backoffice-service/pkg/tracing"
)

type fakeMongo struct{}

func (f *fakeMongo) Collection(string) *mongodb.InstrumentedCollection { return nil }
func (f *fakeMongo) WithTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	return nil
}
func (f *fakeMongo) RawClient() *mongodb.Client        { return nil }
func (f *fakeMongo) Close(context.Context) error       { return nil }
func (f *fakeMongo) HealthCheck(context.Context) error { return nil }

type fakeProducer struct{}

func (f *fakeProducer) Close() error { return nil }

type fakeOutboxPublisher struct {
	startErr error
	stopErr  error
	started  *bool
	stopped  *bool
}

func (f *fakeOutboxPublisher) Start(context.Context) error {
	if f.started != nil {
		*f.started = true
	}
	return f.startErr
}

func (f *fakeOutboxPublisher) Stop() error {
	if f.stopped != nil {
		*f.stopped = true
	}
	return f.stopErr
}

type fakeOutboxRepo struct{}

func (f *fakeOutboxRepo) SaveAll(context.Context, []*outbox.OutboxEvent) error { return nil }
func (f *fakeOutboxRepo) FindUnpublished(context.Context, int) ([]*outbox.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkPublished(context.Context, string) error          { return nil }
func (f *fakeOutboxRepo) IncrementRetry(context.Context, string, string) error { return nil }
func (f *fakeOutboxRepo) DeletePublished(context.Context, time.Duration) error { return nil }

type fakeOrderRepo struct{}

func (f *fakeOrderRepo) Save(context.Context, *domain.Order) error               { return nil }
func (f *fakeOrderRepo) FindByID(context.Context, string) (*domain.Order, error) { return nil, nil }
func (f *fakeOrderRepo) FindByKind(context.Context, domain.OrderKind, domain.Pagination) ([]*domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) FindByCounterparty(context.Context, string, domain.Pagination) ([]*domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) FindByFilter(context.Context, domain.OrderFilter, domain.Pagination) ([]*domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) CountOpenByItem(context.Context, string) (int64, error)   { return 0, nil }
func (f *fakeOrderRepo) Count(context.Context, domain.OrderFilter) (int64, error) { return 0, nil }

type fakePartyRepo struct{}

func (f *fakePartyRepo) Save(context.Context, *domain.Party) error               { return nil }
func (f *fakePartyRepo) FindByID(context.Context, string) (*domain.Party, error) { return nil, nil }
func (f *fakePartyRepo) FindByKind(context.Context, domain.PartyKind, domain.Pagination) ([]*domain.Party, error) {
	return nil, nil
}
func (f *fakePartyRepo) Delete(context.Context, string) error                   { return nil }
func (f *fakePartyRepo) Count(context.Context, domain.PartyKind) (int64, error) { return 0, nil }

type fakeItemRepo struct{}

func (f *fakeItemRepo) Save(context.Context, *domain.Item) error               { return nil }
func (f *fakeItemRepo) FindByID(context.Context, string) (*domain.Item, error) { return nil, nil }
func (f *fakeItemRepo) FindAll(context.Context, domain.Pagination) ([]*domain.Item, error) {
	return nil, nil
}
func (f *fakeItemRepo) FindBelowReorderLevel(context.Context) ([]*domain.Item, error) {
	return nil, nil
}
func (f *fakeItemRepo) Delete(context.Context, string) error { return nil }
func (f *fakeItemRepo) Count(context.Context) (int64, error) { return 0, nil }

type fakeTransactionRepo struct{}

func (f *fakeTransactionRepo) Save(context.Context, *domain.Transaction) error { return nil }
func (f *fakeTransactionRepo) FindByID(context.Context, string) (*domain.Transaction, error) {
	return nil, nil
}
func (f *fakeTransactionRepo) FindByOrder(context.Context, string) ([]*domain.Transaction, error) {
	return nil, nil
}
func (f *fakeTransactionRepo) FindByKind(context.Context, domain.TransactionKind, domain.Pagination) ([]*domain.Transaction, error) {
	return nil, nil
}

type fakeReferenceRepo struct{}

func (f *fakeReferenceRepo) FindByKind(context.Context, domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
	return nil, nil
}
func (f *fakeReferenceRepo) FindByKindAndParent(context.Context, domain.ReferenceKind, string) ([]domain.ReferenceEntry, error) {
	return nil, nil
}
func (f *fakeReferenceRepo) Save(context.Context, domain.ReferenceEntry) error { return nil }

type seams struct {
	mongo     func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (mongoClient, error)
	producer  func(*kafka.Config, *metrics.Metrics, *logging.Logger) kafkaProducer
	publisher func(outbox.Repository, kafkaProducer, *logging.Logger, *metrics.Metrics, *outbox.PublisherConfig) outboxPublisher
	orders    func(mongoRepo.Client, *cloudevents.EventFactory) domain.OrderRepository
	parties   func(mongoRepo.Client, *cloudevents.EventFactory) domain.PartyRepository
	items     func(mongoRepo.Client, *cloudevents.EventFactory) domain.ItemRepository
	txs       func(mongoRepo.Client) domain.TransactionRepository
	refs      func(mongoRepo.Client) domain.ReferenceRepository
	outboxes  func(mongoRepo.Client) outbox.Repository
	tracing   func(context.Context, *tracing.Config) (*tracing.TracerProvider, error)
	server    func(*http.Server) error
}

func saveSeams() seams {
	return seams{
		mongo:     newMongoClient,
		producer:  newKafkaProducer,
		publisher: newOutboxPublisher,
		orders:    newOrderRepository,
		parties:   newPartyRepository,
		items:     newItemRepository,
		txs:       newTransactionRepository,
		refs:      newReferenceRepository,
		outboxes:  newOutboxRepository,
		tracing:   initTracing,
		server:    startHTTPServer,
	}
}

func restoreSeams(s seams) {
	newMongoClient = s.mongo
	newKafkaProducer = s.producer
	newOutboxPublisher = s.publisher
	newOrderRepository = s.orders
	newPartyRepository = s.parties
	newItemRepository = s.items
	newTransactionRepository = s.txs
	newReferenceRepository = s.refs
	newOutboxRepository = s.outboxes
	initTracing = s.tracing
	startHTTPServer = s.server
}

func installFakeSeams() {
	newMongoClient = func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (mongoClient, error) {
		return &fakeMongo{}, nil
	}
	newKafkaProducer = func(*kafka.Config, *metrics.Metrics, *logging.Logger) kafkaProducer {
		return &fakeProducer{}
	}
	newOutboxPublisher = func(outbox.Repository, kafkaProducer, *logging.Logger, *metrics.Metrics, *outbox.PublisherConfig) outboxPublisher {
		return &fakeOutboxPublisher{}
	}
	newOrderRepository = func(mongoRepo.Client, *cloudevents.EventFactory) domain.OrderRepository {
		return &fakeOrderRepo{}
	}
	newPartyRepository = func(mongoRepo.Client, *cloudevents.EventFactory) domain.PartyRepository {
		return &fakePartyRepo{}
	}
	newItemRepository = func(mongoRepo.Client, *cloudevents.EventFactory) domain.ItemRepository {
		return &fakeItemRepo{}
	}
	newTransactionRepository = func(mongoRepo.Client) domain.TransactionRepository {
		return &fakeTransactionRepo{}
	}
	newReferenceRepository = func(mongoRepo.Client) domain.ReferenceRepository {
		return &fakeReferenceRepo{}
	}
	newOutboxRepository = func(mongoRepo.Client) outbox.Repository {
		return &fakeOutboxRepo{}
	}
	initTracing = func(context.Context, *tracing.Config) (*tracing.TracerProvider, error) {
		return nil, nil
	}
	startHTTPServer = func(*http.Server) error { return http.ErrServerClosed }
}

func TestRunSuccess(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)
	installFakeSeams()

	started := false
	stopped := false
	newOutboxPublisher = func(outbox.Repository, kafkaProducer, *logging.Logger, *metrics.Metrics, *outbox.PublisherConfig) outboxPublisher {
		return &fakeOutboxPublisher{started: &started, stopped: &stopped}
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestRunTracingError(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)
	installFakeSeams()

	initTracing = func(context.Context, *tracing.Config) (*tracing.TracerProvider, error) {
		return nil, errors.New("trace init failed")
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	// Tracing failure degrades to no tracing, it never stops the service.
	err := run(context.Background(), signalCh)
	require.NoError(t, err)
}

func TestRunMongoError(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)
	installFakeSeams()

	newMongoClient = func(context.Context, *mongodb.Config, *metrics.Metrics, *logging.Logger) (mongoClient, error) {
		return nil, errors.New("mongo error")
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	assert.Error(t, err)
}

func TestRunOutboxStartError(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)
	installFakeSeams()

	newOutboxPublisher = func(outbox.Repository, kafkaProducer, *logging.Logger, *metrics.Metrics, *outbox.PublisherConfig) outboxPublisher {
		return &fakeOutboxPublisher{startErr: errors.New("start failed")}
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	assert.Error(t, err)
}

func TestRunServerErrorLogged(t *testing.T) {
	saved := saveSeams()
	defer restoreSeams(saved)
	installFakeSeams()

	// run must capture the server seam before spawning its goroutine and
	// drain that goroutine before returning, so the seam installed here is
	// never invoked by a goroutine leaked from an earlier run.
	var serverCalls int32
	serverCalled := make(chan struct{})
	startHTTPServer = func(*http.Server) error {
		if atomic.AddInt32(&serverCalls, 1) == 1 {
			close(serverCalled)
		}
		return errors.New("server failed")
	}

	signalCh := make(chan os.Signal, 1)
	go func() {
		<-serverCalled
		signalCh <- os.Interrupt
	}()

	err := run(context.Background(), signalCh)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&serverCalls))
}
