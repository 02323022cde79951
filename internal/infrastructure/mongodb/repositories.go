package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ims-platform/backoffice-service/internal/domain"
	"github.com/ims-platform/backoffice-service/pkg/cloudevents"
	"github.com/ims-platform/backoffice-service/pkg/kafka"
	sharedMongo "github.com/ims-platform/backoffice-service/pkg/mongodb"
	"github.com/ims-platform/backoffice-service/pkg/outbox"
	outboxMongo "github.com/ims-platform/backoffice-service/pkg/outbox/mongodb"
)

// Client is the subset of the instrumented Mongo client the repositories
// depend on.
type Client interface {
	Collection(name string) *sharedMongo.InstrumentedCollection
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error
	RawClient() *sharedMongo.Client
}

// OrderRepository implements domain.OrderRepository. Saves run in a
// transaction that also writes the order's pending domain events to the
// outbox, so state changes and their events commit together.
type OrderRepository struct {
	client       Client
	collection   *sharedMongo.InstrumentedCollection
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(client Client, eventFactory *cloudevents.EventFactory) *OrderRepository {
	collection := client.Collection("orders")
	outboxRepo := outboxMongo.NewOutboxRepository(client.RawClient().Database())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "orderDate", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "counterpartyId", Value: 1},
				{Key: "orderDate", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "settlementStatus", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "lines.itemId", Value: 1}},
		},
	}

	_, _ = collection.Raw().Indexes().CreateMany(ctx, indexes)
	_ = outboxRepo.EnsureIndexes(ctx)

	return &OrderRepository{
		client:       client,
		collection:   collection,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
	}
}

// Save upserts the order and stores its domain events in the outbox within
// one transaction
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		opts := options.Update().SetUpsert(true)
		filter := bson.M{"orderId": order.OrderID}
		update := bson.M{"$set": order}

		if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		outboxEvents, err := buildOutboxEvents(sessCtx, r.eventFactory, order.OrderID, "Order", "order/"+order.OrderID, order.DomainEvents())
		if err != nil {
			return err
		}
		if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
			return fmt.Errorf("failed to save outbox events: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	order.ClearDomainEvents()
	return nil
}

// FindByID retrieves an order by ID
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindByKind retrieves orders of a kind, newest first
func (r *OrderRepository) FindByKind(ctx context.Context, kind domain.OrderKind, pagination domain.Pagination) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, bson.M{"kind": kind}, opts)
}

// FindByCounterparty retrieves orders for a customer or supplier
func (r *OrderRepository) FindByCounterparty(ctx context.Context, counterpartyID string, pagination domain.Pagination) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, bson.M{"counterpartyId": counterpartyID}, opts)
}

// FindByFilter retrieves orders matching a filter
func (r *OrderRepository) FindByFilter(ctx context.Context, filter domain.OrderFilter, pagination domain.Pagination) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, buildOrderFilter(filter), opts)
}

// CountOpenByItem counts non-rejected orders holding a line for the item
func (r *OrderRepository) CountOpenByItem(ctx context.Context, itemID string) (int64, error) {
	filter := bson.M{
		"lines.itemId": itemID,
		"status":       bson.M{"$ne": domain.OrderStatusRejected},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// Count returns the number of orders matching the filter
func (r *OrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildOrderFilter(filter))
}

func (r *OrderRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func buildOrderFilter(filter domain.OrderFilter) bson.M {
	mongoFilter := bson.M{}
	if filter.Kind != nil {
		mongoFilter["kind"] = *filter.Kind
	}
	if filter.CounterpartyID != nil {
		mongoFilter["counterpartyId"] = *filter.CounterpartyID
	}
	if filter.Status != nil {
		mongoFilter["status"] = *filter.Status
	}
	if filter.SettlementStatus != nil {
		mongoFilter["settlementStatus"] = *filter.SettlementStatus
	}
	if filter.FromDate != nil || filter.ToDate != nil {
		dateFilter := bson.M{}
		if filter.FromDate != nil {
			dateFilter["$gte"] = *filter.FromDate
		}
		if filter.ToDate != nil {
			dateFilter["$lte"] = *filter.ToDate
		}
		mongoFilter["orderDate"] = dateFilter
	}
	return mongoFilter
}

// PartyRepository implements domain.PartyRepository
type PartyRepository struct {
	client       Client
	collection   *sharedMongo.InstrumentedCollection
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

// NewPartyRepository creates a new PartyRepository
func NewPartyRepository(client Client, eventFactory *cloudevents.EventFactory) *PartyRepository {
	collection := client.Collection("parties")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "partyId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "name", Value: 1},
			},
		},
	}

	_, _ = collection.Raw().Indexes().CreateMany(ctx, indexes)

	return &PartyRepository{
		client:       client,
		collection:   collection,
		outboxRepo:   outboxMongo.NewOutboxRepository(client.RawClient().Database()),
		eventFactory: eventFactory,
	}
}

// Save upserts a party
func (r *PartyRepository) Save(ctx context.Context, party *domain.Party) error {
	party.UpdatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"partyId": party.PartyID}
	update := bson.M{"$set": party}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// FindByID retrieves a party by ID
func (r *PartyRepository) FindByID(ctx context.Context, partyID string) (*domain.Party, error) {
	var party domain.Party
	err := r.collection.FindOne(ctx, bson.M{"partyId": partyID}).Decode(&party)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &party, nil
}

// FindByKind retrieves parties of a kind ordered by name
func (r *PartyRepository) FindByKind(ctx context.Context, kind domain.PartyKind, pagination domain.Pagination) ([]*domain.Party, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, bson.M{"kind": kind}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parties []*domain.Party
	if err := cursor.All(ctx, &parties); err != nil {
		return nil, err
	}
	return parties, nil
}

// Delete removes a party and records the deletion event in the outbox within
// one transaction. The balance guard has already run in the application layer.
func (r *PartyRepository) Delete(ctx context.Context, partyID string) error {
	return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var party domain.Party
		if err := r.collection.FindOne(sessCtx, bson.M{"partyId": partyID}).Decode(&party); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("party not found: %s", partyID)
			}
			return err
		}

		if _, err := r.collection.DeleteOne(sessCtx, bson.M{"partyId": partyID}); err != nil {
			return fmt.Errorf("failed to delete party: %w", err)
		}

		event := &domain.PartyDeletedEvent{
			PartyID:   party.PartyID,
			Kind:      party.Kind,
			DeletedAt: time.Now().UTC(),
		}

		outboxEvents, err := buildOutboxEvents(sessCtx, r.eventFactory, party.PartyID, "Party", "party/"+party.PartyID, []domain.DomainEvent{event})
		if err != nil {
			return err
		}
		if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
			return fmt.Errorf("failed to save outbox events: %w", err)
		}

		return nil
	})
}

// Count returns the number of parties of a kind
func (r *PartyRepository) Count(ctx context.Context, kind domain.PartyKind) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"kind": kind})
}

// ItemRepository implements domain.ItemRepository
type ItemRepository struct {
	client       Client
	collection   *sharedMongo.InstrumentedCollection
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(client Client, eventFactory *cloudevents.EventFactory) *ItemRepository {
	collection := client.Collection("items")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "itemId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	}

	_, _ = collection.Raw().Indexes().CreateMany(ctx, indexes)

	return &ItemRepository{
		client:       client,
		collection:   collection,
		outboxRepo:   outboxMongo.NewOutboxRepository(client.RawClient().Database()),
		eventFactory: eventFactory,
	}
}

// Save upserts the item and stores any stock alert events in the outbox
// within one transaction
func (r *ItemRepository) Save(ctx context.Context, item *domain.Item) error {
	item.UpdatedAt = time.Now().UTC()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		opts := options.Update().SetUpsert(true)
		filter := bson.M{"itemId": item.ItemID}
		update := bson.M{"$set": item}

		if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}

		outboxEvents, err := buildOutboxEvents(sessCtx, r.eventFactory, item.ItemID, "Item", "item/"+item.ItemID, item.DomainEvents())
		if err != nil {
			return err
		}
		if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
			return fmt.Errorf("failed to save outbox events: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	item.ClearDomainEvents()
	return nil
}

// FindByID retrieves an item by ID
func (r *ItemRepository) FindByID(ctx context.Context, itemID string) (*domain.Item, error) {
	var item domain.Item
	err := r.collection.FindOne(ctx, bson.M{"itemId": itemID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindAll retrieves items ordered by name
func (r *ItemRepository) FindAll(ctx context.Context, pagination domain.Pagination) ([]*domain.Item, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, bson.M{}, opts)
}

// FindBelowReorderLevel retrieves items whose remaining stock sits below the
// low-stock threshold. Remaining stock is derived in the query the same way
// the aggregate derives it.
func (r *ItemRepository) FindBelowReorderLevel(ctx context.Context) ([]*domain.Item, error) {
	filter := bson.M{
		"reorderLevel": bson.M{"$gt": 0},
		"$expr": bson.M{
			"$lt": bson.A{
				bson.M{"$subtract": bson.A{"$quantityPurchased", "$quantitySold"}},
				bson.M{"$multiply": bson.A{"$reorderLevel", domain.LowStockFactor}},
			},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.findMany(ctx, filter, opts)
}

// Delete removes an item. The open-order guard has already run in the
// application layer.
func (r *ItemRepository) Delete(ctx context.Context, itemID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"itemId": itemID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("item not found: %s", itemID)
	}
	return nil
}

// Count returns the number of items
func (r *ItemRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *ItemRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Item, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domain.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// TransactionRepository implements domain.TransactionRepository
type TransactionRepository struct {
	collection *sharedMongo.InstrumentedCollection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(client Client) *TransactionRepository {
	collection := client.Collection("transactions")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transactionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "orderId", Value: 1},
				{Key: "date", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "date", Value: -1},
			},
		},
	}

	_, _ = collection.Raw().Indexes().CreateMany(ctx, indexes)

	return &TransactionRepository{collection: collection}
}

// Save inserts a transaction. Transactions are immutable once recorded.
func (r *TransactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.collection.InsertOne(ctx, tx)
	return err
}

// FindByID retrieves a transaction by ID
func (r *TransactionRepository) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.collection.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindByOrder retrieves transactions against an order in settlement order
func (r *TransactionRepository) FindByOrder(ctx context.Context, orderID string) ([]*domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.findMany(ctx, bson.M{"orderId": orderID}, opts)
}

// FindByKind retrieves transactions of a kind, newest first
func (r *TransactionRepository) FindByKind(ctx context.Context, kind domain.TransactionKind, pagination domain.Pagination) ([]*domain.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, bson.M{"kind": kind}, opts)
}

func (r *TransactionRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Transaction, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*domain.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// ReferenceRepository implements domain.ReferenceRepository
type ReferenceRepository struct {
	collection *sharedMongo.InstrumentedCollection
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(client Client) *ReferenceRepository {
	collection := client.Collection("reference_entries")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "parent", Value: 1},
				{Key: "value", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Raw().Indexes().CreateMany(ctx, indexes)

	return &ReferenceRepository{collection: collection}
}

// FindByKind retrieves all entries of a dimension set
func (r *ReferenceRepository) FindByKind(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
	return r.findMany(ctx, bson.M{"kind": kind})
}

// FindByKindAndParent retrieves entries scoped to a parent value
func (r *ReferenceRepository) FindByKindAndParent(ctx context.Context, kind domain.ReferenceKind, parent string) ([]domain.ReferenceEntry, error) {
	return r.findMany(ctx, bson.M{"kind": kind, "parent": parent})
}

// Save upserts an entry. Duplicate values within a dimension set collapse
// into one document.
func (r *ReferenceRepository) Save(ctx context.Context, entry domain.ReferenceEntry) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"kind": entry.Kind, "parent": entry.Parent, "value": entry.Value}
	update := bson.M{"$set": entry}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *ReferenceRepository) findMany(ctx context.Context, filter bson.M) ([]domain.ReferenceEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "value", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.ReferenceEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// buildOutboxEvents wraps domain events in CloudEvents envelopes routed to
// their topic
func buildOutboxEvents(ctx context.Context, factory *cloudevents.EventFactory, aggregateID, aggregateType, subject string, events []domain.DomainEvent) ([]*outbox.OutboxEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))
	for _, event := range events {
		cloudEvent := factory.CreateEvent(ctx, event.EventType(), subject, event)

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			aggregateID,
			aggregateType,
			kafka.TopicForEventType(event.EventType()),
			cloudEvent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}

	return outboxEvents, nil
}
