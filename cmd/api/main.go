package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ims-platform/backoffice-service/internal/api/handlers"
	"github.com/ims-platform/backoffice-service/internal/application"
	"github.com/ims-platform/backoffice-service/internal/domain"
	mongoRepo "github.com/ims-platform/backoffice-service/internal/infrastructure/mongodb"
	"github.com/ims-platform/backoffice-service/pkg/cloudevents"
	"github.com/ims-platform/backoffice-service/pkg/kafka"
	"github.com/ims-platform/backoffice-service/pkg/logging"
	"github.com/ims-platform/backoffice-service/pkg/metrics"
	"github.com/ims-platform/backoffice-service/pkg/middleware"
	"github.com/ims-platform/backoffice-service/pkg/mongodb"
	"github.com/ims-platform/backoffice-service/pkg/outbox"
	outboxMongo "github.com/ims-platform/backoffice-service/pkg/outbox/mongodb"
	"github.com/ims-platform/backoffice-service/pkg/tracing"
)

const serviceName = "backoffice-service"

type mongoClient interface {
	mongoRepo.Client
	Close(context.Context) error
	HealthCheck(context.Context) error
}

type kafkaProducer interface {
	Close() error
}

type outboxPublisher interface {
	Start(context.Context) error
	Stop() error
}

var newMongoClient = func(ctx context.Context, cfg *mongodb.Config, m *metrics.Metrics, logger *logging.Logger) (mongoClient, error) {
	client, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return mongodb.NewInstrumentedClient(client, m, logger), nil
}

var newOrderRepository = func(client mongoRepo.Client, eventFactory *cloudevents.EventFactory) domain.OrderRepository {
	return mongoRepo.NewOrderRepository(client, eventFactory)
}

var newPartyRepository = func(client mongoRepo.Client, eventFactory *cloudevents.EventFactory) domain.PartyRepository {
	return mongoRepo.NewPartyRepository(client, eventFactory)
}

var newItemRepository = func(client mongoRepo.Client, eventFactory *cloudevents.EventFactory) domain.ItemRepository {
	return mongoRepo.NewItemRepository(client, eventFactory)
}

var newTransactionRepository = func(client mongoRepo.Client) domain.TransactionRepository {
	return mongoRepo.NewTransactionRepository(client)
}

var newReferenceRepository = func(client mongoRepo.Client) domain.ReferenceRepository {
	return mongoRepo.NewReferenceRepository(client)
}

var newOutboxRepository = func(client mongoRepo.Client) outbox.Repository {
	return outboxMongo.NewOutboxRepository(client.RawClient().Database())
}

var newKafkaProducer = func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) kafkaProducer {
	return kafka.NewInstrumentedProducer(kafka.NewProducer(cfg), m, logger)
}

var newOutboxPublisher = func(repo outbox.Repository, producer kafkaProducer, logger *logging.Logger, m *metrics.Metrics, cfg *outbox.PublisherConfig) outboxPublisher {
	return outbox.NewPublisher(repo, producer.(*kafka.InstrumentedProducer), logger, m, cfg)
}

var newMetrics = metrics.New

var initTracing = tracing.Initialize

var startHTTPServer = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting backoffice-service API")

	config := loadConfig()

	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := initTracing(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	m := newMetrics(metrics.DefaultConfig(serviceName))

	client, err := newMongoClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	defer client.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := newKafkaProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceBackoffice)

	orderRepo := newOrderRepository(client, eventFactory)
	partyRepo := newPartyRepository(client, eventFactory)
	itemRepo := newItemRepository(client, eventFactory)
	txRepo := newTransactionRepository(client)
	refRepo := newReferenceRepository(client)
	outboxRepo := newOutboxRepository(client)

	publisher := newOutboxPublisher(outboxRepo, producer, logger, m, &outbox.PublisherConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
	})
	if err := publisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		return err
	}
	defer func() {
		if err := publisher.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to stop outbox publisher")
		}
	}()
	logger.Info("Outbox publisher started")

	idGen := domain.NewUUIDGenerator()

	idService := application.NewIDService(idGen, logger)
	refService := application.NewReferenceService(refRepo, logger)
	partyService := application.NewPartyService(partyRepo, idGen, logger)
	itemService := application.NewItemService(itemRepo, orderRepo, idGen, logger)
	orderService := application.NewOrderService(orderRepo, partyRepo, itemRepo, idGen, logger)
	txService := application.NewTransactionService(txRepo, orderRepo, partyRepo, idGen, logger)
	dashService := application.NewDashboardService(orderRepo, partyRepo, itemRepo, logger)

	idHandler := handlers.NewIDHandler(idService, logger)
	refHandler := handlers.NewReferenceHandler(refService, logger)
	customerHandler := handlers.NewPartyHandler(partyService, domain.PartyKindCustomer, logger)
	supplierHandler := handlers.NewPartyHandler(partyService, domain.PartyKindSupplier, logger)
	itemHandler := handlers.NewItemHandler(itemService, logger, m)
	orderHandler := handlers.NewOrderHandler(orderService, txService, logger, m)
	paymentHandler := handlers.NewTransactionHandler(txService, domain.TransactionKindPayment, logger, m)
	receiptHandler := handlers.NewTransactionHandler(txService, domain.TransactionKindReceipt, logger, m)
	dashHandler := handlers.NewDashboardHandler(dashService, logger)

	router := gin.New()

	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(middleware.DefaultTracingConfig(serviceName)))

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return client.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/ids", idHandler.GenerateID)

		reference := v1.Group("/reference")
		{
			reference.GET("/:kind", refHandler.ListEntries)
			reference.POST("/:kind", refHandler.AddEntry)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", customerHandler.CreateParty)
			customers.GET("", customerHandler.ListParties)
			customers.GET("/:partyId", customerHandler.GetParty)
			customers.PUT("/:partyId", customerHandler.UpdateParty)
			customers.DELETE("/:partyId", customerHandler.DeleteParty)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.POST("", supplierHandler.CreateParty)
			suppliers.GET("", supplierHandler.ListParties)
			suppliers.GET("/:partyId", supplierHandler.GetParty)
			suppliers.PUT("/:partyId", supplierHandler.UpdateParty)
			suppliers.DELETE("/:partyId", supplierHandler.DeleteParty)
		}

		items := v1.Group("/items")
		{
			items.POST("", itemHandler.CreateItem)
			items.GET("", itemHandler.ListItems)
			items.GET("/:itemId", itemHandler.GetItem)
			items.GET("/:itemId/stock", itemHandler.GetStock)
			items.PUT("/:itemId/reorder-level", itemHandler.UpdateReorderLevel)
			items.DELETE("/:itemId", itemHandler.DeleteItem)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.SubmitOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:orderId", orderHandler.GetOrder)
			orders.PUT("/:orderId/accept", orderHandler.AcceptOrder)
			orders.PUT("/:orderId/reject", orderHandler.RejectOrder)
			orders.GET("/:orderId/transactions", orderHandler.ListOrderTransactions)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.RecordTransaction)
			payments.GET("", paymentHandler.ListTransactions)
			payments.GET("/:transactionId", paymentHandler.GetTransaction)
		}

		receipts := v1.Group("/receipts")
		{
			receipts.POST("", receiptHandler.RecordTransaction)
			receipts.GET("", receiptHandler.ListTransactions)
			receipts.GET("/:transactionId", receiptHandler.GetTransaction)
		}

		v1.GET("/dashboard", dashHandler.GetDashboard)
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serve := startHTTPServer
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		if err := serve(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	<-serverDone

	logger.Info("Server stopped")
	return nil
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "backoffice"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
