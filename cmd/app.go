package cmd

import (
	"context"
	"fmt"

	"gambler/challenge-service/application"
	"gambler/challenge-service/config"
	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/services"
	"gambler/challenge-service/infrastructure"
	"gambler/challenge-service/infrastructure/observability"
	"gambler/challenge-service/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// app holds every long-lived component the server and the CLI commands share
type app struct {
	config        *config.Config
	db            *database.DB
	natsClient    *infrastructure.NATSClient
	redisClient   *redis.Client
	publisher     *infrastructure.NATSEventPublisher
	metrics       *observability.MetricsProvider
	challenges    interfaces.ChallengeService
	results       interfaces.ResultService
	ratings       interfaces.RatingService
	wallet        interfaces.WalletService
	notifications *application.NotificationHandler
	expiryWorker  *application.ExpiryWorker
}

// newApp connects to the backing services and wires the domain together
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{config: cfg}

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	log.Println("Database connection established successfully")

	// Initialize metrics
	log.Println("Initializing metrics...")
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.Printf("Failed to initialize metrics, continuing without them: %v", err)
	}
	a.metrics = observability.GetMetrics()

	// Initialize event publisher
	mapper := infrastructure.NewEventSubjectMapper()
	if cfg.NATSEnabled {
		log.Printf("Connecting to NATS at %s...", cfg.NATSServers)
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.natsClient = natsClient

		if err := natsClient.EnsureStream(infrastructure.ChallengeEventStream, mapper.GetAllSubjects()); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		a.publisher = infrastructure.NewNATSEventPublisher(natsClient, mapper)
		log.Println("NATS event publisher initialized successfully")
	} else {
		log.Println("NATS disabled, events are only delivered to local handlers")
		a.publisher = infrastructure.NewNATSEventPublisher(nil, mapper)
	}
	a.publisher.RegisterLocalHandlerForAll(a.metrics.HandleEvent)

	// Initialize notification inbox
	if cfg.RedisAddr != "" {
		log.Printf("Connecting to Redis at %s...", cfg.RedisAddr)
		rdb, err := infrastructure.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, notifications disabled: %v", err)
		} else {
			a.redisClient = rdb
			a.notifications = application.NewNotificationHandler(infrastructure.NewRedisInbox(rdb, cfg.InboxMaxItems))
			application.RegisterApplicationSubscriptions(a.publisher, a.notifications)
			log.Println("Notification inbox initialized successfully")
		}
	}

	// Initialize services
	log.Println("Initializing services...")
	accountRepo := repository.NewAccountRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	escrow := services.NewEscrowService(accountRepo, ledgerRepo, a.publisher)
	a.ratings = services.NewRatingService(ratingRepo, a.publisher)
	a.challenges = services.NewChallengeService(challengeRepo, accountRepo, escrow, a.ratings, a.publisher)
	a.results = services.NewResultService(challengeRepo, escrow, a.ratings, a.publisher)

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, a.publisher)
	payments := infrastructure.NewSimulatedPaymentProcessor(cfg.PaymentSuccessRate, cfg.PaymentDelay)
	a.wallet = application.NewWalletHandler(uowFactory, payments)

	a.expiryWorker = application.NewExpiryWorker(challengeRepo, a.challenges, a.metrics)
	log.Println("Services initialized successfully")

	return a, nil
}

// close releases every connection the app opened
func (a *app) close() {
	if a.natsClient != nil {
		if err := a.natsClient.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics: %v", err)
	}

	if a.db != nil {
		log.Println("Closing database connection...")
		a.db.Close()
	}
}
