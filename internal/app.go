// internal/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	router "finflow-ledger/internal/api"
	"finflow-ledger/internal/api/handler"
	"finflow-ledger/internal/config"
	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/ledger"
	"finflow-ledger/internal/publisher"
	"finflow-ledger/internal/repository"
	"finflow-ledger/internal/repository/file"
	"finflow-ledger/internal/repository/memory"
	"finflow-ledger/internal/repository/postgres"
	redisrepo "finflow-ledger/internal/repository/redis"
	"finflow-ledger/internal/service"
	"finflow-ledger/internal/util"
	"finflow-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *goredis.Client

	// Core
	Ledger *ledger.Ledger

	// Persistence and event fan-out, both optional
	SnapshotStore repository.SnapshotStore
	Snapshotter   *service.Snapshotter
	Publisher     *publisher.Publisher

	// Services
	TransferService service.TransferService
	ProfileService  *service.ProfileService

	// HTTP API
	HTTPHandler http.Handler

	cancelWorkers context.CancelFunc
	workers       sync.WaitGroup
	unsubscribe   []func()
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		app.Logger = util.GetLogger()
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Open the snapshot store and restore the last saved ledger
	if err := app.initSnapshotStore(ctx); err != nil {
		return err
	}
	state, err := app.initialState(ctx)
	if err != nil {
		return err
	}

	// 4. Build the ledger
	app.Ledger = ledger.New(
		ledger.WithStartingBalance(cfg.StartingBalance),
		ledger.WithState(state),
		ledger.WithLogger(app.Logger),
	)
	app.Logger.Info("Ledger initialized.", "users", len(state))

	// 5. Background workers driven by ledger events
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app.cancelWorkers = cancel
	if app.SnapshotStore != nil {
		app.Snapshotter = service.NewSnapshotter(app.Ledger, app.SnapshotStore, app.Logger)
		app.startWorker(func() { app.Snapshotter.Run(workerCtx) })
	}
	if err := app.initPublisher(); err != nil {
		return err
	}
	if app.Publisher != nil {
		app.unsubscribe = append(app.unsubscribe, app.Ledger.Subscribe(app.Publisher.Listener()))
		app.startWorker(func() { app.Publisher.Run(workerCtx) })
	}

	// 6. Initialize Services
	var recipients service.RecipientValidator = service.NewAllowList(ledger.DemoIdentities()...)
	if cfg.RecipientPolicy == config.RecipientPolicyLedger {
		recipients = app.Ledger
	}
	app.TransferService = service.NewTransferService(app.Ledger, recipients, app.Logger)
	app.ProfileService = service.NewProfileService(app.Ledger)
	app.Logger.Info("Services initialized.", "recipient_policy", cfg.RecipientPolicy)

	// 7. Initialize HTTP Handlers and Router
	bankingHandler := handler.NewBankingHandler(app.Ledger, app.TransferService, app.ProfileService, app.Logger)
	app.HTTPHandler = router.NewRouter(bankingHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) initSnapshotStore(ctx context.Context) error {
	cfg := app.Config
	switch cfg.Snapshot.Backend {
	case config.SnapshotMemory:
		app.SnapshotStore = memory.NewSnapshotRepository()
	case config.SnapshotFile:
		app.SnapshotStore = file.NewSnapshotRepository(cfg.Snapshot.File)
	case config.SnapshotPostgres:
		database, err := db.NewPostgresDB(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = database
		repo := postgres.NewSnapshotRepository(app.DB, cfg.Snapshot.Name)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		app.SnapshotStore = repo
		app.Logger.Info("Database connection established.")
	case config.SnapshotRedis:
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Redis = client
		app.SnapshotStore = redisrepo.NewSnapshotRepository(app.Redis, cfg.Snapshot.Name)
		app.Logger.Info("Redis connection established.")
	default:
		return nil
	}
	app.Logger.Info("Snapshot store selected.", "backend", cfg.Snapshot.Backend)
	return nil
}

// initialState prefers a saved snapshot, then the demo seed, then an empty ledger.
func (app *Application) initialState(ctx context.Context) (domain.LedgerState, error) {
	if app.SnapshotStore != nil {
		state, err := app.SnapshotStore.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
		}
		if len(state) > 0 {
			app.Logger.Info("Ledger restored from snapshot.", "users", len(state))
			return state, nil
		}
	}
	if app.Config.SeedDemoUsers {
		return ledger.DemoState(), nil
	}
	return domain.LedgerState{}, nil
}

func (app *Application) initPublisher() error {
	events := app.Config.Events
	var sink publisher.Sink
	switch events.Broker {
	case config.BrokerKafka:
		sink = publisher.NewKafkaSink(publisher.NewKafkaWriter(events.KafkaBrokers, events.KafkaTopic))
	case config.BrokerAMQP:
		amqpSink, err := publisher.DialAMQP(events.AMQPURL, events.AMQPExchange)
		if err != nil {
			return err
		}
		sink = amqpSink
	default:
		return nil
	}
	app.Publisher = publisher.New(sink, events.BufferSize, app.Logger)
	app.Logger.Info("Event publisher initialized.", "broker", events.Broker)
	return nil
}

func (app *Application) startWorker(run func()) {
	app.workers.Add(1)
	go func() {
		defer app.workers.Done()
		run()
	}()
}

// Shutdown gracefully shuts down application resources.
// Pending snapshots and events are flushed before connections are closed.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	for _, unsubscribe := range app.unsubscribe {
		unsubscribe()
	}
	if app.Snapshotter != nil {
		app.Snapshotter.Close()
	}
	if app.cancelWorkers != nil {
		app.cancelWorkers()
	}

	done := make(chan struct{})
	go func() {
		app.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		app.Logger.Warn("Background workers did not stop in time", "error", ctx.Err())
	}

	var errs []error
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
			errs = append(errs, fmt.Errorf("failed to close redis connection: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		} else {
			app.Logger.Info("Database connection closed.")
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
