package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/pdch/pdch-server/internal/api/http"
	"github.com/pdch/pdch-server/internal/api/http/handlers"
	"github.com/pdch/pdch-server/internal/auth"
	"github.com/pdch/pdch-server/internal/config"
	"github.com/pdch/pdch-server/internal/observability"
	"github.com/pdch/pdch-server/internal/persistence"
	"github.com/pdch/pdch-server/internal/repository"
	"github.com/pdch/pdch-server/internal/service"
)

// store is the set of repositories built for the configured driver.
type store struct {
	users  repository.UserRepository
	docs   func(service.CollectionSpec) repository.DocumentRepository
	pinger handlers.Pinger
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: st.users,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	collection := func(spec service.CollectionSpec) *handlers.DocumentsHandler {
		return handlers.NewDocumentsHandler(service.NewCollectionService(spec, st.docs(spec)))
	}

	metrics := observability.NewMetrics(nil)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			StoreName:   cfg.Store.Driver,
			Store:       st.pinger,
			Redis:       redis,
			Metrics:     metrics,
		}),
		Users:              handlers.NewUsersHandler(authService),
		Supplies:           collection(service.SuppliesCollection),
		CommunityGratitude: collection(service.CommunityGratitudeCollection),
		Testimonials:       collection(service.TestimonialCollection),
		Volunteers:         collection(service.VolunteerCollection),
		AuthMiddleware:     authMiddleware,
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, service.UniqueEmailCollections(), logger); err != nil {
			mongo.Close(context.Background())
			return nil, err
		}
		return &store{
			users: repository.NewMongoUserRepository(mongo.DB),
			docs: func(spec service.CollectionSpec) repository.DocumentRepository {
				return repository.NewMongoDocumentRepository(mongo.DB, spec.Options())
			},
			pinger: mongo,
			close:  func() { mongo.Close(context.Background()) },
		}, nil

	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &store{
			users: repository.NewUserRepository(pool),
			docs: func(spec service.CollectionSpec) repository.DocumentRepository {
				return repository.NewDocumentRepository(pool, spec.Options())
			},
			pinger: pg,
			close:  pg.Close,
		}, nil

	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &store{
			users: repository.NewMemoryUserRepository(),
			docs: func(spec service.CollectionSpec) repository.DocumentRepository {
				return repository.NewMemoryDocumentRepository(spec.Options())
			},
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
