package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/assist"
	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	catalogpg "github.com/utafrali/storefront/internal/catalog/postgres"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/render"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/storage/memory"
	redisstore "github.com/utafrali/storefront/internal/storage/redis"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ServiceName identifies the storefront in logs, traces and events.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	events         *event.Publisher
	shutdownTracer func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, version string, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	// Tracing.
	a.shutdownTracer, err = tracing.Init(ctx, ServiceName, version, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler := health.NewHandler()

	// Catalog database.
	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := prometheus.Register(database.NewPoolCollector(database.StatsFromPool(a.pool))); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}
	catalogRepo := catalogpg.NewRepository(a.pool, logger)
	if cfg.Postgres.Migrate {
		if err := catalogRepo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate catalog schema: %w", err)
		}
	}
	catalogService := catalog.NewService(catalogRepo, logger)
	healthHandler.Register("postgres", catalogService.Ping)

	// Shopper storage.
	provider, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	healthHandler.Register("storage", provider.Ping)
	sessions := session.NewManager(provider, cfg.ShippingCost)

	// Events.
	var orders checkout.Publisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.events = event.NewPublisher(a.producer, logger)
		orders = a.events
		sessions.OnCartChange(func(sessionID string) cart.Listener {
			return a.events.CartListener(sessionID, nil)
		})
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}

	// AI collaborators.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.AITimeout
	tags := assist.NewTags(
		httpclient.NewBreakerClient(httpclient.New(clientCfg), httpclient.DefaultBreakerConfig("ai-tags"), logger),
		cfg.AITagsURL, logger)
	images := assist.NewImages(
		httpclient.NewBreakerClient(httpclient.New(clientCfg), httpclient.DefaultBreakerConfig("ai-image"), logger),
		cfg.AIImageURL, cfg.AIFallbackImage, logger)

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Catalogs:  catalogService,
		Sessions:  sessions,
		Assembler: checkout.NewAssembler(logger, orders),
		Renderer:  renderer,
		Tags:      tags,
		Images:    images,
		Health:    healthHandler,
		Cookie: session.CookieConfig{
			Secure: cfg.SessionCookieSecure,
			MaxAge: cfg.LocalStorageTTL(),
		},
		Currency:          cfg.CurrencySymbol,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		AssistRPS:         cfg.AIRateLimitRPS,
		AssistBurst:       cfg.AIRateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.AITimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

// newRenderer builds the order renderer, loading PDF font overrides from
// disk when configured.
func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	var regular, bold []byte
	for _, f := range []struct {
		path string
		dst  *[]byte
	}{{cfg.PDFFontRegular, &regular}, {cfg.PDFFontBold, &bold}} {
		if f.path == "" {
			continue
		}
		b, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("read pdf font: %w", err)
		}
		*f.dst = b
	}
	return render.New(
		render.WithCurrency(cfg.CurrencySymbol),
		render.WithShopName(cfg.ShopName),
		render.WithShareBaseURL(cfg.ShareBaseURL),
		render.WithSharePhone(cfg.SharePhone),
		render.WithFonts(regular, bold),
	), nil
}

func (a *App) openStorage(ctx context.Context) (storage.Provider, error) {
	if a.cfg.StorageDriver == config.StorageMemory {
		a.logger.Warn("using in-memory shopper storage; carts are lost on restart")
		return memory.NewProvider(), nil
	}

	rdb, err := database.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.Redis.Addr),
		slog.Int("db", a.cfg.Redis.DB),
	)
	return redisstore.NewProvider(rdb, a.cfg.LocalStorageTTL(), a.cfg.SessionStorageTTL()), nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.close()

	a.logger.Info("application shutdown complete")
	return nil
}

// close releases every client that was opened.
func (a *App) close() {
	if a.events != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.events.Drain(ctx); err != nil {
			a.logger.Error("event drain error", slog.String("error", err.Error()))
		}
		cancel()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
