// Package container wires the service together with samber/do.
package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SanketN15/url-shortner/internal/analytics"
	analyticsstore "github.com/SanketN15/url-shortner/internal/analytics/store"
	"github.com/SanketN15/url-shortner/internal/handlers"
	"github.com/SanketN15/url-shortner/internal/health"
	"github.com/SanketN15/url-shortner/internal/messaging"
	"github.com/SanketN15/url-shortner/internal/metrics"
	"github.com/SanketN15/url-shortner/internal/middleware"
	"github.com/SanketN15/url-shortner/internal/ratelimit"
	"github.com/SanketN15/url-shortner/internal/shortener"
	"github.com/SanketN15/url-shortner/internal/store"
	"github.com/SanketN15/url-shortner/internal/web"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Names of the two rate limiters.
const (
	WriteLimiter = "write"
	ReadLimiter  = "read"
)

// ConsumerGroupName is the Redis stream consumer group shared by consumer processes.
const ConsumerGroupName = "analytics"

// reservedCodes are path segments served by other routes.
var reservedCodes = []string{"api", "docs", "health", "metrics", "openapi", "schemas", "shorten"}

// RedisClient wraps redis.Client so the injector closes it on shutdown.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the client.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// NewLogger builds a zap logger. format is json or console.
func NewLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = lvl

	return cfg.Build()
}

func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the postgres store. The schema is created before
// the store is handed out.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.PostgresStore, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		pg := store.NewPostgresStore(pool)

		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()

			return nil, err
		}

		logger.Info("postgres schema ready")

		return pg, nil
	})
}

func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*prometheus.Registry, error) {
		return prometheus.NewRegistry(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
	})
}

// RepositoryPackage provides the link repository for the configured backend
// and the shortener service on top of it.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		var repo shortener.Repository

		switch opts.Store {
		case BackendPostgres:
			repo = do.MustInvoke[*store.PostgresStore](i)
		case BackendRedis:
			repo = store.NewRedisStore(do.MustInvoke[*RedisClient](i).Client)
		default:
			repo = store.NewMemoryStore()
		}

		repo = store.NewInstrumentedRepository(repo, m)

		if opts.CacheTTL > 0 {
			repo = store.NewRedisCacheRepository(
				repo,
				do.MustInvoke[*RedisClient](i).Client,
				time.Duration(opts.CacheTTL)*time.Second,
				m,
				do.MustInvoke[*zap.Logger](i),
			)
		}

		return repo, nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		gen, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		serviceOpts := []shortener.Option{
			shortener.WithReservedCodes(reservedCodes...),
			shortener.WithMaxAttempts(opts.MaxAttempts),
			shortener.WithLogger(do.MustInvoke[*zap.Logger](i)),
		}
		if opts.StrictURLs {
			serviceOpts = append(serviceOpts, shortener.WithURLPolicy(shortener.RequireHTTP))
		}

		return shortener.NewService(do.MustInvoke[shortener.Repository](i), gen, serviceOpts...), nil
	})
}

// RateLimitPackage provides the write and read limiters. Writes allow 10 per
// minute, 100 per hour and 500 per day; reads allow 1000 per minute.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RateLimit == BackendRedis {
			return store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).Client), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.ProvideNamed(injector, WriteLimiter, func(i *do.Injector) (ratelimit.Limiter, error) {
		if do.MustInvoke[*Options](i).RateLimit == BackendOff {
			return ratelimit.Unlimited{}, nil
		}

		return ratelimit.NewSlidingWindowLimiter(do.MustInvoke[ratelimit.Store](i), WriteLimiter,
			ratelimit.LimitConfig{Window: time.Minute, Max: 10},
			ratelimit.LimitConfig{Window: time.Hour, Max: 100},
			ratelimit.LimitConfig{Window: 24 * time.Hour, Max: 500},
		), nil
	})

	do.ProvideNamed(injector, ReadLimiter, func(i *do.Injector) (ratelimit.Limiter, error) {
		if do.MustInvoke[*Options](i).RateLimit == BackendOff {
			return ratelimit.Unlimited{}, nil
		}

		return ratelimit.NewSlidingWindowLimiter(do.MustInvoke[ratelimit.Store](i), ReadLimiter,
			ratelimit.LimitConfig{Window: time.Minute, Max: 1000},
		), nil
	})
}

// EventsPackage provides the publisher for link events. With in-memory events
// the same channel also feeds the consumer group.
func EventsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return messaging.NewInMemoryPubSub(messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var publisher message.Publisher

		switch opts.Events {
		case BackendRedis:
			p, err := messaging.NewRedisStreamPublisher(do.MustInvoke[*RedisClient](i).Client, messaging.NewZapLogger(logger))
			if err != nil {
				return nil, err
			}

			publisher = p
		case BackendMemory:
			publisher = do.MustInvoke[*gochannel.GoChannel](i)
		default:
			publisher = messaging.Discard{}
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkVisitedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkVisitedEvent](group.Publisher(), analytics.TopicLinkVisited), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers. Redis stream events
// are counted in Redis; in-memory events are logged.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			subscriber message.Subscriber
			sink       analytics.Store
		)

		switch options.Events {
		case BackendRedis:
			client := do.MustInvoke[*RedisClient](i).Client

			s, err := messaging.NewRedisStreamSubscriber(client, ConsumerGroupName, messaging.NewZapLogger(logger))
			if err != nil {
				return nil, err
			}

			subscriber = s
			sink = analyticsstore.NewRedisCounters(client)
		case BackendMemory:
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
			sink = analyticsstore.NewLog(logger)
		default:
			return nil, fmt.Errorf("events %q have no consumers", options.Events)
		}

		var opts []messaging.ConsumerOption
		if m, err := do.Invoke[*metrics.Metrics](i); err == nil {
			opts = append(opts, messaging.WithEventObserver(m))
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumers(subscriber, sink, logger, opts...)...)

		return group, nil
	})
}

func HealthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*health.Handler, error) {
		opts := do.MustInvoke[*Options](i)
		checks := map[string]health.Checker{}

		if opts.Store == BackendPostgres {
			checks["postgres"] = do.MustInvoke[*store.PostgresStore](i)
		}

		if opts.usesRedis() {
			checks["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		return health.NewHandler(checks), nil
	})
}

// HTTPPackage provides the router, the huma API registered on it and the
// top-level handler with CORS applied.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*handlers.LinkHandler, error) {
		return handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*Options](i).PublicBaseURL(),
			do.MustInvoke[messaging.Publish[analytics.LinkCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.LinkVisitedEvent]](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)

		assets, err := web.Assets(opts.PublicDir)
		if err != nil {
			return nil, err
		}

		router := chi.NewMux()
		router.Use(
			chimw.RequestID,
			chimw.Recoverer,
			middleware.RequestMeta,
			middleware.AccessLog(do.MustInvoke[*zap.Logger](i)),
			middleware.Instrument(do.MustInvoke[*metrics.Metrics](i)),
			web.Static(assets),
		)

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		linkHandler := do.MustInvoke[*handlers.LinkHandler](i)
		write := do.MustInvokeNamed[ratelimit.Limiter](i, WriteLimiter)
		read := do.MustInvokeNamed[ratelimit.Limiter](i, ReadLimiter)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))

		handlers.RegisterAPI(api, linkHandler,
			middleware.HumaRateLimit(api, write, logger),
			middleware.HumaRateLimit(api, read, logger),
		)
		health.RegisterRoutes(api, do.MustInvoke[*health.Handler](i))
		handlers.RegisterPages(router, linkHandler,
			middleware.RateLimit(write, logger),
			middleware.RateLimit(read, logger),
		)
		router.Handle("/metrics", metrics.Handler(do.MustInvoke[*prometheus.Registry](i)))

		return api, nil
	})

	do.Provide(injector, func(i *do.Injector) (http.Handler, error) {
		router := do.MustInvoke[*chi.Mux](i)
		// Invoke API to trigger route registration
		_ = do.MustInvoke[huma.API](i)

		cors := gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(do.MustInvoke[*Options](i).corsOrigins()),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
		)

		return cors(router), nil
	})
}

// Register provides every server package.
func Register(injector *do.Injector, options *Options) {
	do.ProvideValue(injector, options)
	LoggerPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	MetricsPackage(injector)
	RepositoryPackage(injector)
	RateLimitPackage(injector)
	EventsPackage(injector)
	ConsumerGroupPackage(injector)
	HealthPackage(injector)
	HTTPPackage(injector)
}
