package todo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mileusna/useragent"
	"github.com/oklog/ulid/v2"
	prometheusSDK "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/go-arrower/todo/alog"
	"github.com/go-arrower/todo/postgres"
)

var ErrMissingDependency = errors.New("missing dependency")

// Container holds global dependencies that can be used within each Context, to make initialisation easier.
// Postgres and Redis are only connected, if the storage backend of Config needs them.
type Container struct {
	Logger        alog.Logger
	MeterProvider *metric.MeterProvider
	TraceProvider *trace.TracerProvider

	Config *Config
	PGx    *pgxpool.Pool
	Redis  redis.UniversalClient

	WebRouter *echo.Echo
	APIRouter *echo.Group

	registry       *prometheusSDK.Registry
	statusEndpoint *http.Server
	startedAt      time.Time
	shutdown       []func(ctx context.Context) error
}

func (c *Container) EnsureAllDependenciesPresent() error {
	if c.Config == nil {
		return fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	switch c.Config.Storage.Backend {
	case PostgresBackend:
		if c.PGx == nil {
			return fmt.Errorf("%w: postgres", ErrMissingDependency)
		}
	case RedisBackend:
		if c.Redis == nil {
			return fmt.Errorf("%w: redis", ErrMissingDependency)
		}
	case MemoryBackend, JSONBackend:
	}

	return nil
}

func InitialiseDefaultDependencies(ctx context.Context, conf *Config) (*Container, error) {
	if conf == nil {
		return nil, fmt.Errorf("%w: config", ErrMissingDependency)
	}

	dc := &Container{
		Config:    conf,
		registry:  prometheusSDK.NewRegistry(),
		startedAt: time.Now(),
	}

	{ // observability
		res := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(fmt.Sprintf("%s.%s", conf.OrganisationName, conf.ApplicationName)),
			attribute.String("environment", string(conf.Environment)),
		)

		{ // traces
			opts := []trace.TracerProviderOption{
				trace.WithResource(res),
				trace.WithSampler(trace.ParentBased(trace.AlwaysSample())),
			}

			if conf.OTEL.Enabled {
				exporter, err := otlptracegrpc.New(ctx,
					otlptracegrpc.WithEndpoint(fmt.Sprintf("%s:%d", conf.OTEL.Host, conf.OTEL.Port)),
					otlptracegrpc.WithInsecure(),
				)
				if err != nil {
					return nil, fmt.Errorf("could not connect to trace exporter: %w", err)
				}

				opts = append(opts, trace.WithBatcher(exporter))
			}

			// without an exporter spans are still created, so logs carry a trace id
			dc.TraceProvider = trace.NewTracerProvider(opts...)
			dc.shutdown = append(dc.shutdown, dc.TraceProvider.Shutdown)
			otel.SetTracerProvider(dc.TraceProvider)
		}

		{ // metrics
			dc.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			exporter, err := prometheus.New(prometheus.WithRegisterer(dc.registry))
			if err != nil {
				return nil, fmt.Errorf("could not create prometheus exporter: %w", err)
			}

			dc.MeterProvider = metric.NewMeterProvider(
				metric.WithResource(res),
				metric.WithReader(exporter),
			)
			dc.shutdown = append(dc.shutdown, dc.MeterProvider.Shutdown)
			otel.SetMeterProvider(dc.MeterProvider)
		}
	}

	{ // logger
		level := slog.LevelInfo
		if err := level.UnmarshalText([]byte(conf.Log.Level)); err != nil && conf.Log.Level != "" {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}

		var logger *slog.Logger
		if conf.Environment == LocalEnv {
			logger = alog.NewDevelopment(conf.Log.LokiURL)
		} else {
			logger = alog.New(alog.WithLevel(level))
		}

		if conf.Debug {
			alog.Unwrap(logger).SetLevel(slog.LevelDebug)
		}

		dc.Logger = logger.With(
			slog.String("organisation_name", conf.OrganisationName),
			slog.String("application_name", conf.ApplicationName),
			slog.String("instance_name", instanceName(conf)),
			slog.String("git_hash", gitHash()),
			slog.String("environment", string(conf.Environment)),
		)
	}

	switch conf.Storage.Backend {
	case PostgresBackend:
		pg, err := postgres.ConnectAndMigrate(ctx, postgres.Config{
			User:       conf.Postgres.User,
			Password:   conf.Postgres.Password.Secret(),
			Database:   conf.Postgres.Database,
			Host:       conf.Postgres.Host,
			Port:       conf.Postgres.Port,
			SSLMode:    conf.Postgres.SSLMode,
			MaxConns:   conf.Postgres.MaxConns,
			Migrations: postgres.Migrations,
		}, dc.TraceProvider)
		if err != nil {
			_ = dc.Shutdown(ctx)

			return nil, fmt.Errorf("could not connect to postgres: %w", err)
		}

		dc.PGx = pg.PGx
		dc.shutdown = append(dc.shutdown, pg.Shutdown)
	case RedisBackend:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{conf.Redis.Addr},
			Password: conf.Redis.Password.Secret(),
			DB:       conf.Redis.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			_ = dc.Shutdown(ctx)

			return nil, fmt.Errorf("could not connect to redis: %w", err)
		}

		dc.Redis = client
		dc.shutdown = append(dc.shutdown, func(context.Context) error { return client.Close() })
	case MemoryBackend, JSONBackend:
	}

	{ // web router
		router := echo.New()
		router.HideBanner = true
		router.HidePort = true
		router.Logger.SetOutput(io.Discard)
		router.IPExtractor = echo.ExtractIPFromXFFHeader() // see: https://echo.labstack.com/docs/ip-address
		router.Debug = conf.Environment == LocalEnv

		router.Use(middleware.Recover())
		router.Use(otelecho.Middleware(conf.OTEL.Hostname, otelecho.WithTracerProvider(dc.TraceProvider)))
		router.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  metricName(conf.ApplicationName),
			Registerer: dc.registry,
		}))
		router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TargetHeader: echo.HeaderXRequestID,
			Generator: func() string {
				return ulid.Make().String()
			},
			RequestIDHandler: func(c echo.Context, rid string) {
				c.SetRequest(c.Request().WithContext(alog.AddAttr(
					c.Request().Context(),
					slog.String("request_id", rid)),
				))
			},
		}))
		router.Use(requestLogger(dc.Logger))

		dc.WebRouter = router
		dc.APIRouter = router.Group("/api")
	}

	return dc, nil
}

func requestLogger(logger alog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogUserAgent: true,
		HandleError:  true, // the status is set by the error handler of echo
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.UserAgent != "" {
				ua := useragent.Parse(v.UserAgent)
				attrs = append(attrs, slog.Group("client",
					slog.String("name", ua.Name),
					slog.String("os", ua.OS),
					slog.Bool("bot", ua.Bot),
				))
			}

			if v.Error != nil {
				attrs = append(attrs, alog.Error(v.Error))
			}

			logger.LogAttrs(c.Request().Context(), level, "request handled", attrs...)

			return nil
		},
	})
}

func (c *Container) Start(ctx context.Context) error {
	if err := c.EnsureAllDependenciesPresent(); err != nil {
		return err
	}

	c.Logger.LogAttrs(ctx, alog.LevelInfo, "starting all servers")

	if c.Config.HTTP.StatusEndpointEnabled {
		c.statusEndpoint = c.serveStatus(ctx)
	}

	addr := fmt.Sprintf(":%d", c.Config.HTTP.Port)
	c.Logger.InfoContext(ctx, "serving todo api", slog.String("addr", addr))

	go func() {
		if err := c.WebRouter.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Log(ctx, slog.LevelError, "could not serve http", alog.Error(err))
		}
	}()

	return nil
}

// Shutdown stops all servers and closes all connections.
// It tries to shut down every dependency, even if one fails.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Logger != nil {
		c.Logger.LogAttrs(ctx, alog.LevelInfo, "shutting down all servers")
	}

	var err error

	if c.WebRouter != nil {
		err = errors.Join(err, c.WebRouter.Shutdown(ctx))
	}

	if c.statusEndpoint != nil {
		err = errors.Join(err, c.statusEndpoint.Shutdown(ctx))
	}

	// in reverse order of initialisation, so the tracer outlives the databases
	for i := len(c.shutdown) - 1; i >= 0; i-- {
		err = errors.Join(err, c.shutdown[i](ctx))
	}

	if err != nil {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	return nil
}

const (
	metricPath = "/metrics"
	statusPath = "/status"
)

// StatusHandler serves the prometheus metrics and the system status as json.
func (c *Container) StatusHandler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricPath, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true, // to enable Examplars in the export format
	}))

	mux.HandleFunc(statusPath, func(w http.ResponseWriter, r *http.Request) {
		status := getSystemStatus(r.Context(), c)

		code := http.StatusOK
		if status.Status != statusOnline {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)

		_ = jsonEncode(w, status)
	})

	return mux
}

func (c *Container) serveStatus(ctx context.Context) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Config.HTTP.StatusEndpointPort),
		Handler:           c.StatusHandler(),
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // prevent slowloris
	}

	c.Logger.InfoContext(ctx, "serving status endpoint",
		slog.String("addr", srv.Addr),
		slog.String("metric_path", metricPath),
		slog.String("status_path", statusPath),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Log(ctx, slog.LevelError, "could not serve status endpoint", alog.Error(err))
		}
	}()

	return srv
}

func instanceName(conf *Config) string {
	if conf.InstanceName != "" {
		return conf.InstanceName
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return hostname
}

// metricName replaces all characters not allowed in a prometheus metric name.
func metricName(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}

		return '_'
	}, name)
}

func gitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
