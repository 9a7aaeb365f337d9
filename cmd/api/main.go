package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-loja/internal/address"
	"github.com/noah-isme/backend-loja/internal/auth"
	"github.com/noah-isme/backend-loja/internal/catalog"
	"github.com/noah-isme/backend-loja/internal/checkout"
	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/config"
	"github.com/noah-isme/backend-loja/internal/coupon"
	"github.com/noah-isme/backend-loja/internal/events"
	"github.com/noah-isme/backend-loja/internal/health"
	"github.com/noah-isme/backend-loja/internal/installment"
	"github.com/noah-isme/backend-loja/internal/lock"
	"github.com/noah-isme/backend-loja/internal/notify"
	"github.com/noah-isme/backend-loja/internal/obs"
	"github.com/noah-isme/backend-loja/internal/order"
	"github.com/noah-isme/backend-loja/internal/pricing"
	"github.com/noah-isme/backend-loja/internal/ratelimit"
	"github.com/noah-isme/backend-loja/internal/resilience"
	"github.com/noah-isme/backend-loja/internal/shipping"
	"github.com/noah-isme/backend-loja/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "loja")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "loja-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	st := &store.Store{R: redisClient}
	validate := validator.New()

	catalogSvc := &catalog.Service{
		Store:    st,
		Cache:    catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Validate: validate,
	}
	catalogHandler := &catalog.Handler{Svc: catalogSvc}
	catalogAdmin := &catalog.AdminHandler{Svc: catalogSvc}

	shippingSvc := &shipping.Service{Store: st}
	shippingAdmin := &shipping.AdminHandler{Svc: shippingSvc}

	installmentSvc := &installment.Service{Store: st}
	installmentAdmin := &installment.AdminHandler{Svc: installmentSvc}

	couponSvc := &coupon.Service{Store: st, Validate: validate}
	couponAdmin := &coupon.AdminHandler{Svc: couponSvc}

	authService, err := auth.NewService(auth.Config{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		Secret:            cfg.JWTSecret,
		AccessTokenTTL:    cfg.AccessTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Svc: authService}
	authMiddleware := auth.Middleware{Service: authService}

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for queue")
	}
	asynqClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close queue client")
		}
	}()

	bus := &events.Bus{
		Store:    st,
		Enqueuer: notify.Enqueuer{Client: asynqClient},
	}

	facade := pricing.Facade{Resolver: pricing.Resolver{}}

	orderSvc := &order.Service{
		Store:        st,
		Facade:       facade,
		Shipping:     shippingSvc,
		Installments: installmentSvc,
		Coupons:      couponSvc,
		Bus:          bus,
	}
	orderHandler := &order.Handler{Svc: orderSvc}
	orderAdmin := &order.AdminHandler{Svc: orderSvc}

	checkoutSvc := &checkout.Service{
		Store:        st,
		Catalog:      catalogSvc,
		Coupons:      couponSvc,
		Shipping:     shippingSvc,
		Installments: installmentSvc,
		Orders:       orderSvc,
		Facade:       facade,
		Locker:       lock.Locker{R: redisClient},
		Bus:          bus,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	viaCEP := &address.Client{
		BaseURL: cfg.ViaCEPBaseURL,
		HTTP: &resilience.HTTPClient{
			Client:      &http.Client{},
			Breaker:     resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).WithTarget("viacep").WithLogger(logger),
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
			Timeout:     cfg.OutboundTimeout,
		},
	}
	addressHandler := &address.Handler{Client: viaCEP}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    ratelimit.KeyByIP,
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter") },
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{redis: redisClient},
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.List)
		v.Get("/products/{id}", catalogHandler.Get)
		v.Get("/address/{cep}", addressHandler.Lookup)
		v.Get("/orders/{id}", orderHandler.Get)

		v.Group(func(pub chi.Router) {
			pub.Use(limiter.Middleware)
			pub.Post("/shipping/quote", checkoutHandler.ShippingQuote)
			pub.Post("/checkout/quote", checkoutHandler.Quote)
			pub.With(idem.Middleware).Post("/checkout", checkoutHandler.PlaceOrder)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.With(limiter.Middleware).Post("/login", authHandler.Login)

			admin.Group(func(protected chi.Router) {
				protected.Use(authMiddleware.RequireAdmin)

				protected.Get("/products", catalogAdmin.List)
				protected.Post("/products", catalogAdmin.Create)
				protected.Get("/products/{id}", catalogAdmin.Get)
				protected.Put("/products/{id}", catalogAdmin.Update)
				protected.Delete("/products/{id}", catalogAdmin.Delete)

				protected.Get("/coupons", couponAdmin.List)
				protected.Post("/coupons", couponAdmin.Create)
				protected.Get("/coupons/{code}", couponAdmin.Get)
				protected.Put("/coupons/{code}", couponAdmin.Update)
				protected.Delete("/coupons/{code}", couponAdmin.Delete)

				protected.Get("/shipping-config", shippingAdmin.GetConfig)
				protected.Put("/shipping-config", shippingAdmin.PutConfig)

				protected.Get("/installment-config", installmentAdmin.GetConfig)
				protected.Put("/installment-config", installmentAdmin.PutConfig)

				protected.Get("/orders", orderAdmin.List)
				protected.Get("/orders/{id}", orderAdmin.Get)
				protected.Patch("/orders/{id}/status", orderAdmin.UpdateStatus)
				protected.Post("/orders/{id}/recompute", orderAdmin.Recompute)
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-stopCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	redis *redis.Client
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
