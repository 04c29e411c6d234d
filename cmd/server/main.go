package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"murmurnet/internal/core/ports"
	"murmurnet/internal/core/services"
	httphandlers "murmurnet/internal/handlers/http"
	"murmurnet/internal/infrastructure/broadcast"
	"murmurnet/internal/infrastructure/middleware"
	"murmurnet/internal/infrastructure/moderation"
	"murmurnet/internal/infrastructure/monitoring"
	"murmurnet/internal/infrastructure/repositories"
	"murmurnet/pkg/config"
	"murmurnet/pkg/logger"
	"murmurnet/pkg/password"
	"murmurnet/pkg/tracing"
)

func main() {
	startTime := time.Now()

	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/murmurnet/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	// Tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Storage
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := repositories.NewRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer repos.Close()

	// Monitoring
	var collector *monitoring.PrometheusCollector
	if cfg.Monitoring.PrometheusEnabled {
		collector = monitoring.NewPrometheusCollector()
	}

	// the interface values must stay nil when the collector is disabled
	var hubMetrics broadcast.Metrics
	var feedMetrics services.FeedMetrics
	if collector != nil {
		hubMetrics = collector
		feedMetrics = collector
	}

	// Live broadcast hub. With redis enabled, events are also bridged to
	// peer instances over pub/sub.
	hub := broadcast.NewHub(cfg.Live.ChannelBuffer, log, hubMetrics)
	var publisher ports.Publisher = hub
	if client := repos.RedisClient(); client != nil {
		bridge := broadcast.NewBridge(client, hub, log)
		publisher = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				log.Errorw("broadcast bridge stopped", "error", err)
			}
		}()
	}

	// Services
	tokenService, err := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalw("failed to initialize token service", "error", err)
	}

	// keep the interface a true nil when moderation is disabled
	var moderationClient ports.ModerationClient
	if client := moderation.NewClient(cfg.Moderation.URL, cfg.Moderation.APIKey, cfg.Moderation.Timeout, log); client != nil {
		moderationClient = client
	}

	userService := services.NewUserService(repos.Users, tokenService, password.NewHasher(password.DefaultParams()), log)
	feedService := services.NewFeedService(repos.Posts, moderationClient, publisher, repos.Cache, feedMetrics, log)

	// Health checks
	health := monitoring.NewHealthChecker(2 * time.Second)
	health.AddCheck("storage", repos.HealthCheck)

	// Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLog(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.RateLimit(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.Tracing())
	}

	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "web/static")

	transport := middleware.ParseTransport(cfg.Auth.Transport)

	authHandler := httphandlers.NewAuthHandler(userService, transport, cfg.Auth.CookieName, tokenService.TTL(), log)
	authHandler.SetupRoutes(router)

	protected := router.Group("/", middleware.AuthRequired(tokenService, transport, cfg.Auth.CookieName))
	httphandlers.NewFeedHandler(feedService, log).SetupRoutes(protected)
	httphandlers.NewLiveHandler(hub, cfg.Live.PingInterval, cfg.Live.WriteTimeout, log).SetupRoutes(protected)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		status := health.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("starting murmurnet server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatalw("server failed", "error", err)
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}

	// drop remaining live viewers after in-flight requests drained
	hub.Shutdown()

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error shutting down tracer", "error", err)
	}

	log.Info("murmurnet server stopped")
}
