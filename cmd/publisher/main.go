package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	goredis "github.com/redis/go-redis/v9"

	"socialcast/internal/audit"
	"socialcast/internal/handlers"
	"socialcast/internal/idempotency"
	"socialcast/internal/integrations"
	"socialcast/internal/publish"
	"socialcast/internal/publish/facebook"
	"socialcast/internal/publish/instagram"
	"socialcast/internal/publish/linkedin"
	"socialcast/internal/schedule"
	"socialcast/pkg/auth"
	"socialcast/pkg/clients"
	"socialcast/pkg/config"
	"socialcast/pkg/database"
	"socialcast/pkg/kafka"
	"socialcast/pkg/logging"
	"socialcast/pkg/monitoring"
	"socialcast/pkg/server"
	"socialcast/pkg/version"
)

const serviceName = "publisher"

func main() {
	logger := logging.NewLoggerWithService(serviceName)
	config.LoadEnv(logger)

	jwtSecret := config.RequireEnv("JWT_SECRET")

	dbCfg := database.DefaultConfig()
	dbCfg.URL = config.RequireEnv("DATABASE_URL")
	db := database.MustConnect(dbCfg, logger)
	defer func() { _ = db.Close() }()

	brokers := strings.Split(config.GetEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	producer, err := kafka.NewProducer(brokers, serviceName, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}
	defer func() { _ = producer.Close() }()

	auditTopic := config.GetEnv("PUBLISH_AUDIT_TOPIC", "publish_audit")
	scheduleTopic := config.GetEnv("SCHEDULED_POSTS_TOPIC", "scheduled_posts")

	auditor := audit.NewKafkaLogger(producer, auditTopic, logger)
	scheduler := schedule.NewKafkaScheduler(producer, scheduleTopic, logger)

	httpClient := &http.Client{
		Transport: clients.DefaultTransport(),
		Timeout:   30 * time.Second,
	}

	registry := publish.NewRegistry(
		facebook.New(
			config.GetEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v19.0"),
			httpClient,
			providerExecutor("facebook", logger),
		),
		instagram.New(
			config.GetEnv("INSTAGRAM_GRAPH_URL", "https://graph.facebook.com/v19.0"),
			httpClient,
			providerExecutor("instagram", logger),
		),
		linkedin.New(
			config.GetEnv("LINKEDIN_API_URL", "https://api.linkedin.com"),
			httpClient,
			providerExecutor("linkedin", logger),
		),
	)

	store := integrations.NewStore(db)
	orchestrator := publish.NewOrchestrator(registry, store, auditor, logger)

	idemTTL := time.Duration(config.GetEnvInt("IDEMPOTENCY_TTL_SECONDS", 600)) * time.Second
	var idemStore handlers.IdempotencyStore
	if redisAddr := config.GetEnv("REDIS_ADDR", ""); redisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     redisAddr,
			Password: config.GetEnv("REDIS_PASSWORD", ""),
		})
		defer func() { _ = redisClient.Close() }()
		idemStore = idempotency.NewRedis(redisClient, idemTTL, logger)
		logger.Info("Using Redis idempotency store")
	} else {
		idemStore = idempotency.NewMemory(idemTTL, config.GetEnvInt("IDEMPOTENCY_MAX_KEYS", 10000))
		logger.Info("Using in-memory idempotency store")
	}

	location := time.Local
	if tz := config.GetEnv("SCHEDULE_TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			logger.WithError(err).Fatal("Invalid SCHEDULE_TIMEZONE")
		}
		location = loc
	}

	healthChecker := monitoring.NewHealthChecker(serviceName, version.Version)
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("kafka", monitoring.KafkaProducerHealthCheck(producer.GetClient()))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"JWT_SECRET":   jwtSecret,
		"DATABASE_URL": dbCfg.URL,
	}))

	metricsCollector := monitoring.NewMetricsCollector(serviceName, version.Version, version.GetShortCommit())
	publishMetrics := handlers.NewPublishMetrics(metricsCollector)

	handler := handlers.NewPublishHandler(orchestrator, scheduler, idemStore, location, logger, publishMetrics)

	router := server.SetupServiceRouter(logger, serviceName, healthChecker, metricsCollector)
	api := router.Group("/api", auth.JWTAuthMiddleware([]byte(jwtSecret)))
	handler.RegisterRoutes(api)

	cfg := server.DefaultConfig(serviceName, "8080")
	if err := server.Start(cfg, router, logger); err != nil {
		logger.WithError(err).Fatal("Server exited with error")
	}
}

// providerExecutor builds the retry and circuit breaker stack for one
// provider's outbound calls.
func providerExecutor(provider string, logger logging.Logger) failsafe.Executor[*http.Response] {
	cbCfg := clients.DefaultCircuitBreakerConfig()
	cbCfg.Name = provider
	cbCfg.Logger = logger

	execCfg := clients.DefaultHTTPExecutorConfig()
	execCfg.CircuitBreaker = clients.NewCircuitBreaker(cbCfg)
	return clients.NewHTTPExecutor(execCfg)
}
