package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"pulse-companion-be/internal/config"
	"pulse-companion-be/internal/controller"
	internalEvents "pulse-companion-be/internal/events"
	"pulse-companion-be/internal/handler"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/cache"
	"pulse-companion-be/internal/repository/memory"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/internal/service"
	"pulse-companion-be/internal/websocket"
	"pulse-companion-be/pkg/facedetect"
	"pulse-companion-be/pkg/llm"
	"pulse-companion-be/pkg/llm/factory"
	"pulse-companion-be/pkg/metrics"
	"pulse-companion-be/pkg/resilience"
	"pulse-companion-be/pkg/rppg"
	"pulse-companion-be/pkg/sentiment"

	pktNats "pulse-companion-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	MeasurementTopic       = "vitals.measurements"
	ConversationMaxHistory = 20
)

type Container struct {
	// Controllers
	SystemController    controller.ISystemController
	PatientController   controller.IPatientController
	VitalsController    controller.IVitalsController
	AnalyticsController controller.IAnalyticsController
	CheckinController   controller.ICheckinController
	StreamController    controller.IStreamController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Metrics *metrics.Metrics
	Logger  *logger.ZapLogger

	closers []func()
}

// NewContainer wires every dependency. A nil db selects the in-memory store;
// NATS, Redis and the face cascade are optional and degrade with a warning.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	c.Logger = sysLogger

	var uowFactory unitofwork.RepositoryFactory
	storage := "postgres"
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		storage = "memory"
		uowFactory = unitofwork.NewMemoryRepositoryFactory(memory.NewStore())
		sysLogger.Warn("BOOTSTRAP", "No database configured, using in-memory storage", nil)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	c.Metrics = m

	// 2. Infrastructure
	rdb := connectRedis(ctx, cfg.App.RedisURL, sysLogger)
	var live cache.LiveVitalsCache
	if rdb != nil {
		live = cache.NewRedisLiveVitalsCache(rdb, cfg.Vitals.LiveTTL)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	} else {
		live = cache.NewMemoryLiveVitalsCache(cfg.Vitals.LiveTTL)
	}

	// NATS (optional, alerts stay on this instance without it)
	var bus internalEvents.Bus
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger.Zap("NATS"))
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS publisher unavailable, alerts stay local", map[string]interface{}{"error": err.Error()})
		} else {
			bus = natsPub
			c.closers = append(c.closers, natsPub.Close)

			natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger.Zap("NATS"))
			if err != nil {
				sysLogger.Warn("BOOTSTRAP", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
				natsSub = nil
			} else {
				c.closers = append(c.closers, natsSub.Close)
			}
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "notification.log"))
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)
	c.WebSocketHub = wsHub

	publisher := internalEvents.NewBusPublisher(bus, wsHub, sysLogger)

	// 3. Resilience
	breakers := resilience.NewRegistry(
		resilience.BreakerConfig{
			FailureThreshold: cfg.Resilience.FailureThreshold,
			ResetTimeout:     cfg.Resilience.ResetTimeout,
		},
		resilience.WithObserver(func(name string, from, to resilience.State) {
			m.SetCircuitBreakerState(name, float64(to))
		}),
		resilience.WithBreakerLogger(sysLogger.Zap("BREAKER")),
	)

	primary := buildProvider(cfg, cfg.Ai.PrimaryProvider, cfg.Ai.PrimaryModel, cfg.Resilience.PrimaryTimeout, sysLogger)
	secondary := buildProvider(cfg, cfg.Ai.SecondaryProvider, cfg.Ai.SecondaryModel, cfg.Resilience.SecondaryTimeout, sysLogger)

	cascade, err := resilience.NewCascade(
		primary,
		secondary,
		breakers,
		sentiment.NewClassifier(sentiment.NewVaderScorer()),
		resilience.CascadeConfig{
			PrimaryTimeout:   cfg.Resilience.PrimaryTimeout,
			SecondaryTimeout: cfg.Resilience.SecondaryTimeout,
			RequireRemote:    cfg.Ai.RequireRemote,
		},
		resilience.WithResponseObserver(func(res resilience.Response) {
			m.CascadeResponse(res.Provider, res.FallbackReason, time.Duration(res.LatencyMs*float64(time.Millisecond)))
		}),
		resilience.WithCascadeLogger(sysLogger.Zap("CASCADE")),
	)
	if err != nil {
		return nil, fmt.Errorf("build cascade: %w", err)
	}

	// 4. Vitals pipeline
	var detector rppg.Detector
	pigoDetector, err := facedetect.NewPigoDetector(facedetect.DefaultConfig(cfg.Vitals.CascadePath), sysLogger.Zap("FACEDETECT"))
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Face detector unavailable, camera streaming disabled", map[string]interface{}{
			"cascade_path": cfg.Vitals.CascadePath,
			"error":        err.Error(),
		})
	} else {
		detector = pigoDetector
	}

	monitorCfg := rppg.DefaultMonitorConfig()
	if cfg.Vitals.FPS > 0 {
		monitorCfg.FPS = float64(cfg.Vitals.FPS)
	}
	if cfg.Vitals.WindowSeconds > 0 {
		monitorCfg.WindowSeconds = cfg.Vitals.WindowSeconds
	}
	if cfg.Vitals.EveryNFrames > 0 {
		monitorCfg.EveryNFrames = cfg.Vitals.EveryNFrames
	}
	if cfg.Vitals.CalibrationSeconds > 0 {
		monitorCfg.CalibrationSeconds = int(math.Ceil(cfg.Vitals.CalibrationSeconds))
	}

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 5. Services
	conversations := memory.NewConversationRepository(ConversationMaxHistory)

	patientService := service.NewPatientService(uowFactory, conversations, live, sysLogger)
	vitalsService := service.NewVitalsService(uowFactory, publisher, live, m, sysLogger)
	analyticsService := service.NewAnalyticsService(uowFactory)
	checkinService := service.NewCheckinService(uowFactory, cascade, conversations, live, publisher, sysLogger)

	publisherService := service.NewPublisherService(MeasurementTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, MeasurementTopic, vitalsService, sysLogger)
	streamService := service.NewStreamService(uowFactory, detector, monitorCfg, vitalsService, publisherService, m, sysLogger)

	if storage == "memory" && cfg.App.SeedDemo {
		if _, err := service.NewSeedService(uowFactory, nil, sysLogger).SeedDemo(ctx); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to seed demo patient", map[string]interface{}{"error": err.Error()})
		}
	}

	if natsSub != nil {
		c.NotificationService = service.NewNotificationService(natsSub, wsHub, wsLogger)
	}

	// Handler
	c.NotificationHandler = handler.NewNotificationHandler(bus, wsHub, wsLogger, !cfg.App.IsProduction())

	// 6. Controllers
	c.SystemController = controller.NewSystemController(checkinService, sysLogger, storage)
	c.PatientController = controller.NewPatientController(patientService)
	c.VitalsController = controller.NewVitalsController(vitalsService)
	c.AnalyticsController = controller.NewAnalyticsController(analyticsService)
	c.CheckinController = controller.NewCheckinController(checkinService)
	c.StreamController = controller.NewStreamController(streamService, sysLogger)

	sysLogger.Info("BOOTSTRAP", "Container ready", map[string]interface{}{
		"storage":        storage,
		"live_cache":     liveCacheName(rdb),
		"event_bus":      bus != nil,
		"face_detector":  detector != nil,
		"llm_primary":    providerName(primary),
		"llm_secondary":  providerName(secondary),
		"require_remote": cfg.Ai.RequireRemote,
	})

	return c, nil
}

// Close releases infrastructure connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unavailable, live vitals cached in memory", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// buildProvider returns nil when the tier is disabled or lacks credentials.
func buildProvider(cfg *config.Config, kind, model string, timeout time.Duration, log logger.ILogger) llm.LLMProvider {
	pc := factory.ProviderConfig{Model: model, Timeout: timeout}
	switch kind {
	case "gemini":
		pc.APIKey = cfg.Keys.GoogleGemini
	case "groq":
		pc.APIKey = cfg.Keys.Groq
	case "huggingface":
		pc.APIKey = cfg.Keys.HuggingFace
	case "ollama":
		pc.BaseURL = cfg.Ai.OllamaBaseURL
	}

	provider, err := factory.NewLLMProvider(kind, pc)
	if err != nil {
		if errors.Is(err, factory.ErrNotConfigured) {
			log.Warn("BOOTSTRAP", "LLM tier not configured", map[string]interface{}{"provider": kind})
		} else {
			log.Error("BOOTSTRAP", "Failed to initialize LLM provider", map[string]interface{}{"provider": kind, "error": err.Error()})
		}
		return nil
	}
	return provider
}

func providerName(p llm.LLMProvider) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}

func liveCacheName(rdb *redis.Client) string {
	if rdb == nil {
		return "memory"
	}
	return "redis"
}
