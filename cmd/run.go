package cmd

import (
	"context"
	"fmt"
	"time"

	"poporingbot/bot"
	"poporingbot/catalog"
	"poporingbot/config"
	"poporingbot/database"
	"poporingbot/domain/interfaces"
	"poporingbot/domain/services"
	"poporingbot/events"
	"poporingbot/infrastructure"
	"poporingbot/infrastructure/observability"
	"poporingbot/poporing"
	"poporingbot/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)

	log.Info("Starting poporing bot...")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	metrics := observability.GetMetrics()

	// Initialize preference store
	store, closeStore, err := setupPreferenceStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	preferences := services.NewPreferenceService(store)

	// Initialize event publishing
	eventBus := events.NewBus()
	closePublisher, err := setupEventPublishing(ctx, cfg, eventBus, metrics)
	if err != nil {
		return err
	}
	defer closePublisher()

	// Load the item catalog before going online
	client := poporing.NewClient(poporing.Options{
		SEABaseURL:    cfg.SEAAPIURL,
		GlobalBaseURL: cfg.GlobalAPIURL,
		Timeout:       cfg.HTTPTimeout,
	})

	log.Info("Loading item catalog...")
	itemCatalog, err := catalog.Load(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to load item catalog: %w", err)
	}
	log.WithField("items", itemCatalog.Len()).Info("Item catalog loaded")

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:              cfg.DiscordToken,
		MessageTimeout:     cfg.MessageTimeout,
		ReplyRatePerSecond: cfg.ReplyRatePerSecond,
		ReplyBurst:         cfg.ReplyBurst,
	}, bot.Dependencies{
		Resolver:    catalog.NewResolver(itemCatalog),
		Prices:      client,
		Preferences: preferences,
		Publisher:   eventBus,
		Metrics:     metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// configureLogging applies the configured logrus level and format
func configureLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// setupPreferenceStore connects the configured preference backend.
// The returned func releases its connections.
func setupPreferenceStore(ctx context.Context, cfg *config.Config) (interfaces.KeyValueStore, func(), error) {
	switch cfg.PreferenceBackend {
	case config.BackendPostgres:
		databaseURL := cfg.GetDatabaseURL()

		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")

		return repository.NewPreferenceRepository(db), db.Close, nil

	default:
		log.Info("Connecting to Redis...")
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis connection established successfully")

		return repository.NewRedisPreferenceStore(client), func() {
			if err := client.Close(); err != nil {
				log.Errorf("Error closing Redis client: %v", err)
			}
		}, nil
	}
}

// setupEventPublishing forwards bus events to NATS when servers are configured
func setupEventPublishing(ctx context.Context, cfg *config.Config, bus *events.Bus, metrics *observability.MetricsProvider) (func(), error) {
	var publisher interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
	closeFn := func() {}

	if cfg.NATSServers != "" {
		log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}

		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		if err := natsPublisher.EnsureEventStream(); err != nil {
			natsClient.Close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}

		publisher = natsPublisher
		closeFn = func() {
			if err := natsClient.Close(); err != nil {
				log.Errorf("Error closing NATS client: %v", err)
			}
		}
		log.Info("NATS event publishing enabled")
	} else {
		log.Info("NATS_SERVERS not set, lookup events stay local")
	}

	forward := func(ctx context.Context, event events.Event) {
		if err := publisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Warn("Failed to publish event")
			return
		}
		if cfg.NATSServers != "" {
			metrics.RecordNATSMessagePublished(string(event.Type()))
		}
	}
	bus.Subscribe(events.EventTypePriceLookup, forward)
	bus.Subscribe(events.EventTypePreferenceChanged, forward)

	return closeFn, nil
}
