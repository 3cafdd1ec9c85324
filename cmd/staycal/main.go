package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staycal/internal/app/export"
	"staycal/internal/app/feedsync"
	"staycal/internal/app/gateway"
	appoutbox "staycal/internal/app/outbox"
	"staycal/internal/app/query"
	"staycal/internal/app/uow"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
	"staycal/internal/infra/broker/kafka"
	"staycal/internal/infra/config"
	mongostore "staycal/internal/infra/db/mongo"
	"staycal/internal/infra/feed"
	ginserver "staycal/internal/infra/http/gin"
	"staycal/internal/infra/obs"
	infraoutbox "staycal/internal/infra/outbox"
	"staycal/internal/infra/schedule"
	"staycal/internal/infra/storage/memory"
	"staycal/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if app.scheduler != nil {
		app.scheduler.Start()
		defer app.scheduler.Stop()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	worker    *infraoutbox.Worker
	scheduler *schedule.Scheduler
	ready     func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		factory     uow.UoWFactory
		outboxStore outboxBackend
		rates       domainpricing.RateCardSource
		ready       = func() error { return nil }
	)
	switch cfg.StoreMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		})
		if err := client.Ping(ctx); err != nil {
			return application{}, cleanup, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			return application{}, cleanup, err
		}
		factory = mongostore.NewFactory(client)
		outboxStore = mongostore.NewOutboxStore(client.Database())
		rates = mongostore.NewRateCardSource(client.Database())
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		memFactory := memory.NewFactory()
		factory = memFactory
		outboxStore = memory.NewOutbox()
		store := memory.NewRateCardStore()
		rates = fallbackRates{Source: store, Default: demoRateCard()}
	}

	gw := &gateway.Gateway{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	}
	querySvc := &query.Service{UoWFactory: factory, Rates: rates}

	var uploader export.Uploader
	if cfg.SnapshotsEnabled() {
		publisher, err := s3.NewPublisher(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("object storage unavailable, exports stay download-only", "error", err)
		} else {
			uploader = publisher
		}
	}

	exporter := &export.Exporter{Query: querySvc, Uploader: uploader, Logger: logger}
	importer := &feedsync.Importer{Gateway: gw, Logger: logger}
	syncer := &feedsync.Syncer{
		UoWFactory: factory,
		Importer:   importer,
		Fetcher:    feed.NewFetcher(cfg.FeedFetchTimeout),
		Outbox:     outboxStore,
		Logger:     logger,
	}
	scheduler, err := schedule.New(cfg.SyncCron, syncer, logger)
	if err != nil {
		return application{}, cleanup, err
	}

	var worker *infraoutbox.Worker
	if cfg.PublishEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = producer.Close() })
		worker = &infraoutbox.Worker{
			Store:       outboxStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	} else {
		logger.Info("kafka brokers not configured, outbox events stay queued")
	}

	handlers := ginserver.Handlers{
		Calendar: ginserver.CalendarHandler{Query: querySvc, Logger: logger},
		Blocks:   ginserver.BlockHandler{Gateway: gw, Logger: logger},
		Prices:   ginserver.PriceHandler{Gateway: gw, Logger: logger},
		Booking:  ginserver.BookingHandler{Gateway: gw, Logger: logger},
		ICal:     ginserver.ICalHandler{Importer: importer, Exporter: exporter, Logger: logger},
	}
	return application{handlers: handlers, worker: worker, scheduler: scheduler, ready: ready}, cleanup, nil
}

// outboxBackend is satisfied by both store flavors: the gateway writes through
// the app port, the worker drains through the infra one.
type outboxBackend interface {
	appoutbox.Outbox
	infraoutbox.Store
}

// fallbackRates serves a fixed card for properties with no seeded rates, so a
// memory-mode run works without any provisioning step.
type fallbackRates struct {
	Source  domainpricing.RateCardSource
	Default domainpricing.RateCard
}

func (f fallbackRates) RateCard(ctx context.Context, propertyID string) (domainpricing.RateCard, error) {
	rc, err := f.Source.RateCard(ctx, propertyID)
	if errors.Is(err, domainpricing.ErrRateCardNotFound) {
		return f.Default, nil
	}
	return rc, err
}

func demoRateCard() domainpricing.RateCard {
	return domainpricing.RateCard{
		Weekday: money.Must(10000, "EUR"),
		Weekend: money.Must(15000, "EUR"),
		Monthly: money.Must(210000, "EUR"),
		Daily:   money.Must(10000, "EUR"),
	}
}
