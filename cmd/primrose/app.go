package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"

	"github.com/Ramsey-B/primrose/config"
	"github.com/Ramsey-B/primrose/internal/store"
	"github.com/Ramsey-B/primrose/pkg/database"
	"github.com/Ramsey-B/primrose/pkg/events"
	"github.com/Ramsey-B/primrose/pkg/expressions"
	"github.com/Ramsey-B/primrose/pkg/health"
	"github.com/Ramsey-B/primrose/pkg/httpclient"
	"github.com/Ramsey-B/primrose/pkg/kafka"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/notices"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
	"github.com/Ramsey-B/primrose/pkg/redis"
	"github.com/Ramsey-B/primrose/pkg/remote"
	"github.com/Ramsey-B/primrose/pkg/startup"
	"github.com/Ramsey-B/primrose/pkg/tracing"
	"github.com/Ramsey-B/primrose/pkg/tracing/exporters"
)

// app holds the wired service. Fields are filled in by the startup graph.
type app struct {
	cfg    *config.Config
	logger ectologger.Logger
	health *health.Checker

	db       database.DB
	redis    *redis.Client
	producer *kafka.Producer

	reconciler *reconciler.Reconciler
	notices    *notices.Service

	stopTracing func(context.Context) error
}

func loadConfig() (*config.Config, ectologger.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) (ectologger.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger.With(zap.String("app", cfg.AppName)), nil), nil
}

func newApp(cfg *config.Config, logger ectologger.Logger) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		health: health.NewChecker(cfg.Version),
	}
}

// dependencies returns the startup graph for the configured drivers.
func (a *app) dependencies() []startup.Dependency {
	deps := []startup.Dependency{
		startup.Func{
			Name:    "tracing",
			OnStart: a.startTracing,
		},
		startup.Func{
			Name:    "database",
			OnStart: a.startDatabase,
			OnStop: func(context.Context) error {
				if a.db == nil {
					return nil
				}
				return a.db.Close()
			},
		},
		startup.Func{
			Name:     "migrations",
			Requires: []string{"database"},
			OnStart: func(context.Context) error {
				if a.db == nil || !a.cfg.DatabaseAutoMigrate {
					return nil
				}
				return a.migrate(false)
			},
		},
		startup.Func{
			Name:    "redis",
			OnStart: a.startRedis,
			OnStop: func(context.Context) error {
				if a.redis == nil {
					return nil
				}
				return a.redis.Close()
			},
		},
		startup.Func{
			Name:    "kafka",
			OnStart: a.startKafka,
			OnStop: func(context.Context) error {
				if a.producer == nil {
					return nil
				}
				return a.producer.Close()
			},
		},
		startup.Func{
			Name:     "reconciler",
			Requires: []string{"tracing", "migrations", "redis", "kafka"},
			OnStart:  a.startReconciler,
		},
	}
	return deps
}

func (a *app) start(ctx context.Context, extra ...startup.Dependency) (*startup.Startup, error) {
	s := startup.NewStartup(a.logger, a.cfg.StartupMaxAttempts)
	for _, dep := range append(a.dependencies(), extra...) {
		s.AddDependency(dep)
	}
	if err := s.Start(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (a *app) startTracing(ctx context.Context) error {
	shutdown, err := tracing.InitProvider(ctx, tracing.ProviderConfig{
		ServiceName: a.cfg.AppName,
		OTLPEnabled: a.cfg.OTLPEnabled,
		OTLP: exporters.OTLPConfig{
			Endpoint: a.cfg.OTLPEndpoint,
			Protocol: a.cfg.OTLPProtocol,
			Insecure: a.cfg.OTLPInsecure,
		},
	})
	if err != nil {
		return err
	}
	a.stopTracing = shutdown
	return nil
}

func (a *app) startDatabase(ctx context.Context) error {
	if a.cfg.StoreDriver != "postgres" {
		a.logger.Info("Using in-memory store")
		return nil
	}
	db, err := database.Open(ctx, database.Config{
		DSN:             a.cfg.DatabaseDSN(),
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
	}, a.logger)
	if err != nil {
		return err
	}
	a.db = db
	a.health.Register("database", db.PingContext, true)
	return nil
}

func (a *app) migrate(down bool) error {
	return database.NewMigrationService(a.logger, &database.MigrationConfig{
		MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
		Version:             a.cfg.DatabaseMigrationVersion,
		Down:                down,
	}).Migrate(a.db)
}

func (a *app) startRedis(ctx context.Context) error {
	if a.cfg.NoticesDriver != "redis" {
		return nil
	}
	client, err := redis.NewClient(ctx, redis.Config{
		Host:     a.cfg.RedisHost,
		Port:     a.cfg.RedisPort,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	}, a.logger)
	if err != nil {
		return err
	}
	a.redis = client
	a.health.Register("redis", client.Ping, true)
	return nil
}

func (a *app) startKafka(ctx context.Context) error {
	if !a.cfg.EventsEnabled {
		return nil
	}
	producer := kafka.NewProducer(kafka.ParseConfig(a.cfg.KafkaBrokers, a.cfg.KafkaEventsTopic), a.logger)
	if err := producer.Ping(ctx); err != nil {
		_ = producer.Close()
		return err
	}
	a.producer = producer
	a.health.Register("kafka", producer.Ping, false)
	return nil
}

func (a *app) startReconciler(context.Context) error {
	headers := map[string]string{}
	if a.cfg.RemoteAPIKey != "" {
		headers["Authorization"] = "Bearer " + a.cfg.RemoteAPIKey
		headers["apikey"] = a.cfg.RemoteAPIKey
	}
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = a.cfg.RemoteTimeout
	clientCfg.Headers = headers

	source, err := remote.NewSource(remote.Config{
		BaseURL:           a.cfg.RemoteBaseURL,
		RecordsExpression: a.cfg.RemoteRecordsExpression,
		Paths: map[models.Kind]string{
			models.KindListings: a.cfg.RemoteListingsPath,
			models.KindVendors:  a.cfg.RemoteVendorsPath,
			models.KindTours:    a.cfg.RemoteToursPath,
			models.KindContact:  a.cfg.RemoteContactPath,
			models.KindPolicy:   a.cfg.RemotePolicyPath,
		},
	}, httpclient.NewClient(clientCfg, a.logger), expressions.NewEvaluator(), a.logger)
	if err != nil {
		return err
	}

	var st reconciler.Store = store.NewMemory()
	if a.db != nil {
		st = store.NewPostgres(a.db, a.logger)
	}

	var emitter reconciler.Emitter = events.NoopEmitter{}
	if a.producer != nil {
		emitter = events.NewEmitter(a.producer, a.logger)
	}

	var board notices.Board = notices.NewMemoryBoard(a.cfg.NoticeTTL)
	if a.redis != nil {
		board = notices.NewRedisBoard(a.redis.Redis(), notices.DefaultKeyPrefix, a.cfg.NoticeTTL, a.logger)
	}

	a.reconciler = reconciler.New(source, st, emitter, a.logger)
	a.notices = notices.NewService(board, a.reconciler, a.logger)
	return nil
}

func (a *app) shutdown(ctx context.Context, s *startup.Startup) {
	if s != nil {
		if err := s.Stop(ctx); err != nil {
			a.logger.WithError(err).Error("Failed to stop dependencies")
		}
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			a.logger.WithError(err).Warn("Failed to flush traces")
		}
	}
}
