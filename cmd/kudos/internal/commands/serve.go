package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	dirstore "kudos/internal/directory/store"
	httpapi "kudos/internal/http"
	"kudos/internal/kudo/events"
	"kudos/internal/kudo/handler"
	kudometrics "kudos/internal/kudo/metrics"
	"kudos/internal/kudo/service"
	kudostore "kudos/internal/kudo/store"
	"kudos/internal/platform/config"
	"kudos/internal/platform/httpserver"
	"kudos/internal/platform/kafka"
	"kudos/internal/platform/logger"
	httpmetrics "kudos/internal/platform/metrics"
	"kudos/internal/platform/postgres"
	platformredis "kudos/internal/platform/redis"
	rlmetrics "kudos/internal/ratelimit/metrics"
	rlmiddleware "kudos/internal/ratelimit/middleware"
	rlstore "kudos/internal/ratelimit/store"
)

type ServeCmd struct {
	Addr string `help:"Listen address; overrides KUDOS_ADDR."`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	loc, err := cfg.Kudos.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		closers   []io.Closer
		readiness []httpapi.Check
	)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	directory, ledger, db, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		closers = append(closers, db)
		readiness = append(readiness, httpapi.Check{Name: "postgres", Ping: db.PingContext})
	}

	var window rlmiddleware.Window = rlstore.NewInMemory()
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		closers = append(closers, redisClient)
		readiness = append(readiness, httpapi.Check{Name: "redis", Ping: redisClient.Health})
		window = rlstore.NewRedis(redisClient)
		log.Info("rate limiting backed by redis")
	}

	var publisher service.EventPublisher = events.NewLogPublisher(log)
	kafkaClient, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		if err := kafka.EnsureTopic(ctx, kafkaClient, cfg.Kafka); err != nil {
			return err
		}
		readiness = append(readiness, httpapi.Check{Name: "kafka", Ping: func(ctx context.Context) error {
			return kafka.Health(ctx, kafkaClient)
		}})
		publisher = events.NewKafkaPublisher(kafkaClient, cfg.Kafka.Topic)
		log.Info("publishing kudo events to kafka", "topic", cfg.Kafka.Topic)
	}

	svc, err := service.New(directory, ledger,
		service.WithLogger(log),
		service.WithWeeklyLimit(cfg.Kudos.WeeklyQuota),
		service.WithLocation(loc),
		service.WithMaxMessageLength(cfg.Kudos.MaxMessageLength),
		service.WithPublisher(publisher),
		service.WithMetrics(kudometrics.New(reg)),
	)
	if err != nil {
		return fmt.Errorf("create kudo service: %w", err)
	}

	throttle := rlmiddleware.New(window, cfg.RateLimit.Requests, cfg.RateLimit.Window, log,
		rlmiddleware.WithDisabled(cfg.RateLimit.Disabled),
		rlmiddleware.WithMetrics(rlmetrics.New(reg)),
	)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Kudos:     handler.New(svc, directory, log),
		Directory: directory,
		Logger:    log,
		Metrics:   httpmetrics.New(reg),
		Gatherer:  reg,
		Throttle:  throttle.Throttle,
		Readiness: readiness,
	})

	log.Info("starting kudos",
		"version", globals.Version,
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"weekly_quota", cfg.Kudos.WeeklyQuota,
		"timezone", loc.String(),
	)
	return httpserver.Run(ctx, httpserver.New(cfg.Server.Addr, router), cfg.Server.ShutdownTimeout, log)
}

// openStores builds the directory and ledger for the configured backend.
// The returned *sql.DB is nil for the memory backend.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (service.Directory, service.Ledger, *sql.DB, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Store.AutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return nil, nil, nil, err
			}
			log.Info("database migrations applied")
		}
		return dirstore.NewPostgres(db), kudostore.NewPostgres(db), db, nil
	default:
		dir := dirstore.NewInMemory()
		if cfg.Store.DirectoryFile != "" {
			if err := dirstore.LoadFixtureFile(ctx, dir, cfg.Store.DirectoryFile, time.Now()); err != nil {
				return nil, nil, nil, err
			}
			log.Info("directory fixture loaded", "path", cfg.Store.DirectoryFile)
		}
		return dir, kudostore.NewInMemory(), nil, nil
	}
}
