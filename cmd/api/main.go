package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/config"
	"github.com/xavierca1/ecold-outreach/internal/infra/auth"
	"github.com/xavierca1/ecold-outreach/internal/infra/cache"
	"github.com/xavierca1/ecold-outreach/internal/infra/database"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/handlers"
	"github.com/xavierca1/ecold-outreach/internal/infra/http/middleware"
	"github.com/xavierca1/ecold-outreach/internal/infra/mail"
	"github.com/xavierca1/ecold-outreach/internal/infra/queue"
	"github.com/xavierca1/ecold-outreach/internal/infra/worker"
	"github.com/xavierca1/ecold-outreach/internal/logger"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Server.Env)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.NewMongoClient(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal("mongo connection failed", zap.Error(err))
	}
	defer func() { _ = mongoClient.Close(context.Background()) }()
	if err := mongoClient.CreateIndexes(ctx); err != nil {
		log.Fatal("mongo index creation failed", zap.Error(err))
	}

	db, err := database.NewDBConnection(cfg.Postgres.URL)
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal("postgres schema setup failed", zap.Error(err))
	}

	transport, err := newTransport(ctx, cfg.Mail)
	if err != nil {
		log.Fatal("mail transport setup failed", zap.Error(err))
	}

	tokens := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)
	in := infra{mongo: mongoClient, db: db, transport: transport, tokens: tokens}

	var redisPing handlers.Pinger
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		in.deduper = cache.NewDeduper(rdb, cfg.Redis.DedupeTTL, log)
		redisPing = redisPinger(rdb)
	} else {
		log.Warn("REDIS_ADDR not set, inbox dedupe relies on the unique index only")
	}

	var rmq *queue.RabbitMQ
	if cfg.MQ.URL != "" {
		rmq, err = queue.NewRabbitMQ(cfg.MQ.URL)
		if err != nil {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer rmq.Close()
		in.progression = queue.NewProducer(rmq.Ch)
	} else {
		log.Warn("RABBITMQ_URL not set, follow-up progression runs in-process")
	}

	a := newApp(cfg, in, log)

	if rmq != nil {
		w := queue.NewWorker(rmq.Ch, a.assignments, log)
		go func() {
			if err := w.Start(ctx, queue.QueueName); err != nil {
				log.Error("progression worker stopped", zap.Error(err))
			}
		}()
	}
	go worker.NewScheduledEmailWorker(a.scheduled, cfg.Scheduler.Interval, log).Start(ctx)

	var health *handlers.HealthHandler
	if rmq != nil {
		health = handlers.NewHealthHandler(mongoClient, handlers.PingFunc(db.PingContext), redisPing, rmq)
	} else {
		health = handlers.NewHealthHandler(mongoClient, handlers.PingFunc(db.PingContext), redisPing, nil)
	}

	limiter := middleware.NewLimiterStore(cfg.Server.AuthRateLimit, cfg.Server.AuthRateLimit, authLimiterCleanup)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.router(cfg, tokens, health, limiter, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newTransport(ctx context.Context, cfg config.MailConfig) (usecase.EmailTransport, error) {
	if cfg.Provider == "ses" {
		return mail.NewSESSender(ctx, cfg.AWSRegion, cfg.From)
	}
	return mail.NewSMTPSender(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.From), nil
}

func redisPinger(rdb *redis.Client) handlers.PingFunc {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
