package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/chat-backend/internal/api"
	"github.com/fathima-sithara/chat-backend/internal/auth"
	"github.com/fathima-sithara/chat-backend/internal/config"
	"github.com/fathima-sithara/chat-backend/internal/delivery"
	"github.com/fathima-sithara/chat-backend/internal/events"
	"github.com/fathima-sithara/chat-backend/internal/logger"
	"github.com/fathima-sithara/chat-backend/internal/presence"
	"github.com/fathima-sithara/chat-backend/internal/repository"
	"github.com/fathima-sithara/chat-backend/internal/service"
	"github.com/fathima-sithara/chat-backend/internal/storage"
	"github.com/fathima-sithara/chat-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	sugar, err := logger.New(logger.Config{Development: cfg.App.Env == "development"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer sugar.Sync()
	sugar.Infof("starting chat-backend (env=%s)", cfg.App.Env)

	mc, err := repository.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		sugar.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	media, err := storage.NewS3Store(ctx, cfg.S3.Region, cfg.S3.Bucket, sugar)
	if err != nil {
		sugar.Fatalf("s3 init: %v", err)
	}

	var status *presence.StatusMirror
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Fatalf("redis ping: %v", err)
		}
		defer rdb.Close()
		status = presence.NewStatusMirror(rdb, cfg.Redis.Prefix, 24*time.Hour)
	}

	registry := presence.NewMemory()
	bus := events.NewBus()
	bus.Subscribe(delivery.NewEngine(registry, sugar))

	var relay *events.KafkaRelay
	if len(cfg.Kafka.Brokers) > 0 {
		relay = events.NewKafkaRelay(cfg.Kafka.Brokers, cfg.Kafka.Topic, sugar)
		bus.Subscribe(relay)
	}

	msgRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)
	svc := service.NewMessageService(msgRepo, userRepo, media, bus, sugar)

	jv, err := auth.NewValidator(cfg.JWT.Alg, cfg.JWT.PublicKeyPath, cfg.JWT.HSSecret)
	if err != nil {
		sugar.Fatalf("jwt validator: %v", err)
	}

	wsrv := ws.NewServer(registry, status, sugar)
	app := api.NewServer(api.NewHandlers(svc, sugar), wsrv, jv)

	go func() {
		if err := app.Listen(":" + cfg.App.PortString()); err != nil {
			sugar.Fatalf("server listen: %v", err)
		}
	}()
	sugar.Infof("chat-backend listening on :%s", cfg.App.PortString())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down...")

	shutCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = app.ShutdownWithContext(shutCtx)
	_ = relay.Close()
	sugar.Info("chat-backend stopped")
}
