package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avialine/groupfare/api"
	"github.com/avialine/groupfare/config"
	"github.com/avialine/groupfare/internal/bootstrap"
	"github.com/avialine/groupfare/internal/cache"
	"github.com/avialine/groupfare/internal/kafka"
	"github.com/avialine/groupfare/internal/repository"
	"github.com/avialine/groupfare/internal/service/bids"
	"github.com/avialine/groupfare/internal/service/retail"
	"github.com/avialine/groupfare/internal/service/status"
	"github.com/avialine/groupfare/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.DSN()); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Bidding.BidsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	statusRepo := repository.NewStatusRepository(pool)
	bidRepo := repository.NewBidRepository(pool)
	retailRepo := repository.NewRetailBidRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	registry := status.NewRegistry(statusRepo)
	if _, seeded, err := registry.EnsureRequired(ctx); err != nil {
		log.Fatalf("ensure statuses: %v", err)
	} else if seeded {
		log.Println("seeded status registry defaults")
	}

	bidService := bids.NewBidService(
		bidRepo, retailRepo, paymentRepo, userRepo, registry,
		bids.WithCache(redisCache),
		bids.WithProducer(producer, cfg.Kafka.BidEventsTopic),
	)
	retailService := retail.NewRetailService(
		bidRepo, retailRepo, paymentRepo, registry,
		retail.WithCache(redisCache, time.Duration(cfg.Bidding.BidLockTTLSeconds)*time.Second),
		retail.WithProducer(producer, cfg.Kafka.NotificationsTopic),
		retail.WithApprovedPaymentCode(cfg.Bidding.ApprovedPaymentStatusCode),
	)

	handlers := bootstrap.Handlers{
		Flights:   api.NewFlightHandler(flightRepo),
		AdminBids: api.NewAdminBidHandler(bidService, retailService),
		Retail:    api.NewRetailBidHandler(retailService),
		Statuses:  api.NewStatusHandler(registry),
	}

	if err := bootstrap.Run(ctx, cfg, handlers); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
