package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avialine/groupfare/config"
	"github.com/avialine/groupfare/internal/cache"
	"github.com/avialine/groupfare/internal/email"
	"github.com/avialine/groupfare/internal/kafka"
	"github.com/avialine/groupfare/internal/repository"
	"github.com/avialine/groupfare/internal/service/bids"
	"github.com/avialine/groupfare/internal/service/status"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Bidding.BidsCacheTTLSeconds)*time.Second)

	statusRepo := repository.NewStatusRepository(pool)
	bidRepo := repository.NewBidRepository(pool)
	retailRepo := repository.NewRetailBidRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	registry := status.NewRegistry(statusRepo)
	bidService := bids.NewBidService(
		bidRepo, retailRepo, paymentRepo, userRepo, registry,
		bids.WithCache(redisCache),
		bids.WithProducer(producer, cfg.Kafka.BidEventsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			result, err := bidService.ExpireOldBids(ctx)
			if err != nil {
				log.Printf("expire bids error: %v", err)
				continue
			}
			if result.UpdatedCount > 0 {
				log.Printf("sweep: %s", result.Message)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
