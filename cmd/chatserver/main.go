package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisDriver "github.com/redis/go-redis/v9"

	"studychat/internal/config"
	"studychat/internal/handlers/chatserver"
	appKafka "studychat/internal/kafka"
	kafkaHandlers "studychat/internal/kafka/handlers"
	appRedis "studychat/internal/redis"
	"studychat/internal/services"
	"studychat/internal/storage"
	"studychat/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("failed to migrate database tables: %v", err)
	}

	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	tokenBlacklist := appRedis.NewRedisTokenBlacklist(redisClient)

	// The chat server produces too: messages sent over the websocket go
	// through the same persist-then-notify path as REST sends.
	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}
	defer kfkProducer.Close()
	notifier := appKafka.NewNotifier(kfkProducer, cfg.Kafka)

	messageRepo := storage.NewGormMessageRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	messageService := services.NewMessageService(messageRepo, groupRepo, notifier)

	hub := websocket.NewHub()
	wsHandler := chatserver.NewWebSocketHandler(hub, messageService, cfg.Auth, cfg.WebSocket, tokenBlacklist)

	consumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	go func() {
		topics := []string{cfg.Kafka.NotificationsTopic}
		handler := kafkaHandlers.NewNotificationHandler(hub)
		if err := consumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, handler); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("notifications consumer error: %v", err)
		}
	}()

	serveMux := http.NewServeMux()
	serveMux.HandleFunc(cfg.Server.WebSocketPath, wsHandler.HandleConnection)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     serveMux,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		log.Printf("chat server listening on %s, websocket path %s", serverAddr, cfg.Server.WebSocketPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("chat server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, stopping chat server")

	cancelConsumer()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("chat server stopped")
}
