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

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"studychat/internal/config"
	"studychat/internal/handlers/apiserver"
	appKafka "studychat/internal/kafka"
	"studychat/internal/middleware"
	appRedis "studychat/internal/redis"
	"studychat/internal/services"
	"studychat/internal/storage"
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

	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}
	defer kfkProducer.Close()
	notifier := appKafka.NewNotifier(kfkProducer, cfg.Kafka)

	userRepo := storage.NewGormUserRepository(db)
	edgeRepo := storage.NewGormFriendEdgeRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)

	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(db, edgeRepo, userRepo, notifier)
	messageService := services.NewMessageService(messageRepo, groupRepo, notifier)
	conversationService := services.NewConversationService(edgeRepo, messageRepo, userRepo)
	groupService := services.NewGroupService(db, groupRepo, userRepo)

	userHandler := apiserver.NewUserHandler(userService)
	friendHandler := apiserver.NewFriendHandler(friendService)
	messageHandler := apiserver.NewMessageHandler(messageService, conversationService)
	groupHandler := apiserver.NewGroupHandler(groupService, messageService)

	r := mux.NewRouter()
	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/users/me", userHandler.GetMeHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/search", userHandler.SearchUsersHandler).Methods(http.MethodGet)

	friendRouter := apiRouter.PathPrefix("/friends").Subrouter()
	friendRouter.HandleFunc("", friendHandler.ListFriendsHandler).Methods(http.MethodGet)
	friendRouter.HandleFunc("/request", friendHandler.SendRequestHandler).Methods(http.MethodPost)
	friendRouter.HandleFunc("/request/{friendId:[0-9]+}", friendHandler.CancelRequestHandler).Methods(http.MethodDelete)
	friendRouter.HandleFunc("/accept", friendHandler.AcceptRequestHandler).Methods(http.MethodPost)
	friendRouter.HandleFunc("/reject", friendHandler.RejectRequestHandler).Methods(http.MethodPost)
	friendRouter.HandleFunc("/pending", friendHandler.ListPendingHandler).Methods(http.MethodGet)
	friendRouter.HandleFunc("/sent", friendHandler.ListSentHandler).Methods(http.MethodGet)
	friendRouter.HandleFunc("/all", friendHandler.ListAllHandler).Methods(http.MethodGet)
	friendRouter.HandleFunc("/status/{friendId:[0-9]+}", friendHandler.StatusHandler).Methods(http.MethodGet)
	friendRouter.HandleFunc("/{friendId:[0-9]+}", friendHandler.RemoveFriendHandler).Methods(http.MethodDelete)

	messageRouter := apiRouter.PathPrefix("/messages").Subrouter()
	messageRouter.HandleFunc("", messageHandler.SendMessageHandler).Methods(http.MethodPost)
	messageRouter.HandleFunc("/conversations", messageHandler.ListConversationsHandler).Methods(http.MethodGet)
	messageRouter.HandleFunc("/{senderId:[0-9]+}/read", messageHandler.MarkReadHandler).Methods(http.MethodPatch)
	messageRouter.HandleFunc("/{friendId:[0-9]+}", messageHandler.GetHistoryHandler).Methods(http.MethodGet)

	groupRouter := apiRouter.PathPrefix("/groups").Subrouter()
	groupRouter.HandleFunc("", groupHandler.CreateGroupHandler).Methods(http.MethodPost)
	groupRouter.HandleFunc("", groupHandler.ListGroupsHandler).Methods(http.MethodGet)
	groupRouter.HandleFunc("/{groupId:[0-9]+}", groupHandler.GetGroupHandler).Methods(http.MethodGet)
	groupRouter.HandleFunc("/{groupId:[0-9]+}", groupHandler.UpdateGroupHandler).Methods(http.MethodPatch)
	groupRouter.HandleFunc("/{groupId:[0-9]+}", groupHandler.DeleteGroupHandler).Methods(http.MethodDelete)
	groupRouter.HandleFunc("/{groupId:[0-9]+}/members", groupHandler.ListMembersHandler).Methods(http.MethodGet)
	groupRouter.HandleFunc("/{groupId:[0-9]+}/members", groupHandler.AddMemberHandler).Methods(http.MethodPost)
	groupRouter.HandleFunc("/{groupId:[0-9]+}/members/{userId:[0-9]+}", groupHandler.RemoveMemberHandler).Methods(http.MethodDelete)
	groupRouter.HandleFunc("/{groupId:[0-9]+}/messages", groupHandler.GetGroupMessagesHandler).Methods(http.MethodGet)
	groupRouter.HandleFunc("/{groupId:[0-9]+}/messages", groupHandler.SendGroupMessageHandler).Methods(http.MethodPost)

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)
	loggedHandler := handlers.CombinedLoggingHandler(os.Stdout, corsHandler)

	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      loggedHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, stopping API server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("API server stopped")
}
