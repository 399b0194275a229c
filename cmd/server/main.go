package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gatechat/internal/cache"
	"gatechat/internal/config"
	"gatechat/internal/console"
	"gatechat/internal/registry"
	"gatechat/internal/repository"
	"gatechat/internal/service"
	"gatechat/internal/transport/rest"
	"gatechat/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize persistence
	messageRepo := repository.NewMessageRepository(db)
	historyCache := cache.NewHistoryCache(rdb, cfg.HistoryCacheLimit)

	// Initialize the session registry and services
	reg := registry.NewRegistry()
	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminSecret, cfg.JWTSecret)
	admissionSvc := service.NewAdmissionService(reg, authSvc)
	chatSvc := service.NewChatService(reg, messageRepo, historyCache)
	lifecycleSvc := service.NewLifecycleService(admissionSvc, messageRepo, historyCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	admissionSvc.SetBroadcaster(wsHub)
	chatSvc.SetBroadcaster(wsHub)
	lifecycleSvc.SetBroadcaster(wsHub)

	// Trusted operator console on stdin
	consoleCtx, stopConsole := context.WithCancel(ctx)
	defer stopConsole()
	go console.NewRunner(os.Stdin, admissionSvc).Run(consoleCtx)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		AdmissionService: admissionSvc,
		LifecycleService: lifecycleSvc,
		ChatService:      chatSvc,
		WSHub:            wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Commands: allow [name], deny [name], kick [name]")
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/admin/sessions")
		log.Println("  WS   /v1/ws/chat")
		log.Println("  WS   /v1/ws/admin")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
