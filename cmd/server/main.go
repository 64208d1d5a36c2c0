package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidsum-backend/internal/config"
	"vidsum-backend/internal/database"
	"vidsum-backend/internal/handlers"
	"vidsum-backend/internal/middleware"
	"vidsum-backend/internal/repository"
	"vidsum-backend/internal/router"
	"vidsum-backend/internal/services"
	"vidsum-backend/internal/websocket"
	"vidsum-backend/internal/worker"
)

func main() {
	log.Println("Starting vidsum backend...")

	// ──── Configuration ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── PostgreSQL ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Redis ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Repositories ────
	summaryRepo := repository.NewSummaryRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Services ────
	identity := middleware.NewIdentity(cfg.JWTSecret)
	summarizerService := services.NewSummarizerService(cfg.WebhookURL)
	youtubeService := services.NewYouTubeService()
	publisher := services.NewEventPublisher(redisClients.Queue)

	// ──── Handlers ────
	summaryHandler := handlers.NewSummaryHandler(summaryRepo, summarizerService, youtubeService, jobRepo, publisher, redisClients.Queue)
	jobHandler := handlers.NewJobHandler(jobRepo)

	// ──── Worker pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		summarizerService,
		youtubeService,
		publisher,
		jobRepo,
		summaryRepo,
		cfg.WorkerCount,
	)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── WebSocket hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, identity)
	log.Println("✓ WebSocket hub started")

	// ──── HTTP server ────
	r := router.New(identity, summaryHandler, jobHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // synchronous summarize waits on the webhook
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ vidsum backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
