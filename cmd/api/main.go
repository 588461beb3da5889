package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"github.com/artifactng/wheelspin-backend/api/routes"
	"github.com/artifactng/wheelspin-backend/internal/config"
	"github.com/artifactng/wheelspin-backend/internal/engine"
	"github.com/artifactng/wheelspin-backend/internal/handlers"
	mongorepo "github.com/artifactng/wheelspin-backend/internal/repositories/mongodb"
	"github.com/artifactng/wheelspin-backend/internal/services"
	"github.com/artifactng/wheelspin-backend/pkg/mongodb"
)

func main() {
	// A missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	store := mongorepo.NewPromotionStore(mongoClient.Raw(), db)
	ticketRepo := mongorepo.NewTicketRepository(db)

	rng := engine.NewLockedRand(time.Now().UnixNano())
	redemptionService := services.NewRedemptionService(store, cfg.Promotion, rng)
	ticketService := services.NewTicketService(ticketRepo)
	reportService := services.NewReportService(store, ticketRepo, cfg.Promotion)

	router := routes.SetupRouter(cfg, routes.Handlers{
		Spin:   handlers.NewSpinHandler(redemptionService),
		Ticket: handlers.NewTicketHandler(ticketService, cfg.Promotion.SpinBaseURL),
		Admin:  handlers.NewAdminHandler(reportService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
