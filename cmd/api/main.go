package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/leaguehq/auction-backend/api/routes"
	"github.com/leaguehq/auction-backend/internal/config"
	"github.com/leaguehq/auction-backend/internal/handlers"
	mongorepo "github.com/leaguehq/auction-backend/internal/repositories/mongodb"
	"github.com/leaguehq/auction-backend/internal/services"
	"github.com/leaguehq/auction-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	ctx := context.Background()
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	roundRepo := mongorepo.NewRoundRepository(db)
	categoryRepo := mongorepo.NewCategoryRepository(db)
	playerRepo := mongorepo.NewPlayerRepository(db)
	bidRepo := mongorepo.NewBidRepository(db)
	teamRepo := mongorepo.NewTeamRepository(db)
	tbRepo := mongorepo.NewTiebreakerRepository(db)
	allocRepo := mongorepo.NewAllocationRepository(db)

	locks := services.NewRoundLocks()
	budgetService := services.NewBudgetService(teamRepo)
	finalizer := services.NewFinalizationService(roundRepo, playerRepo, bidRepo, tbRepo, allocRepo, budgetService, locks, cfg.Auction)
	bidService := services.NewBidService(roundRepo, playerRepo, bidRepo, teamRepo, locks)
	roundService := services.NewRoundService(roundRepo, categoryRepo, allocRepo, finalizer, locks, cfg.Auction)
	tbService := services.NewTiebreakerService(tbRepo, teamRepo, finalizer)
	playerService := services.NewPlayerService(playerRepo)
	authService := services.NewAuthService(teamRepo, cfg)

	deps := routes.HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService),
		BidHandler:        handlers.NewBidHandler(bidService),
		RoundHandler:      handlers.NewRoundHandler(roundService),
		TiebreakerHandler: handlers.NewTiebreakerHandler(tbService),
		TeamHandler:       handlers.NewTeamHandler(budgetService),
		PlayerHandler:     handlers.NewPlayerHandler(playerService),
	}
	router := routes.SetupRouter(cfg, deps)

	// Close rounds whose deadline passed
	closerCtx, stopCloser := context.WithCancel(ctx)
	defer stopCloser()
	go runRoundCloser(closerCtx, roundService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}

// runRoundCloser polls for open rounds past their deadline and closes them
func runRoundCloser(ctx context.Context, roundService services.RoundService) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := roundService.CloseDueRounds(ctx); err != nil {
				slog.Error("Round closer sweep failed", "error", err)
			}
		}
	}
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
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
