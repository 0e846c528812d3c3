package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ZazenCloud/Habit-Tracker/database"
	grpcctx "github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/context"
	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/router"
	grpcServer "github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/server"
	"github.com/ZazenCloud/Habit-Tracker/internal/config"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
	"github.com/ZazenCloud/Habit-Tracker/internal/repository/postgres"
	"github.com/ZazenCloud/Habit-Tracker/internal/server"
	"github.com/ZazenCloud/Habit-Tracker/internal/service"
	storage "github.com/ZazenCloud/Habit-Tracker/internal/storage/minio"
	"github.com/ZazenCloud/Habit-Tracker/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFile)

	if err := database.Migrate(ctx, cfg.Database.DSN); err != nil {
		logger.Fatal("failed to migrate database", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	habitRepo := postgres.NewHabitRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, token.WithTTL(cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL))

	backupStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize backup storage", "error", err)
	}

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger)
	authService := service.NewAuth(userRepo, tokenService, cfg.Password.Cost, logger)
	habitService := service.NewHabit(habitRepo, logger)
	backupService := service.NewBackup(habitRepo, backupStorage, logger)

	r := router.New(authService, habitService, backupService, tokenService, grpcctx.NewManager(), logger)
	srv := grpcServer.NewGRPCServer(r.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "tls", cfg.GRPC.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	r.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
