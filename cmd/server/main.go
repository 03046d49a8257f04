package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/fundflow-backend/internal/adapter/grpc"
	"github.com/simaogato/fundflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/fundflow-backend/internal/config"
	"github.com/simaogato/fundflow-backend/internal/usecase/fund"
	"github.com/simaogato/fundflow-backend/internal/usecase/seeder"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	// 2. Setup Database, retrying while Postgres comes up
	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.DSN(), cfg.StartupDelay)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// 3. Initialize Repositories (Postgres)
	runRepo := postgres.NewRunRepository(db)
	presetRepo := postgres.NewPresetRepository(db)

	if cfg.SeedPresets {
		if err := seeder.NewPresetSeeder(presetRepo).Seed(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to seed assumption presets")
		}
		logger.Info("Assumption presets seeded successfully")
	}

	// 4. Initialize Services (Use Cases)
	fundService := fund.NewService(runRepo, presetRepo, logger)

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.AuthInterceptor([]byte(cfg.JWTSecret), logger)),
		grpclib.StatsHandler(otelgrpc.NewServerHandler()),
	)

	grpcadapter.RegisterProjectionServiceServer(grpcServer, grpcadapter.NewServer(fundService, logger))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.WithError(err).Fatalf("Failed to listen on %s", cfg.GRPCAddr)
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("addr", cfg.GRPCAddr).Info("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.WithError(err).Fatal("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Shutting down gracefully")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}
