package main

import (
	"context"
	"fmt"
	"os"

	"github.com/petfolio/petfolio-backend/internal/db"
	"github.com/petfolio/petfolio-backend/internal/handlers"
	"github.com/petfolio/petfolio-backend/internal/logger"
	"github.com/petfolio/petfolio-backend/internal/observability"
	"github.com/petfolio/petfolio-backend/internal/repos"
	"github.com/petfolio/petfolio-backend/internal/server"
	"github.com/petfolio/petfolio-backend/internal/services"
	"github.com/petfolio/petfolio-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, log, observability.Config{
		ServiceName: "petfolio-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer func() { _ = shutdownTracing(ctx) }()
	}

	// Database
	databaseService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := databaseService.AutoMigrateAll(); err != nil {
		log.Error("Database auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := databaseService.DB()

	// Repos
	log.Info("Setting up repos...")
	addressRepo := repos.NewAddressRepo(theDB, log)
	userRepo := repos.NewUserRepo(theDB, log)
	petRepo := repos.NewPetRepo(theDB, log)
	ownershipRepo := repos.NewOwnershipRepo(theDB, log)

	// Services
	log.Info("Setting up services...")
	retryPolicy := services.LoadRetryPolicy(log)
	addressService := services.NewAddressService(log, addressRepo)
	userService := services.NewUserService(theDB, log, retryPolicy, userRepo, addressService)
	petService := services.NewPetService(theDB, log, retryPolicy, petRepo, addressService)
	ownershipService := services.NewOwnershipService(log, userRepo, ownershipRepo, userService, petService)

	// Handlers
	log.Info("Setting up handlers...")
	addressHandler := handlers.NewAddressHandler(addressService)
	userHandler := handlers.NewUserHandler(userService)
	petHandler := handlers.NewPetHandler(petService)
	ownershipHandler := handlers.NewOwnershipHandler(ownershipService)

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		Log:              log,
		AddressHandler:   addressHandler,
		UserHandler:      userHandler,
		PetHandler:       petHandler,
		OwnershipHandler: ownershipHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
