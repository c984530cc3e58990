package main

import (
	"log"
	"time"

	"edulabs/backend/config"
	"edulabs/backend/middleware"
	"edulabs/backend/routes"
	"edulabs/backend/services"
	"edulabs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Seed the achievement catalog
	achievementService := services.NewAchievementService(db, logger, cfg.XPPerLevel)
	if err := achievementService.SeedCatalog(); err != nil {
		log.Fatalf("Error seeding achievements: %v", err)
	}

	// Keep denormalized course aggregates fresh
	refresher := services.NewAggregateRefresher(db, logger)
	if err := refresher.Start(time.Duration(cfg.AggregateRefreshMinutes) * time.Minute); err != nil {
		log.Fatalf("Error starting aggregate scheduler: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
