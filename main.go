package main

import (
	"log"
	"time"

	"quizcore/config"
	controllers "quizcore/controllers/quiz"
	"quizcore/database"
	quizRoutes "quizcore/routers/quizRoutes"
	"quizcore/services/assessment"
	"quizcore/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	notifier := utils.NewSyncNotifier(
		config.AppConfig.SyncWebhookURL,
		time.Duration(config.AppConfig.SyncWebhookTimeoutSec)*time.Second,
	)
	svc := assessment.NewService(database.Database.Db, config.AppConfig.ProgressMaxRetries, notifier)
	controllers.Init(svc)

	if config.AppConfig.EnableScheduler {
		if _, err := utils.InitializeAnalyticsScheduler(svc.Analytics, config.AppConfig.AnalyticsCron); err != nil {
			log.Fatalf("Failed to start analytics scheduler: %v", err)
		}
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded question and option images
	app.Static("/uploads", config.AppConfig.UploadDir)

	quizRoutes.SetupQuizRoutes(app)
	quizRoutes.SetupLessonRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
