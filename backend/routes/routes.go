package routes

import (
	"log"

	"edulabs/backend/config"
	"edulabs/backend/controllers"
	"edulabs/backend/middleware"
	"edulabs/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Services
	achievementService := services.NewAchievementService(db, logger, cfg.XPPerLevel)
	progressionService := services.NewProgressionService(db, logger, achievementService, cfg.XPPerLevel)
	dashboardService := services.NewDashboardService(services.NewDashboardStore(db), logger)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Dashboard routes
	dashboardController := controllers.NewDashboardController(db, cfg, dashboardService, achievementService)
	dashboard := app.Group("/api/dashboard", authMiddleware)
	dashboard.Get("/", dashboardController.GetDashboard)
	dashboard.Get("/stats", dashboardController.GetStats)
	dashboard.Get("/achievements", dashboardController.GetAchievements)
	dashboard.Get("/recommended", dashboardController.GetRecommended)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg, progressionService, logger)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:slug", coursesController.GetCourseBySlug)
	courses.Get("/:slug/roadmap", authMiddleware, coursesController.GetCourseRoadmap)
	courses.Post("/:slug/lessons/:lessonSlug/complete", authMiddleware, coursesController.CompleteLesson)
	courses.Post("/:slug/favorite", authMiddleware, coursesController.AddFavorite)
	courses.Delete("/:slug/favorite", authMiddleware, coursesController.RemoveFavorite)
	courses.Post("/:slug/reviews", authMiddleware, coursesController.CreateReview)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:slug/status", coursesController.UpdateCourseStatus)
	admin.Post("/courses/:slug/modules", coursesController.AddModule)
	admin.Post("/courses/:slug/lessons", coursesController.AddLesson)
	admin.Post("/achievements", dashboardController.CreateAchievement)
}
