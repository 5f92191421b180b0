package routes

import (
	"PulmoScan/cache"
	"PulmoScan/config"
	"PulmoScan/controllers"
	"PulmoScan/handlers"
	"PulmoScan/inference"
	"PulmoScan/middlewares"
	"PulmoScan/report"
	"PulmoScan/repositories"
	"PulmoScan/services"
	"PulmoScan/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories, services, and handlers, and installs the
// middleware chain on the server.
func SetupRoutes(store cache.Store, cfg *config.AppConfig, db *gorm.DB, tokens *utils.TokenMaker, limiter *utils.LoginLimiter) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()

	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15,
		Burst:             30,
	}))

	router.Use(middlewares.LoggingMiddleware())

	// Repositories
	doctorRepo := repositories.NewDoctorRepository(db, store)
	patientRepo := repositories.NewPatientRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	// External collaborators
	predictor := inference.NewRemoteModel(cfg.InferenceURL, cfg.UploadDir)
	reports := report.NewPDFGenerator(cfg.ReportDir)

	// Services
	smtp := utils.SMTPConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass}
	authService := services.NewAuthService(doctorRepo, store, smtp)
	analysisService := services.NewAnalysisService(doctorRepo, patientRepo, analysisRepo, predictor, reports, cfg.UploadDir)

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(authService, tokens, limiter)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)

	controllers.NewAuthController(authHandler).RegisterRoutes(router)
	controllers.NewAnalysisController(analysisHandler, tokens).RegisterRoutes(router)
	controllers.SetupRootRoute(router)

	return router
}
