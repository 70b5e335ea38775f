package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"oncocare/case-portal/case-portal-backend/internal/auth"
	"oncocare/case-portal/case-portal-backend/internal/config"
	"oncocare/case-portal/case-portal-backend/internal/documents"
	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
	"oncocare/case-portal/case-portal-backend/internal/notifications"
	"oncocare/case-portal/case-portal-backend/internal/patients"
	"oncocare/case-portal/case-portal-backend/internal/printing"
	"oncocare/case-portal/case-portal-backend/internal/reports"
	"oncocare/case-portal/case-portal-backend/internal/requests"
	"oncocare/case-portal/case-portal-backend/internal/scheduler"
	"oncocare/case-portal/case-portal-backend/pkg/pdf"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	if os.Getenv("GIN_MODE") != "release" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&auth.User{},
		&patients.Patient{},
		&requests.ServiceRequest{},
		&documents.RequiredDocument{},
		&notifications.SentNotification{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()

	// External collaborators
	store, err := documents.NewS3Store(ctx, documents.StorageConfig{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.Bucket,
		Endpoint:        cfg.AWS.Endpoint,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		PathStyle:       cfg.AWS.PathStyle,
	})
	if err != nil {
		logger.Fatal("Failed to connect attachment store", zap.Error(err))
	}
	emailSender, err := notifications.NewSESSender(ctx, cfg.AWS.Region, cfg.AWS.SenderEmail)
	if err != nil {
		logger.Fatal("Failed to configure email sender", zap.Error(err))
	}

	// Services
	tokenIssuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(db, tokenIssuer)
	patientService := patients.NewService(patients.NewRepository(db))
	documentService := documents.NewService(documents.NewRepository(db), store)
	notificationService := notifications.NewService(db, emailSender, patientService, logger)
	printingService := printing.NewService(
		pdf.NewGenerator(cfg.Portal.OrgName, cfg.Portal.OrgLine),
		patientService,
		documentService,
		cfg.Portal.Issuer,
	)

	requestRepo := requests.NewRepository(db)
	controller := lifecycle.NewController(lifecycle.DefaultTable())
	requestService := requests.NewService(
		requestRepo,
		documentService,
		documentService,
		controller,
		notificationService,
		printingService,
		logger,
	)
	reportService := reports.NewService(requestRepo, patients.NewRepository(db))

	// Background jobs
	jobs := scheduler.New(requestRepo, notificationService, notificationService, logger)
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Setup Router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	authed := auth.RequireAuth(tokenIssuer)
	admin := auth.RequireRole(auth.RoleAdmin)
	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleRHUStaff)

	// Register Routes
	api := router.Group("/api/v1")
	{
		auth.NewHandler(authService, logger).RegisterRoutes(api, authed, admin)

		protected := api.Group("", authed)
		{
			patients.NewHandler(patientService, logger).RegisterRoutes(protected)
			requests.NewHandler(requestService, logger).RegisterRoutes(protected, admin)
			documents.NewHandler(documentService, logger).RegisterRoutes(protected)

			adminOnly := protected.Group("", staff)
			reports.NewHandler(reportService, logger).RegisterRoutes(adminOnly)
		}
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
