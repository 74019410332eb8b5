package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"talentboard/recruiting-api/internal/config"
	"talentboard/recruiting-api/internal/handlers"
	"talentboard/recruiting-api/internal/repositories"
	"talentboard/recruiting-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	extractionRepo := repositories.NewExtractionRepository(db)
	jobRepo := repositories.NewJobRecordRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	savedSearchRepo := repositories.NewSavedSearchRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	parser := services.NewDocumentParser()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI (extraction + embeddings)
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Claude (validation pass)
	claudeService, err := services.NewClaudeService(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Claude: %v", err)
	}
	log.Println("✅ Claude initialized successfully")

	// Initialize Google Drive
	driveService, err := services.NewDriveService(cfg.Drive.CredentialsPath, cfg.Drive.TokenPath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Google Drive: %v", err)
	}
	if !driveService.Ready() {
		log.Println("⚠️  Google Drive token missing, visit /api/v1/auth/drive/url to authorize")
	}
	log.Println("✅ Google Drive initialized successfully")

	// Initialize Qdrant-backed resume search
	searchService, err := services.NewResumeSearchService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := searchService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize extraction pipeline
	extractor := services.NewExtractor(geminiService, claudeService, services.RetryPolicy{
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
	})

	cache, err := services.NewExtractionCache(cfg.Cache.Size, extractionRepo)
	if err != nil {
		log.Fatalf("❌ Failed to initialize extraction cache: %v", err)
	}

	sessions := services.NewSessionStore(cfg.Cache.AvgCostPerCall)

	boardSource := services.NewMTBService(
		driveService,
		parser,
		cfg.Drive.BoardURL,
		cfg.Drive.BoardFileID,
	)

	writer := services.NewOutputWriter(cfg.Output.Dir, jobRepo)
	if err := writer.EnsureOutputDir(); err != nil {
		log.Fatalf("❌ Failed to create output directory: %v", err)
	}

	processor := services.NewProcessor(boardSource, cache, extractor, sessions, writer)
	log.Println("✅ Processing pipeline initialized")

	// Initialize worker
	worker := services.NewWorker(processor, sessions, cfg.Worker.Concurrency)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize Handlers
	processingHandler := handlers.NewProcessingHandler(boardSource, sessions, worker, driveService)
	resumeHandler := handlers.NewResumeHandler(
		resumeRepo,
		storageService,
		parser,
		searchService,
		cfg.Storage.MaxFileSize,
	)
	jobHandler := handlers.NewJobHandler(jobRepo, searchService, writer)
	savedSearchHandler := handlers.NewSavedSearchHandler(savedSearchRepo)
	authHandler := handlers.NewAuthHandler(driveService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TalentBoard Recruiting API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Processing pipeline
	api.Post("/process/mtb", processingHandler.HandleProcessMTB)
	api.Post("/process/jobs", processingHandler.HandleProcessJobs)
	api.Get("/process/:id/progress", processingHandler.HandleProgress)
	api.Delete("/process/:id", processingHandler.HandleClearSession)

	// Resumes
	api.Post("/resumes/upload", resumeHandler.HandleUpload)
	api.Get("/resumes/search", resumeHandler.HandleSearch)
	api.Get("/resumes/:id", resumeHandler.HandleGetResume)
	api.Delete("/resumes/:id", resumeHandler.HandleDeleteResume)
	api.Get("/resumes", resumeHandler.HandleListResumes)

	// Job records
	api.Get("/jobs/:jobID/matches", jobHandler.HandleJobMatches)
	api.Get("/jobs/:jobID", jobHandler.HandleGetJob)
	api.Get("/jobs", jobHandler.HandleListJobs)
	api.Get("/export/artifacts", jobHandler.HandleExportArtifacts)

	// Saved searches
	api.Post("/searches", savedSearchHandler.HandleCreate)
	api.Get("/searches", savedSearchHandler.HandleList)
	api.Delete("/searches/:id", savedSearchHandler.HandleDelete)

	// Google Drive authorization
	api.Get("/auth/drive/url", authHandler.HandleAuthURL)
	api.Get("/auth/drive/callback", authHandler.HandleCallback)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "TalentBoard Recruiting API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/process/mtb",
				"POST /api/v1/process/jobs",
				"GET /api/v1/process/:id/progress",
				"DELETE /api/v1/process/:id",
				"POST /api/v1/resumes/upload",
				"GET /api/v1/resumes/search",
				"GET /api/v1/resumes/:id",
				"DELETE /api/v1/resumes/:id",
				"GET /api/v1/resumes",
				"GET /api/v1/jobs",
				"GET /api/v1/jobs/:jobID",
				"GET /api/v1/jobs/:jobID/matches",
				"GET /api/v1/export/artifacts",
				"POST /api/v1/searches",
				"GET /api/v1/searches",
				"DELETE /api/v1/searches/:id",
				"GET /api/v1/auth/drive/url",
				"GET /api/v1/auth/drive/callback",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
