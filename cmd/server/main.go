package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/api/handlers"
	"github.com/postdeckhq/postdeck/internal/api/middleware"
	job "github.com/postdeckhq/postdeck/internal/jobs"
	"github.com/postdeckhq/postdeck/internal/queue"
	"github.com/postdeckhq/postdeck/internal/repository"
	"github.com/postdeckhq/postdeck/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	calendarEventRepo := repository.NewCalendarEventRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	postingHistoryRepo := repository.NewPostingHistoryRepository(db)

	var llm service.LLMClient
	if cfg.GeminiAPIKey != "" {
		llm, err = service.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("Warning: generation backend unavailable, using fallback responders: %v", err)
		}
	}

	notifier := service.NewLogNotifier()

	authService := service.NewAuthService(cfg, userRepo, settingsRepo)
	userService := service.NewUserService(userRepo)
	storageService := service.NewStorageService(*cfg, mediaAssetRepo)
	postService := service.NewPostService(postRepo)
	captionService := service.NewCaptionService(llm)
	assistantService := service.NewAssistantService(conversationRepo, llm)
	composerService := service.NewComposerService(
		db,
		postRepo,
		postMediaRepo,
		postService,
		captionService,
		storageService,
		notifier,
		time.Duration(cfg.AutosaveDelaySeconds)*time.Second,
	)
	calendarService := service.NewCalendarService(cfg, postRepo, calendarEventRepo, settingsRepo)
	platformService := service.NewPlatformService(cfg, socialAccountRepo)
	instagramService := service.NewInstagramService(cfg, socialAccountRepo)
	tiktokService := service.NewTiktokService(cfg, socialAccountRepo)
	linkedinService := service.NewLinkedinService(cfg, socialAccountRepo)
	twitterService := service.NewTwitterService(cfg, socialAccountRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Post("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(platformService, instagramService, tiktokService, linkedinService, twitterService, cfg)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/connect/:platform", platform.AddSocialAccount)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettingsInfo)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	composer := handlers.NewComposerHandler(composerService, client)
	api.Post("/composer/open", composer.Open)
	api.Get("/composer/state", composer.State)
	api.Post("/composer/update", composer.Update)
	api.Post("/composer/step", composer.SetStep)
	api.Post("/composer/captions", composer.GenerateCaptions)
	api.Post("/composer/captions/select", composer.SelectCaption)
	api.Post("/composer/media", composer.UploadMedia)
	api.Post("/composer/save", composer.SaveDraft)
	api.Post("/composer/commit", composer.Commit)
	api.Post("/composer/close", composer.Close)

	calendar := handlers.NewCalendarHandler(calendarService)
	api.Get("/calendar", calendar.GetRange)
	api.Post("/calendar/reschedule", calendar.Reschedule)

	captions := handlers.NewCaptionHandler(captionService)
	api.Post("/captions/generate", captions.GenerateCaptions)

	assistant := handlers.NewAssistantHandler(assistantService)
	api.Post("/assistant/message", assistant.SendMessage)
	api.Get("/assistant/history", assistant.History)

	post := handlers.NewPostHandler(postService)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, instagramService, tiktokService, linkedinService, twitterService)

	// queue
	queueW := queue.NewQueue(postRepo, postingHistoryRepo, mediaAssetRepo, notifier)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)
		mux.HandleFunc(queue.TaskTypeResizeMedia, queueW.HandleResizeMediaTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
