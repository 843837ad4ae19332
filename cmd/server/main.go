package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bandprep/internal/ai"
	"bandprep/internal/audio"
	"bandprep/internal/config"
	"bandprep/internal/database"
	"bandprep/internal/handlers"
	"bandprep/internal/repository"
	"bandprep/internal/security"
	"bandprep/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(context.Background(), cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	setRepo := repository.NewSetRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	// Initialize services
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, tokens, emailService)
	setService := service.NewSetService(setRepo)
	attemptService := service.NewAttemptService(attemptRepo, setRepo)
	evaluationService := service.NewEvaluationService(ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel))
	speechService := audio.NewSpeechService(cfg.AudioCachePath)

	if !evaluationService.IsEnabled() {
		log.Println("Scoring disabled: OPENAI_API_KEY not configured")
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(tokens, limiter)
	authHandler := handlers.NewAuthHandler(authService)
	oauthHandler := handlers.NewOAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppBaseURL)
	setHandler := handlers.NewSetHandler(setService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	evaluationHandler := handlers.NewEvaluationHandler(evaluationService)
	speechHandler := handlers.NewSpeechHandler(speechService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/signup", middleware.RateLimit(authHandler.Signup))
	mux.HandleFunc("POST /api/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /auth/google/start", oauthHandler.Start)
	mux.HandleFunc("GET /auth/google/callback", oauthHandler.Callback)

	// Practice set routes: reads for any signed-in user, writes for admins
	mux.HandleFunc("GET /api/sets", middleware.RequireAuth(setHandler.List))
	mux.HandleFunc("GET /api/sets/{id}", middleware.RequireAuth(setHandler.Get))
	mux.HandleFunc("POST /api/sets", middleware.RequireAdmin(setHandler.Save))
	mux.HandleFunc("DELETE /api/sets/{id}", middleware.RequireAdmin(setHandler.Delete))

	// Attempt routes
	mux.HandleFunc("POST /api/attempts", middleware.RequireAuth(attemptHandler.Create))
	mux.HandleFunc("GET /api/attempts/{userId}", middleware.RequireAuth(attemptHandler.ListByUser))

	// Collaborator routes
	mux.HandleFunc("POST /api/evaluate", middleware.RequireAuth(evaluationHandler.Evaluate))
	mux.HandleFunc("POST /api/speech", middleware.RequireAuth(speechHandler.Synthesize))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
